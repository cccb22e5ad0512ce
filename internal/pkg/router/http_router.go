package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dirboard/DirBoard/app/controllers"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "dirboard", "status": "ok"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public sponsorship pages consume the same handlers as the API.
	app.Get("/sponsorship/recent", controllers.HandleRecentSponsors)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
