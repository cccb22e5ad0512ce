package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/dirboard/DirBoard/app/controllers"
	"github.com/dirboard/DirBoard/internal/pkg/env"
	"github.com/dirboard/DirBoard/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	v1 := api.Group("/v1")

	sponsorship := v1.Group("/sponsorship")
	sponsorship.Get("/options/:id", controllers.HandleSponsorshipOptions)
	sponsorship.Post("/reserve", controllers.HandleSponsorshipReserve)
	sponsorship.Post("/reservation/:id/extend", controllers.HandleSponsorshipExtendReservation)
	sponsorship.Post("/waitlist", controllers.HandleSponsorshipSubscribe)
	sponsorship.Post("/checkout", controllers.HandleSponsorshipCheckout)
	sponsorship.Get("/recent", controllers.HandleRecentSponsors)
	sponsorship.Get("/active", controllers.HandleActiveSponsors)
	sponsorship.Get("/stats", controllers.HandleSponsorshipStats)
	// Processor IPN endpoint; authenticated by signature, not by session.
	sponsorship.Post("/callback", controllers.HandleSponsorshipCallback)

	reports := v1.Group("/reports", middleware.APIKeyAuthMiddleware())
	reports.Get("/advertisers", controllers.HandleAdvertiserBreakdown)
	reports.Get("/subcategories", controllers.HandleSubcategoryBreakdown)
	reports.Get("/categories", controllers.HandleCategoryBreakdown)
	reports.Get("/totals", controllers.HandleRevenueTotals)

	admin := v1.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))
	admin.Get("/invoices", controllers.HandleAdminInvoices)
	admin.Get("/invoices/:id", controllers.HandleAdminInvoiceDetail)
	admin.Post("/invoices/:id/reconcile", controllers.HandleAdminReconcileInvoice)
	admin.Get("/listings", controllers.HandleAdminListings)
	admin.Get("/listings/:id", controllers.HandleAdminListingDetail)
	admin.Get("/entries/:id/invoices", controllers.HandleAdminEntryInvoices)
	admin.Get("/waitlist", controllers.HandleAdminWaitlist)
	admin.Post("/offers", controllers.HandleAdminCreateOffer)
	admin.Put("/offers/:id", controllers.HandleAdminUpdateOffer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
