package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/cache"
	"github.com/dirboard/DirBoard/internal/pkg/constants"
	"github.com/dirboard/DirBoard/internal/pkg/database"
	"github.com/dirboard/DirBoard/internal/pkg/reporting"
)

const recentFeedTTL = 60 * time.Second

func getReportingEngine() *reporting.Engine {
	repos := repository.NewRepositories(database.GetDB())
	return reporting.NewEngine(repos.Invoice, repos.DirectoryEntry, repos.Category)
}

// parseWindow reads from/to query params, defaulting to the last 30 days.
func parseWindow(c *fiber.Ctx) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, false
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, false
		}
		to = t
	}
	if to.Before(from) {
		return from, to, false
	}
	return from, to, true
}

// HandleRecentSponsors serves the public recent-sponsorships feed. The feed
// is cached briefly since it sits on the landing page.
func HandleRecentSponsors(c *fiber.Ctx) error {
	if cached, err := cache.Get(constants.CacheKeyRecentSponsors); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	feed, err := getReportingEngine().RecentPurchases(10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "feed_failed"})
	}

	payload, err := json.Marshal(fiber.Map{"recent": feed})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "feed_failed"})
	}
	_ = cache.Set(constants.CacheKeyRecentSponsors, string(payload), recentFeedTTL)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// HandleAdvertiserBreakdown reports prorated revenue per advertiser for a
// window, optionally filtered to one sponsorship type.
func HandleAdvertiserBreakdown(c *fiber.Ctx) error {
	from, to, ok := parseWindow(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_window"})
	}

	var sponsorshipType *models.SponsorshipType
	if raw := c.Query("type"); raw != "" {
		t := models.ParseSponsorshipType(raw)
		if t == models.SponsorshipTypeUnknown {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_type"})
		}
		sponsorshipType = &t
	}

	rows, err := getReportingEngine().AdvertiserBreakdown(from, to, sponsorshipType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "rows": rows})
}

// HandleSubcategoryBreakdown reports prorated revenue per subcategory.
func HandleSubcategoryBreakdown(c *fiber.Ctx) error {
	from, to, ok := parseWindow(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_window"})
	}

	rows, err := getReportingEngine().SubcategoryBreakdown(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "rows": rows})
}

// HandleCategoryBreakdown reports prorated revenue per category.
func HandleCategoryBreakdown(c *fiber.Ctx) error {
	from, to, ok := parseWindow(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_window"})
	}

	rows, err := getReportingEngine().CategoryBreakdown(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}
	return c.JSON(fiber.Map{"from": from, "to": to, "rows": rows})
}

// HandleRevenueTotals reports unprorated paid totals for a window.
func HandleRevenueTotals(c *fiber.Ctx) error {
	from, to, ok := parseWindow(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_window"})
	}

	totals, err := getReportingEngine().Totals(from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "report_failed"})
	}
	return c.JSON(totals)
}
