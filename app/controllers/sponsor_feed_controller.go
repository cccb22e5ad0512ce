package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/internal/pkg/cache"
	"github.com/dirboard/DirBoard/internal/pkg/constants"
	"github.com/dirboard/DirBoard/internal/pkg/metrics/counter"
	"github.com/dirboard/DirBoard/internal/pkg/statistics"
)

// HandleActiveSponsors lists the currently active sponsors of one pool, the
// way the site renders its sponsor strip. Each render counts one impression
// per shown listing; impressions are flushed to the database in batches.
func HandleActiveSponsors(c *fiber.Ctx) error {
	sponsorshipType := models.ParseSponsorshipType(c.Query("type", "main_sponsor"))
	if sponsorshipType == models.SponsorshipTypeUnknown {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_type"})
	}

	listings, err := adminRepos().SponsoredListing.GetActiveByType(sponsorshipType, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sponsor_list_failed"})
	}

	type sponsor struct {
		DirectoryEntryID uint      `json:"directory_entry_id"`
		Name             string    `json:"name"`
		Link             string    `json:"link"`
		CampaignEndDate  time.Time `json:"campaign_end_date"`
	}
	out := make([]sponsor, 0, len(listings))
	for _, l := range listings {
		s := sponsor{DirectoryEntryID: l.DirectoryEntryID, CampaignEndDate: l.CampaignEndDate}
		if l.DirectoryEntry != nil {
			s.Name = l.DirectoryEntry.Name
			s.Link = l.DirectoryEntry.Link
		}
		out = append(out, s)
		if err := counter.AddListingImpression(l.ID); err != nil {
			log.Printf("Failed to count impression for listing %d: %v", l.ID, err)
		}
	}

	return c.JSON(fiber.Map{"sponsors": out})
}

// HandleSponsorshipStats serves the cached occupancy numbers for the landing
// page, together with the soonest upcoming campaign end.
func HandleSponsorshipStats(c *fiber.Ctx) error {
	statistics.UpdateCacheIfNeeded()
	data := statistics.GetStatistics()
	return c.JSON(fiber.Map{
		"active_sponsors": data.ActiveSponsors,
		"waitlist_size":   data.WaitlistSize,
		"paid_invoices":   data.PaidInvoices,
		"next_expiration": nextExpiration(),
	})
}

// nextExpiration resolves the soonest future campaign end, cached briefly.
func nextExpiration() *time.Time {
	if cached, err := cache.Get(constants.CacheKeyNextExpiration); err == nil && cached != "" {
		if t, perr := time.Parse(time.RFC3339, cached); perr == nil {
			return &t
		}
	}

	next, err := adminRepos().SponsoredListing.GetNextExpiration(time.Now())
	if err != nil {
		log.Printf("Failed to resolve next campaign expiration: %v", err)
		return nil
	}
	if next != nil {
		_ = cache.Set(constants.CacheKeyNextExpiration, next.Format(time.RFC3339), time.Minute)
	}
	return next
}
