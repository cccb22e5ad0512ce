package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/database"
	"github.com/dirboard/DirBoard/internal/pkg/sponsorship"
)

func adminRepos() *repository.Repositories {
	return repository.NewRepositories(database.GetDB())
}

func pageParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 25)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}
	return page, pageSize
}

// HandleAdminInvoices lists purchase attempts, optionally filtered by status.
func HandleAdminInvoices(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	repos := adminRepos()

	var (
		invoices []models.SponsoredListingInvoice
		total    int64
		err      error
	)
	if raw := c.Query("status"); raw != "" {
		invoices, total, err = repos.Invoice.GetPageByStatus(models.PaymentStatus(raw), page, pageSize)
	} else {
		invoices, total, err = repos.Invoice.GetPage(page, pageSize)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invoice_list_failed"})
	}

	return c.JSON(fiber.Map{"invoices": invoices, "total": total, "page": page})
}

// HandleAdminInvoiceDetail returns one invoice with its raw processor blobs.
// The id may be the public invoice id, the processor's id or a reservation id.
func HandleAdminInvoiceDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	repos := adminRepos()

	invoice, err := repos.Invoice.GetByInvoiceID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invoice, err = repos.Invoice.GetByProcessorInvoiceID(id)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invoice, err = repos.Invoice.GetByReservationID(id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invoice_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invoice_lookup_failed"})
	}
	return c.JSON(invoice)
}

// HandleAdminReconcileInvoice re-queries the processor for an invoice whose
// callbacks may have been lost and applies the reported status.
func HandleAdminReconcileInvoice(c *fiber.Ctx) error {
	invoice, err := getService().ReconcileInvoice(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, sponsorship.ErrInvoiceNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invoice_not_found"})
		case errors.Is(err, sponsorship.ErrUnknownProcessorStatus):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "unknown_status"})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "reconcile_failed"})
		}
	}
	return c.JSON(invoice)
}

// HandleAdminListingDetail returns one slot ledger row with the invoice that
// produced it.
func HandleAdminListingDetail(c *fiber.Ctx) error {
	listingID, err := c.ParamsInt("id")
	if err != nil || listingID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_listing_id"})
	}

	repos := adminRepos()
	listing, err := repos.SponsoredListing.GetByID(uint(listingID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_lookup_failed"})
	}

	out := fiber.Map{"listing": listing}
	if invoice, err := repos.Invoice.GetByID(listing.SponsoredListingInvoiceID); err == nil {
		out["invoice"] = invoice
	}
	return c.JSON(out)
}

// HandleAdminListings lists slot ledger rows, newest campaigns first. With a
// type (and scope for the scoped pools) it also reports the pool's current
// active occupancy.
func HandleAdminListings(c *fiber.Ctx) error {
	page, pageSize := pageParams(c)
	repos := adminRepos()

	listings, total, err := repos.SponsoredListing.GetPaginated(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "listing_list_failed"})
	}

	out := fiber.Map{"listings": listings, "total": total, "page": page}
	if raw := c.Query("type"); raw != "" {
		sponsorshipType := models.ParseSponsorshipType(raw)
		if sponsorshipType == models.SponsorshipTypeUnknown {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_type"})
		}
		active, err := repos.SponsoredListing.GetActiveCount(sponsorshipType, parseOptionalUint(c.Query("scope_id")), time.Now())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_scope"})
		}
		out["active_count"] = active
	}

	return c.JSON(out)
}

// HandleAdminEntryInvoices lists the purchase history of one directory entry
// whose campaigns touch the requested window.
func HandleAdminEntryInvoices(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_entry_id"})
	}

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
	paidOnly := c.QueryBool("paid_only", false)

	page, pageSize := pageParams(c)
	invoices, total, err := adminRepos().Invoice.GetForEntryInWindow(uint(entryID), from, to, sponsorshipType, paidOnly, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "invoice_list_failed"})
	}
	return c.JSON(fiber.Map{"invoices": invoices, "total": total, "page": page})
}

// HandleAdminWaitlist pages through active waitlist entries for one scope.
func HandleAdminWaitlist(c *fiber.Ctx) error {
	sponsorshipType := models.ParseSponsorshipType(c.Query("type"))
	if sponsorshipType == models.SponsorshipTypeUnknown {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_type"})
	}
	scopeID := parseOptionalUint(c.Query("scope_id"))

	page, pageSize := pageParams(c)
	entries, total, err := adminRepos().OpeningNotification.GetPaged(sponsorshipType, scopeID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "waitlist_failed"})
	}
	return c.JSON(fiber.Map{"entries": entries, "total": total, "page": page})
}

type offerRequest struct {
	SponsorshipType string  `json:"sponsorship_type" validate:"required"`
	SubcategoryID   *uint   `json:"subcategory_id"`
	Description     string  `json:"description" validate:"required,max=255"`
	Days            int     `json:"days" validate:"required,min=1,max=365"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	PriceCurrency   string  `json:"price_currency" validate:"omitempty,len=3"`
	IsEnabled       *bool   `json:"is_enabled"`
}

// HandleAdminCreateOffer adds an offer to the catalog.
func HandleAdminCreateOffer(c *fiber.Ctx) error {
	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
	}
	sponsorshipType := models.ParseSponsorshipType(req.SponsorshipType)
	if sponsorshipType == models.SponsorshipTypeUnknown {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_type"})
	}

	offer := &models.SponsoredListingOffer{
		SponsorshipType: sponsorshipType,
		SubcategoryID:   req.SubcategoryID,
		Description:     req.Description,
		Days:            req.Days,
		Price:           req.Price,
		PriceCurrency:   models.CurrencyUSD,
		IsEnabled:       true,
	}
	if req.PriceCurrency != "" {
		offer.PriceCurrency = req.PriceCurrency
	}
	if req.IsEnabled != nil {
		offer.IsEnabled = *req.IsEnabled
	}

	if err := adminRepos().Offer.Create(offer); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "offer_create_failed"})
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleAdminUpdateOffer edits price, duration or the enabled flag.
func HandleAdminUpdateOffer(c *fiber.Ctx) error {
	offerID, err := c.ParamsInt("id")
	if err != nil || offerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_offer_id"})
	}

	repos := adminRepos()
	offer, err := repos.Offer.GetByID(uint(offerID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "offer_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "offer_lookup_failed"})
	}

	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
	}

	offer.Description = req.Description
	offer.Days = req.Days
	offer.Price = req.Price
	if req.PriceCurrency != "" {
		offer.PriceCurrency = req.PriceCurrency
	}
	if req.IsEnabled != nil {
		offer.IsEnabled = *req.IsEnabled
	}

	if err := repos.Offer.Update(offer); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "offer_update_failed"})
	}
	return c.JSON(offer)
}
