package controllers

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/database"
	"github.com/dirboard/DirBoard/internal/pkg/env"
	"github.com/dirboard/DirBoard/internal/pkg/hcaptcha"
	"github.com/dirboard/DirBoard/internal/pkg/payments"
	"github.com/dirboard/DirBoard/internal/pkg/sponsorship"
)

var (
	serviceOnce sync.Once
	service     *sponsorship.Service
	validate    = validator.New()
)

// getService builds the engine against the shared database handle, once.
func getService() *sponsorship.Service {
	serviceOnce.Do(func() {
		if service != nil {
			return
		}
		repos := repository.NewRepositories(database.GetDB())
		client := payments.NewClientFromEnv()
		service = sponsorship.NewService(
			repos,
			client,
			client.IPNSecret,
			env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"),
			sponsorship.DefaultLimits(),
		)
	})
	return service
}

// SetService overrides the engine instance, used by tests.
func SetService(s *sponsorship.Service) {
	service = s
	serviceOnce.Do(func() {})
}

func parseOptionalUint(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

// HandleSponsorshipOptions returns the full option sheet for one listing:
// per-pool availability, offers and waitlist demand.
func HandleSponsorshipOptions(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil || entryID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_listing_id"})
	}

	opts, err := getService().GetOptions(uint(entryID))
	if err != nil {
		if errors.Is(err, sponsorship.ErrListingNotEligible) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "listing_not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "options_failed"})
	}
	return c.JSON(opts)
}

type reserveRequest struct {
	DirectoryEntryID uint   `json:"directory_entry_id" validate:"required"`
	SponsorshipType  string `json:"sponsorship_type" validate:"required"`
	ScopeID          *uint  `json:"scope_id"`
}

// HandleSponsorshipReserve creates a checkout hold for a scope.
func HandleSponsorshipReserve(c *fiber.Ctx) error {
	var req reserveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
	}

	sponsorshipType := models.ParseSponsorshipType(req.SponsorshipType)
	reservation, err := getService().Reserve(req.DirectoryEntryID, sponsorshipType, req.ScopeID)
	if err != nil {
		switch {
		case errors.Is(err, sponsorship.ErrListingNotEligible):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "listing_not_eligible"})
		case errors.Is(err, sponsorship.ErrInvalidScope):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "scope_unavailable"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reserve_failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reservation_id": reservation.ReservationID,
		"expiration":     reservation.ExpirationDate,
	})
}

// HandleSponsorshipExtendReservation pushes a hold forward while the buyer is
// still in checkout.
func HandleSponsorshipExtendReservation(c *fiber.Ctx) error {
	reservationID := strings.TrimSpace(c.Params("id"))
	if reservationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_reservation_id"})
	}

	ok, err := getService().ExtendReservation(reservationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "extend_failed"})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reservation_not_found"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

type subscribeRequest struct {
	Email            string `json:"email" validate:"required,email"`
	SponsorshipType  string `json:"sponsorship_type" validate:"required"`
	ScopeID          *uint  `json:"scope_id"`
	DirectoryEntryID *uint  `json:"directory_entry_id"`
	CaptchaToken     string `json:"captcha_token"`
}

// HandleSponsorshipSubscribe registers a waitlist entry for a sold-out scope.
func HandleSponsorshipSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
	}

	if hcaptcha.Enabled() {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); err != nil || !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "captcha_failed"})
		}
	}

	sponsorshipType := models.ParseSponsorshipType(req.SponsorshipType)
	err := getService().Subscribe(req.Email, sponsorshipType, req.ScopeID, req.DirectoryEntryID)
	if err != nil {
		switch {
		case errors.Is(err, sponsorship.ErrEmailRequired), errors.Is(err, sponsorship.ErrInvalidScope):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscribe_failed"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

type checkoutRequest struct {
	DirectoryEntryID uint   `json:"directory_entry_id" validate:"required"`
	OfferID          uint   `json:"offer_id" validate:"required"`
	ScopeID          *uint  `json:"scope_id"`
	ReservationID    string `json:"reservation_id"`
}

// HandleSponsorshipCheckout opens a processor invoice for an offer and
// returns the payment URL the buyer is redirected to.
func HandleSponsorshipCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed"})
	}

	result, err := getService().Checkout(c.Context(), req.DirectoryEntryID, req.OfferID, req.ScopeID, req.ReservationID)
	if err != nil {
		switch {
		case errors.Is(err, sponsorship.ErrListingNotEligible):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "listing_not_eligible"})
		case errors.Is(err, sponsorship.ErrOfferNotAvailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offer_not_available"})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "checkout_failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"invoice_id":  result.Invoice.InvoiceID,
		"invoice_url": result.InvoiceURL,
		"amount":      result.Invoice.Amount,
		"currency":    result.Invoice.Currency,
	})
}

// HandleSponsorshipCallback applies one processor IPN event. Rejected events
// come back non-2xx so the processor redelivers them later.
func HandleSponsorshipCallback(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("x-nowpayments-sig"))

	err := getService().HandleCallback(rawBody, signature)
	if err == nil {
		return c.JSON(fiber.Map{"ok": true})
	}

	switch {
	case errors.Is(err, sponsorship.ErrInvalidSignature):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	case errors.Is(err, sponsorship.ErrMalformedPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	case errors.Is(err, sponsorship.ErrInvoiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invoice_not_found"})
	case errors.Is(err, sponsorship.ErrUnknownProcessorStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown_status"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "callback_failed"})
	}
}
