package sponsorship

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/payments"
)

// ProcessorClient is the slice of the payment processor the lifecycle needs.
type ProcessorClient interface {
	CreateInvoice(ctx context.Context, req *payments.CreateInvoiceRequest) (*payments.CreateInvoiceResponse, []byte, []byte, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*payments.PaymentStatusResponse, []byte, error)
}

// Service owns the sponsorship purchase flow: option resolution, checkout
// holds, invoice lifecycle and the waitlist. It is stateless between calls;
// the relational store is the single source of truth.
type Service struct {
	repos     *repository.Repositories
	resolver  *Resolver
	processor ProcessorClient
	ipnSecret string
	publicURL string
	limits    Limits

	now func() time.Time
}

// NewService wires the engine together.
func NewService(repos *repository.Repositories, processor ProcessorClient, ipnSecret, publicURL string, limits Limits) *Service {
	return &Service{
		repos:     repos,
		resolver:  NewResolver(repos.SponsoredListing, repos.Reservation, limits),
		processor: processor,
		ipnSecret: strings.TrimSpace(ipnSecret),
		publicURL: strings.TrimRight(publicURL, "/"),
		limits:    limits,
		now:       time.Now,
	}
}

// WaitlistSummary is the public demand signal for one scope.
type WaitlistSummary struct {
	Count   int64                                        `json:"count"`
	Preview []models.SponsoredListingOpeningNotification `json:"preview"`
}

// TypeOptions bundles everything a buyer needs to decide on one pool.
// AudienceSize is the number of live listings inside the scoped pools;
// the site-wide pool reports zero since its audience is the whole directory.
type TypeOptions struct {
	Availability *Availability                  `json:"availability"`
	Offers       []models.SponsoredListingOffer `json:"offers"`
	Waitlist     WaitlistSummary                `json:"waitlist"`
	AudienceSize int64                          `json:"audience_size,omitempty"`
}

// Options is the full option sheet for a listing.
type Options struct {
	DirectoryEntry *models.DirectoryEntry                 `json:"directory_entry"`
	CanAdvertise   bool                                   `json:"can_advertise"`
	PerType        map[models.SponsorshipType]TypeOptions `json:"per_type"`
}

// CanAdvertise reports whether a directory entry may buy sponsorships. Only
// listings in good standing are sellable.
func CanAdvertise(entry *models.DirectoryEntry) bool {
	if entry == nil {
		return false
	}
	switch entry.DirectoryStatus {
	case models.DirectoryStatusAdmitted, models.DirectoryStatusVerified:
		return true
	default:
		return false
	}
}

// canAdvertise adds the age gate on top of the status check: admitted but
// unverified listings must have existed for AdmittedMinAgeDays first.
func (s *Service) canAdvertise(entry *models.DirectoryEntry) bool {
	if !CanAdvertise(entry) {
		return false
	}
	if entry.DirectoryStatus == models.DirectoryStatusAdmitted && s.limits.AdmittedMinAgeDays > 0 {
		minAge := time.Duration(s.limits.AdmittedMinAgeDays) * 24 * time.Hour
		return s.now().Sub(entry.CreatedAt) >= minAge
	}
	return true
}

// GetOptions resolves availability, offers and waitlist demand for every pool
// the listing can buy into: the main pool, its category and its subcategory.
func (s *Service) GetOptions(directoryEntryID uint) (*Options, error) {
	entry, err := s.repos.DirectoryEntry.GetByID(directoryEntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotEligible
		}
		return nil, err
	}

	now := s.now()
	out := &Options{
		DirectoryEntry: entry,
		CanAdvertise:   s.canAdvertise(entry),
		PerType:        make(map[models.SponsorshipType]TypeOptions, 3),
	}

	var categoryID *uint
	if entry.Subcategory != nil {
		categoryID = &entry.Subcategory.CategoryID
	}
	subcategoryID := entry.SubcategoryID

	scopes := []struct {
		sponsorshipType models.SponsorshipType
		scopeID         *uint
		offerScope      *uint
	}{
		{models.SponsorshipTypeMain, nil, nil},
		{models.SponsorshipTypeCategory, categoryID, nil},
		{models.SponsorshipTypeSubcategory, &subcategoryID, &subcategoryID},
	}

	for _, sc := range scopes {
		if sc.sponsorshipType == models.SponsorshipTypeCategory && sc.scopeID == nil {
			continue
		}

		avail, err := s.resolver.Check(sc.sponsorshipType, sc.scopeID, directoryEntryID, subcategoryID, now)
		if err != nil {
			return nil, err
		}

		offers, err := s.repos.Offer.GetEnabledByTypeAndSubcategory(sc.sponsorshipType, sc.offerScope)
		if err != nil {
			return nil, err
		}

		count, err := s.repos.OpeningNotification.GetCount(sc.sponsorshipType, sc.scopeID)
		if err != nil {
			return nil, err
		}
		preview, err := s.repos.OpeningNotification.GetPreview(sc.sponsorshipType, sc.scopeID, 5)
		if err != nil {
			return nil, err
		}

		var audience int64
		switch sc.sponsorshipType {
		case models.SponsorshipTypeCategory:
			audience, err = s.repos.DirectoryEntry.CountActiveByCategory(*sc.scopeID)
		case models.SponsorshipTypeSubcategory:
			audience, err = s.repos.DirectoryEntry.CountActiveBySubcategory(*sc.scopeID)
		}
		if err != nil {
			return nil, err
		}

		out.PerType[sc.sponsorshipType] = TypeOptions{
			Availability: avail,
			Offers:       offers,
			Waitlist:     WaitlistSummary{Count: count, Preview: preview},
			AudienceSize: audience,
		}
	}

	return out, nil
}

// Reserve creates a checkout hold for a scope. Capacity is checked first, but
// only advisorily; two concurrent buyers can both get a hold under contention.
func (s *Service) Reserve(directoryEntryID uint, sponsorshipType models.SponsorshipType, scopeID *uint) (*models.SponsoredListingReservation, error) {
	if sponsorshipType == models.SponsorshipTypeUnknown {
		return nil, ErrInvalidScope
	}
	// Scoped pools need a scope id; without one the hold would land in a
	// scope-less group and count against no real pool.
	if sponsorshipType != models.SponsorshipTypeMain && scopeID == nil {
		return nil, ErrInvalidScope
	}

	entry, err := s.repos.DirectoryEntry.GetByID(directoryEntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotEligible
		}
		return nil, err
	}
	if !s.canAdvertise(entry) {
		return nil, ErrListingNotEligible
	}

	now := s.now()
	avail, err := s.resolver.Check(sponsorshipType, scopeID, directoryEntryID, entry.SubcategoryID, now)
	if err != nil {
		return nil, err
	}
	if !avail.IsAvailable {
		return nil, ErrInvalidScope
	}

	reservation := &models.SponsoredListingReservation{
		ReservationID:    uuid.New().String(),
		ReservationGroup: ReservationGroup(sponsorshipType, scopeID),
		ExpirationDate:   now.Add(s.limits.ReservationWindow),
	}
	if err := s.repos.Reservation.Create(reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// ExtendReservation pushes a hold's expiration forward while a buyer is still
// working through checkout. Extensions never shorten a hold.
func (s *Service) ExtendReservation(reservationID string) (bool, error) {
	return s.repos.Reservation.ExtendExpiration(reservationID, s.now().Add(s.limits.ReservationWindow))
}

// Subscribe registers a waitlist entry for a sold-out scope. Re-subscribing
// the same email is idempotent.
func (s *Service) Subscribe(email string, sponsorshipType models.SponsorshipType, scopeID *uint, directoryEntryID *uint) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ErrEmailRequired
	}
	if sponsorshipType == models.SponsorshipTypeUnknown {
		return ErrInvalidScope
	}
	return s.repos.OpeningNotification.Upsert(email, sponsorshipType, scopeID, directoryEntryID, s.now())
}

// CheckoutResult is what the request layer needs to redirect a buyer.
type CheckoutResult struct {
	Invoice    *models.SponsoredListingInvoice `json:"invoice"`
	InvoiceURL string                          `json:"invoice_url"`
}

// Checkout turns an offer selection into a processor invoice. The campaign
// window starts immediately and runs for the offer's duration; the invoice id
// doubles as the processor order id for callback correlation.
func (s *Service) Checkout(ctx context.Context, directoryEntryID uint, offerID uint, scopeID *uint, reservationID string) (*CheckoutResult, error) {
	entry, err := s.repos.DirectoryEntry.GetByID(directoryEntryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotEligible
		}
		return nil, err
	}
	if !s.canAdvertise(entry) {
		return nil, ErrListingNotEligible
	}

	offer, err := s.repos.Offer.GetByID(offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotAvailable
		}
		return nil, err
	}
	if !offer.IsEnabled {
		return nil, ErrOfferNotAvailable
	}

	// Subcategory offers may pin their own scope; otherwise the caller's wins.
	effectiveScope := scopeID
	if offer.SponsorshipType == models.SponsorshipTypeSubcategory && offer.SubcategoryID != nil {
		effectiveScope = offer.SubcategoryID
	}

	// A hold passed in must exist and belong to the pool being bought.
	if reservationID != "" {
		reservation, err := s.repos.Reservation.GetByReservationID(reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidScope
			}
			return nil, err
		}
		if reservation.ReservationGroup != ReservationGroup(offer.SponsorshipType, effectiveScope) {
			return nil, ErrInvalidScope
		}
	}

	now := s.now()
	invoice := &models.SponsoredListingInvoice{
		InvoiceID:         uuid.New().String(),
		ReservationID:     reservationID,
		DirectoryEntryID:  directoryEntryID,
		SponsorshipType:   offer.SponsorshipType,
		CampaignStartDate: now,
		CampaignEndDate:   now.AddDate(0, 0, offer.Days),
		Amount:            offer.Price,
		Currency:          offer.PriceCurrency,
		Description:       offer.Description,
		PaymentStatus:     models.PaymentStatusInvoiceCreated,
	}
	switch offer.SponsorshipType {
	case models.SponsorshipTypeCategory:
		invoice.CategoryID = effectiveScope
	case models.SponsorshipTypeSubcategory:
		invoice.SubcategoryID = effectiveScope
	}

	if err := s.repos.Invoice.Create(invoice); err != nil {
		return nil, err
	}

	req := &payments.CreateInvoiceRequest{
		PriceAmount:      offer.Price,
		PriceCurrency:    offer.PriceCurrency,
		OrderID:          invoice.InvoiceID,
		OrderDescription: offer.Description,
		IPNCallbackURL:   s.publicURL + "/api/v1/sponsorship/callback",
		SuccessURL:       s.publicURL + "/sponsorship/success",
		CancelURL:        s.publicURL + "/sponsorship/cancel",
	}
	resp, rawReq, rawResp, err := s.processor.CreateInvoice(ctx, req)
	invoice.InvoiceRequest = string(rawReq)
	invoice.InvoiceResponse = string(rawResp)
	if err != nil {
		// Keep the failed attempt on record; the buyer can retry checkout.
		_ = s.repos.Invoice.Update(invoice)
		return nil, fmt.Errorf("processor invoice creation failed: %w", err)
	}

	invoice.ProcessorInvoiceID = &resp.ID
	if err := s.repos.Invoice.Update(invoice); err != nil {
		return nil, err
	}

	return &CheckoutResult{Invoice: invoice, InvoiceURL: resp.InvoiceURL}, nil
}

// HandleCallback applies one processor status event to an invoice and, on the
// first transition to paid, grants the slot. Signature failures, malformed
// bodies, unknown invoices and unmapped statuses are all rejected before any
// write happens; the processor redelivers rejected callbacks.
func (s *Service) HandleCallback(rawBody []byte, signatureHeader string) error {
	if !payments.VerifyIPNSignature(rawBody, signatureHeader, s.ipnSecret) {
		return ErrInvalidSignature
	}

	event, err := payments.ParseIPNCallback(rawBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	invoice, err := s.repos.Invoice.GetByInvoiceID(event.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}

	return s.applyStatusEvent(invoice, event, rawBody)
}

// ReconcileInvoice re-queries the processor for an invoice whose callbacks may
// have been lost and applies the reported status through the normal transition
// path. The id may be the public invoice id or the processor's own id.
func (s *Service) ReconcileInvoice(ctx context.Context, id string) (*models.SponsoredListingInvoice, error) {
	invoice, err := s.repos.Invoice.GetByInvoiceID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invoice, err = s.repos.Invoice.GetByProcessorInvoiceID(id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if invoice.ProcessorInvoiceID == nil {
		return nil, ErrInvoiceNotFound
	}

	event, rawResp, err := s.processor.GetPaymentStatus(ctx, *invoice.ProcessorInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("processor status query failed: %w", err)
	}
	if err := s.applyStatusEvent(invoice, event, rawResp); err != nil {
		return nil, err
	}
	return invoice, nil
}

// applyStatusEvent translates one processor status event, persists it on the
// invoice and grants the slot on the first transition to paid.
func (s *Service) applyStatusEvent(invoice *models.SponsoredListingInvoice, event *payments.PaymentStatusResponse, raw []byte) error {
	status, known := payments.MapProcessorStatus(event.PaymentStatus)
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownProcessorStatus, event.PaymentStatus)
	}

	invoice.PaymentStatus = status
	invoice.PaidAmount = event.ActuallyPaid
	if cur := strings.ToUpper(strings.TrimSpace(event.PayCurrency)); cur != "" {
		invoice.PaidInCurrency = cur
	}
	invoice.PaymentResponse = string(raw)
	if err := s.repos.Invoice.Update(invoice); err != nil {
		return err
	}

	if status != models.PaymentStatusPaid {
		return nil
	}
	return s.grantSlot(invoice)
}

// grantSlot creates the slot ledger row for a paid invoice, exactly once.
// The existence check catches replayed callbacks; the unique index on the
// invoice id turns the remaining check-then-act race into a rejected insert.
func (s *Service) grantSlot(invoice *models.SponsoredListingInvoice) error {
	_, err := s.repos.SponsoredListing.GetByInvoiceID(invoice.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	listing := &models.SponsoredListing{
		DirectoryEntryID:          invoice.DirectoryEntryID,
		SponsorshipType:           invoice.SponsorshipType,
		CategoryID:                invoice.CategoryID,
		SubcategoryID:             invoice.SubcategoryID,
		CampaignStartDate:         invoice.CampaignStartDate,
		CampaignEndDate:           invoice.CampaignEndDate,
		SponsoredListingInvoiceID: invoice.ID,
	}
	if err := s.repos.SponsoredListing.Create(listing); err != nil {
		// A concurrent duplicate callback may have won the insert.
		if _, lookupErr := s.repos.SponsoredListing.GetByInvoiceID(invoice.ID); lookupErr == nil {
			return nil
		}
		return err
	}
	return nil
}
