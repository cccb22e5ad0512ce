package sponsorship

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
	"github.com/dirboard/DirBoard/internal/pkg/payments"
)

// In-memory repositories mirroring the store contracts, for unit tests.

type fakeListingRepo struct {
	rows   []*models.SponsoredListing
	nextID uint
}

func (f *fakeListingRepo) Create(l *models.SponsoredListing) error {
	for _, r := range f.rows {
		if r.SponsoredListingInvoiceID == l.SponsoredListingInvoiceID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	l.ID = f.nextID
	f.rows = append(f.rows, l)
	return nil
}

func (f *fakeListingRepo) GetByID(id uint) (*models.SponsoredListing, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListingRepo) GetByInvoiceID(invoiceID uint) (*models.SponsoredListing, error) {
	for _, r := range f.rows {
		if r.SponsoredListingInvoiceID == invoiceID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListingRepo) GetActiveByType(t models.SponsorshipType, now time.Time) ([]models.SponsoredListing, error) {
	var out []models.SponsoredListing
	for _, r := range f.rows {
		if r.SponsorshipType == t && r.CampaignEndDate.After(now) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampaignEndDate.Before(out[j].CampaignEndDate) })
	return out, nil
}

func (f *fakeListingRepo) GetActiveCount(t models.SponsorshipType, scopeID *uint, now time.Time) (int64, error) {
	active, _ := f.GetActiveByType(t, now)
	return int64(len(filterByScope(active, t, scopeID))), nil
}

func (f *fakeListingRepo) GetActiveForEntry(entryID uint, t models.SponsorshipType, now time.Time) (*models.SponsoredListing, error) {
	for _, r := range f.rows {
		if r.DirectoryEntryID == entryID && r.SponsorshipType == t && r.CampaignEndDate.After(now) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeListingRepo) IsActiveForEntry(entryID uint, t models.SponsorshipType, now time.Time) (bool, error) {
	_, err := f.GetActiveForEntry(entryID, t, now)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeListingRepo) GetNextExpiration(now time.Time) (*time.Time, error) {
	var next *time.Time
	for _, r := range f.rows {
		if r.CampaignEndDate.After(now) && (next == nil || r.CampaignEndDate.Before(*next)) {
			end := r.CampaignEndDate
			next = &end
		}
	}
	return next, nil
}

func (f *fakeListingRepo) GetPaginated(page, pageSize int) ([]models.SponsoredListing, int64, error) {
	var out []models.SponsoredListing
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type fakeReservationRepo struct {
	rows []*models.SponsoredListingReservation
}

func (f *fakeReservationRepo) Create(r *models.SponsoredListingReservation) error {
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeReservationRepo) GetByReservationID(id string) (*models.SponsoredListingReservation, error) {
	for _, r := range f.rows {
		if r.ReservationID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReservationRepo) GetActiveCount(group string, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.ReservationGroup == group && r.ExpirationDate.After(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) GetEarliestActiveExpiration(group string, now time.Time) (*time.Time, error) {
	var earliest *time.Time
	for _, r := range f.rows {
		if r.ReservationGroup != group || !r.ExpirationDate.After(now) {
			continue
		}
		if earliest == nil || r.ExpirationDate.Before(*earliest) {
			exp := r.ExpirationDate
			earliest = &exp
		}
	}
	return earliest, nil
}

func (f *fakeReservationRepo) ExtendExpiration(id string, newExpiration time.Time) (bool, error) {
	r, err := f.GetByReservationID(id)
	if err != nil {
		return false, nil
	}
	if newExpiration.After(r.ExpirationDate) {
		r.ExpirationDate = newExpiration
	}
	return true, nil
}

type fakeInvoiceRepo struct {
	rows   []*models.SponsoredListingInvoice
	nextID uint
}

func (f *fakeInvoiceRepo) Create(inv *models.SponsoredListingInvoice) error {
	// Processor ids are unique when present; NULLs repeat freely.
	for _, r := range f.rows {
		if inv.ProcessorInvoiceID != nil && r.ProcessorInvoiceID != nil && *r.ProcessorInvoiceID == *inv.ProcessorInvoiceID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	inv.ID = f.nextID
	inv.CreatedAt = time.Now()
	f.rows = append(f.rows, inv)
	return nil
}

func (f *fakeInvoiceRepo) Update(inv *models.SponsoredListingInvoice) error {
	for i, r := range f.rows {
		if r.ID == inv.ID {
			f.rows[i] = inv
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetByID(id uint) (*models.SponsoredListingInvoice, error) {
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetByInvoiceID(invoiceID string) (*models.SponsoredListingInvoice, error) {
	for _, r := range f.rows {
		if r.InvoiceID == invoiceID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetByProcessorInvoiceID(processorInvoiceID string) (*models.SponsoredListingInvoice, error) {
	for _, r := range f.rows {
		if r.ProcessorInvoiceID != nil && *r.ProcessorInvoiceID == processorInvoiceID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetByReservationID(reservationID string) (*models.SponsoredListingInvoice, error) {
	for _, r := range f.rows {
		if r.ReservationID == reservationID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) GetPage(page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	var out []models.SponsoredListingInvoice
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) GetPageByStatus(status models.PaymentStatus, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	var out []models.SponsoredListingInvoice
	for _, r := range f.rows {
		if r.PaymentStatus == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) GetPaidOverlappingWindow(from, to time.Time) ([]models.SponsoredListingInvoice, error) {
	var out []models.SponsoredListingInvoice
	for _, r := range f.rows {
		if r.PaymentStatus == models.PaymentStatusPaid && !r.CampaignStartDate.After(to) && !r.CampaignEndDate.Before(from) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) GetRecentPaid(limit int) ([]models.SponsoredListingInvoice, error) {
	var out []models.SponsoredListingInvoice
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].PaymentStatus == models.PaymentStatusPaid {
			out = append(out, *f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) GetTotalsPaid(from, to time.Time) (*repository.InvoiceTotals, error) {
	t := &repository.InvoiceTotals{From: from, To: to}
	for _, r := range f.rows {
		if r.PaymentStatus == models.PaymentStatusPaid {
			t.TotalAmount += r.Amount
			t.TotalReceivedAmount += r.PaidAmount
			t.InvoiceCount++
		}
	}
	return t, nil
}

func (f *fakeInvoiceRepo) GetForEntryInWindow(entryID uint, from, to time.Time, t *models.SponsorshipType, paidOnly bool, page, pageSize int) ([]models.SponsoredListingInvoice, int64, error) {
	var out []models.SponsoredListingInvoice
	for _, r := range f.rows {
		if r.DirectoryEntryID != entryID {
			continue
		}
		if paidOnly && r.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type fakeNotificationRepo struct {
	rows   []*models.SponsoredListingOpeningNotification
	nextID uint
}

func (f *fakeNotificationRepo) Upsert(email string, t models.SponsorshipType, typeID *uint, entryID *uint, now time.Time) error {
	for _, r := range f.rows {
		if r.IsReminderSent || r.Email != email || r.SponsorshipType != t {
			continue
		}
		if (r.TypeID == nil) != (typeID == nil) {
			continue
		}
		if r.TypeID != nil && *r.TypeID != *typeID {
			continue
		}
		r.SubscribedDate = now
		return nil
	}
	f.nextID++
	f.rows = append(f.rows, &models.SponsoredListingOpeningNotification{
		ID: f.nextID, Email: email, SponsorshipType: t, TypeID: typeID,
		DirectoryEntryID: entryID, SubscribedDate: now,
	})
	return nil
}

func (f *fakeNotificationRepo) GetCount(t models.SponsorshipType, typeID *uint) (int64, error) {
	rows, _ := f.GetPreview(t, typeID, len(f.rows))
	return int64(len(rows)), nil
}

func (f *fakeNotificationRepo) GetPreview(t models.SponsorshipType, typeID *uint, take int) ([]models.SponsoredListingOpeningNotification, error) {
	var out []models.SponsoredListingOpeningNotification
	for _, r := range f.rows {
		if r.IsReminderSent || r.SponsorshipType != t {
			continue
		}
		if (r.TypeID == nil) != (typeID == nil) {
			continue
		}
		if r.TypeID != nil && *r.TypeID != *typeID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubscribedDate.Equal(out[j].SubscribedDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].SubscribedDate.After(out[j].SubscribedDate)
	})
	if len(out) > take {
		out = out[:take]
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetPaged(t models.SponsorshipType, typeID *uint, page, pageSize int) ([]models.SponsoredListingOpeningNotification, int64, error) {
	rows, err := f.GetPreview(t, typeID, len(f.rows))
	return rows, int64(len(rows)), err
}

func (f *fakeNotificationRepo) GetPendingSubscribers() ([]models.SponsoredListingOpeningNotification, error) {
	var out []models.SponsoredListingOpeningNotification
	for _, r := range f.rows {
		if !r.IsReminderSent {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkReminderSent(id uint, now time.Time) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.IsReminderSent = true
			r.ReminderSentDate = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeOfferRepo struct {
	rows []*models.SponsoredListingOffer
}

func (f *fakeOfferRepo) Create(o *models.SponsoredListingOffer) error {
	o.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, o)
	return nil
}

func (f *fakeOfferRepo) Update(o *models.SponsoredListingOffer) error { return nil }

func (f *fakeOfferRepo) GetByID(id uint) (*models.SponsoredListingOffer, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOfferRepo) GetEnabledByTypeAndSubcategory(t models.SponsorshipType, subcategoryID *uint) ([]models.SponsoredListingOffer, error) {
	var out []models.SponsoredListingOffer
	for _, r := range f.rows {
		if r.SponsorshipType == t && r.IsEnabled {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeEntryRepo struct {
	entries map[uint]*models.DirectoryEntry
}

func (f *fakeEntryRepo) GetByID(id uint) (*models.DirectoryEntry, error) {
	if e, ok := f.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEntryRepo) GetByIDs(ids []uint) (map[uint]models.DirectoryEntry, error) {
	out := make(map[uint]models.DirectoryEntry)
	for _, id := range ids {
		if e, ok := f.entries[id]; ok {
			out[id] = *e
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) CountActiveByCategory(categoryID uint) (int64, error)       { return 0, nil }
func (f *fakeEntryRepo) CountActiveBySubcategory(subcategoryID uint) (int64, error) { return 0, nil }

type fakeCategoryRepo struct{}

func (f *fakeCategoryRepo) GetByID(id uint) (*models.Category, error) {
	return &models.Category{ID: id, Name: "Category"}, nil
}

func (f *fakeCategoryRepo) GetSubcategoryByID(id uint) (*models.Subcategory, error) {
	return &models.Subcategory{ID: id, CategoryID: 1, Name: "Subcategory"}, nil
}

type fakeProcessor struct {
	lastRequest  *payments.CreateInvoiceRequest
	fail         bool
	statusByID   map[string]string
	actuallyPaid float64
}

func (f *fakeProcessor) CreateInvoice(ctx context.Context, req *payments.CreateInvoiceRequest) (*payments.CreateInvoiceResponse, []byte, []byte, error) {
	f.lastRequest = req
	if f.fail {
		return nil, []byte(`{}`), []byte(`{"error":"down"}`), context.DeadlineExceeded
	}
	resp := &payments.CreateInvoiceResponse{
		ID:         "proc-" + req.OrderID,
		OrderID:    req.OrderID,
		InvoiceURL: "https://pay.example.test/" + req.OrderID,
	}
	return resp, []byte(`{}`), []byte(`{}`), nil
}

func (f *fakeProcessor) GetPaymentStatus(ctx context.Context, paymentID string) (*payments.PaymentStatusResponse, []byte, error) {
	status, ok := f.statusByID[paymentID]
	if !ok {
		return nil, nil, context.DeadlineExceeded
	}
	resp := &payments.PaymentStatusResponse{
		PaymentStatus: status,
		ActuallyPaid:  f.actuallyPaid,
		PayCurrency:   "xmr",
	}
	return resp, []byte(`{"payment_status":"` + status + `"}`), nil
}

func newTestService(limits Limits) (*Service, *fakeListingRepo, *fakeReservationRepo, *fakeInvoiceRepo, *fakeNotificationRepo, *fakeOfferRepo, *fakeEntryRepo, *fakeProcessor) {
	listings := &fakeListingRepo{}
	reservations := &fakeReservationRepo{}
	invoices := &fakeInvoiceRepo{}
	notifications := &fakeNotificationRepo{}
	offers := &fakeOfferRepo{}
	entries := &fakeEntryRepo{entries: map[uint]*models.DirectoryEntry{}}
	processor := &fakeProcessor{}

	repos := &repository.Repositories{
		SponsoredListing:    listings,
		Reservation:         reservations,
		Invoice:             invoices,
		OpeningNotification: notifications,
		Offer:               offers,
		DirectoryEntry:      entries,
		Category:            &fakeCategoryRepo{},
	}
	svc := NewService(repos, processor, "test-secret", "https://dirboard.test", limits)
	return svc, listings, reservations, invoices, notifications, offers, entries, processor
}

func entryInSubcategory(id, subcategoryID, categoryID uint) *models.DirectoryEntry {
	return &models.DirectoryEntry{
		ID:              id,
		Name:            "Entry " + strings.Repeat("x", int(id%3+1)),
		Link:            "https://example.test",
		DirectoryStatus: models.DirectoryStatusAdmitted,
		SubcategoryID:   subcategoryID,
		Subcategory:     &models.Subcategory{ID: subcategoryID, CategoryID: categoryID},
	}
}
