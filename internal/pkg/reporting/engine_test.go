package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
)

type stubInvoiceRepo struct {
	repository.SponsoredListingInvoiceRepository
	invoices []models.SponsoredListingInvoice
}

func (s *stubInvoiceRepo) GetPaidOverlappingWindow(from, to time.Time) ([]models.SponsoredListingInvoice, error) {
	var out []models.SponsoredListingInvoice
	for _, inv := range s.invoices {
		if inv.PaymentStatus == models.PaymentStatusPaid && !inv.CampaignStartDate.After(to) && !inv.CampaignEndDate.Before(from) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *stubInvoiceRepo) GetRecentPaid(limit int) ([]models.SponsoredListingInvoice, error) {
	var out []models.SponsoredListingInvoice
	for i := len(s.invoices) - 1; i >= 0 && len(out) < limit; i-- {
		if s.invoices[i].PaymentStatus == models.PaymentStatusPaid {
			out = append(out, s.invoices[i])
		}
	}
	return out, nil
}

type stubEntryRepo struct {
	repository.DirectoryEntryRepository
	entries map[uint]models.DirectoryEntry
}

func (s *stubEntryRepo) GetByIDs(ids []uint) (map[uint]models.DirectoryEntry, error) {
	out := make(map[uint]models.DirectoryEntry)
	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

type stubCategoryRepo struct{ repository.CategoryRepository }

func (s *stubCategoryRepo) GetByID(id uint) (*models.Category, error) {
	return &models.Category{ID: id, Name: "Category"}, nil
}

func (s *stubCategoryRepo) GetSubcategoryByID(id uint) (*models.Subcategory, error) {
	return &models.Subcategory{ID: id, CategoryID: 1, Name: "Subcategory"}, nil
}

func day(d int) time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func paidInvoice(entryID uint, amount float64, startDay, endDay int) models.SponsoredListingInvoice {
	return models.SponsoredListingInvoice{
		DirectoryEntryID:  entryID,
		SponsorshipType:   models.SponsorshipTypeMain,
		CampaignStartDate: day(startDay),
		CampaignEndDate:   day(endDay),
		Amount:            amount,
		PaymentStatus:     models.PaymentStatusPaid,
	}
}

func newTestEngine(invoices ...models.SponsoredListingInvoice) *Engine {
	entries := map[uint]models.DirectoryEntry{}
	for _, inv := range invoices {
		entries[inv.DirectoryEntryID] = models.DirectoryEntry{
			ID: inv.DirectoryEntryID, Name: "Advertiser", SubcategoryID: 7,
			Subcategory: &models.Subcategory{ID: 7, CategoryID: 3, Name: "Subcategory"},
		}
	}
	return NewEngine(
		&stubInvoiceRepo{invoices: invoices},
		&stubEntryRepo{entries: entries},
		&stubCategoryRepo{},
	)
}

func TestOverlapDays(t *testing.T) {
	// fully inside
	assert.Equal(t, 10, OverlapDays(day(0), day(10), day(-5), day(30)))
	// 5 of 10 campaign days inside the window
	assert.Equal(t, 5, OverlapDays(day(0), day(10), day(5), day(30)))
	// window truncates the tail
	assert.Equal(t, 5, OverlapDays(day(0), day(10), day(-5), day(5)))
	// no overlap
	assert.LessOrEqual(t, OverlapDays(day(0), day(10), day(20), day(30)), 0)
}

func TestProratedAmountFullyInside(t *testing.T) {
	inv := paidInvoice(1, 100, 0, 10)
	assert.Equal(t, 100.0, Round2(ProratedAmount(&inv, day(-5), day(30))))
}

func TestProratedAmountHalfOverlap(t *testing.T) {
	inv := paidInvoice(1, 100, 0, 10)
	assert.Equal(t, 50.0, Round2(ProratedAmount(&inv, day(5), day(30))))
}

func TestProratedAmountNoOverlap(t *testing.T) {
	inv := paidInvoice(1, 100, 0, 10)
	assert.Equal(t, 0.0, ProratedAmount(&inv, day(20), day(30)))
}

func TestProratedAmountSameDayCampaign(t *testing.T) {
	inv := paidInvoice(1, 40, 0, 0)
	inv.CampaignEndDate = inv.CampaignStartDate.Add(6 * time.Hour)
	// day-count floor of 1 keeps same-day campaigns from dividing by zero
	got := ProratedAmount(&inv, day(-1), day(1))
	assert.LessOrEqual(t, got, 40.0)
	assert.GreaterOrEqual(t, got, 0.0)
}

func TestAdvertiserBreakdown(t *testing.T) {
	engine := newTestEngine(
		paidInvoice(1, 100, 0, 10),
		paidInvoice(2, 100, 0, 10),
		paidInvoice(2, 60, 5, 15),
		// unpaid attempts never attribute revenue
		func() models.SponsoredListingInvoice {
			inv := paidInvoice(3, 500, 0, 10)
			inv.PaymentStatus = models.PaymentStatusFailed
			return inv
		}(),
		// zero overlap is excluded entirely
		paidInvoice(4, 999, 40, 50),
	)

	rows, err := engine.AdvertiserBreakdown(day(0), day(10), nil)
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}

	if assert.Len(t, rows, 2) {
		// entry 2: 100 (full) + 60 * 5/10 = 130
		assert.Equal(t, uint(2), rows[0].DirectoryEntryID)
		assert.Equal(t, 130.0, rows[0].Revenue)
		assert.Equal(t, 2, rows[0].InvoiceCount)
		assert.Equal(t, 15, rows[0].ActiveDays)

		assert.Equal(t, uint(1), rows[1].DirectoryEntryID)
		assert.Equal(t, 100.0, rows[1].Revenue)
		assert.Equal(t, "Advertiser", rows[1].Name)
	}
}

func TestAdvertiserBreakdownFiltersByType(t *testing.T) {
	subInv := paidInvoice(2, 50, 0, 10)
	subInv.SponsorshipType = models.SponsorshipTypeSubcategory
	engine := newTestEngine(paidInvoice(1, 100, 0, 10), subInv)

	mainType := models.SponsorshipTypeMain
	rows, err := engine.AdvertiserBreakdown(day(0), day(10), &mainType)
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}
	if assert.Len(t, rows, 1) {
		assert.Equal(t, uint(1), rows[0].DirectoryEntryID)
	}
}

func TestSubcategoryBreakdownGroupsByScope(t *testing.T) {
	direct := paidInvoice(1, 100, 0, 10)
	sub := uint(9)
	direct.SubcategoryID = &sub
	// falls back to the entry's subcategory (7)
	implied := paidInvoice(2, 50, 0, 10)

	engine := newTestEngine(direct, implied)
	rows, err := engine.SubcategoryBreakdown(day(0), day(10))
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}

	if assert.Len(t, rows, 2) {
		assert.Equal(t, uint(9), rows[0].ScopeID)
		assert.Equal(t, 100.0, rows[0].Revenue)
		assert.Equal(t, uint(7), rows[1].ScopeID)
		assert.Equal(t, 50.0, rows[1].Revenue)
	}
}

func TestCategoryBreakdownUsesEntryFallback(t *testing.T) {
	engine := newTestEngine(paidInvoice(1, 100, 0, 10), paidInvoice(2, 20, 0, 10))
	rows, err := engine.CategoryBreakdown(day(0), day(10))
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}
	if assert.Len(t, rows, 1) {
		assert.Equal(t, uint(3), rows[0].ScopeID)
		assert.Equal(t, 120.0, rows[0].Revenue)
		assert.Equal(t, 2, rows[0].InvoiceCount)
	}
}

func TestRecentPurchasesPricePerDay(t *testing.T) {
	inv := paidInvoice(1, 100, 0, 30)
	engine := newTestEngine(inv)

	feed, err := engine.RecentPurchases(10)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if assert.Len(t, feed, 1) {
		assert.Equal(t, 30, feed[0].CampaignDays)
		assert.Equal(t, 3.33, feed[0].PricePerDay)
		assert.Equal(t, "Advertiser", feed[0].Name)
	}
}
