package reporting

import (
	"sort"
	"time"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/dirboard/DirBoard/app/repository"
)

// AdvertiserRow is one advertiser's prorated share of a reporting window.
type AdvertiserRow struct {
	DirectoryEntryID uint    `json:"directory_entry_id"`
	Name             string  `json:"name"`
	Revenue          float64 `json:"revenue"`
	InvoiceCount     int     `json:"invoice_count"`
	ActiveDays       int     `json:"active_days"`
}

// ScopeRow is one category's or subcategory's prorated share.
type ScopeRow struct {
	ScopeID      uint    `json:"scope_id"`
	Name         string  `json:"name"`
	Revenue      float64 `json:"revenue"`
	InvoiceCount int     `json:"invoice_count"`
	ActiveDays   int     `json:"active_days"`
}

// RecentPurchase is one entry of the public recent-sponsorships feed.
type RecentPurchase struct {
	DirectoryEntryID uint      `json:"directory_entry_id"`
	Name             string    `json:"name"`
	SponsorshipType  string    `json:"sponsorship_type"`
	Amount           float64   `json:"amount"`
	CampaignDays     int       `json:"campaign_days"`
	PricePerDay      float64   `json:"price_per_day"`
	PurchasedAt      time.Time `json:"purchased_at"`
}

// Engine aggregates paid invoices into revenue and occupancy views. It is
// read-only; every number is recomputed from the invoice history on demand.
type Engine struct {
	invoices   repository.SponsoredListingInvoiceRepository
	entries    repository.DirectoryEntryRepository
	categories repository.CategoryRepository
}

// NewEngine creates a reporting engine.
func NewEngine(invoices repository.SponsoredListingInvoiceRepository, entries repository.DirectoryEntryRepository, categories repository.CategoryRepository) *Engine {
	return &Engine{invoices: invoices, entries: entries, categories: categories}
}

// AdvertiserBreakdown prorates paid invoices overlapping [from, to] per
// advertiser, optionally restricted to one sponsorship type. Rows come back
// highest revenue first.
func (e *Engine) AdvertiserBreakdown(from, to time.Time, sponsorshipType *models.SponsorshipType) ([]AdvertiserRow, error) {
	invoices, err := e.invoices.GetPaidOverlappingWindow(from, to)
	if err != nil {
		return nil, err
	}

	byEntry := make(map[uint]*AdvertiserRow)
	var entryIDs []uint
	for i := range invoices {
		inv := &invoices[i]
		if sponsorshipType != nil && inv.SponsorshipType != *sponsorshipType {
			continue
		}
		overlap := OverlapDays(inv.CampaignStartDate, inv.CampaignEndDate, from, to)
		if overlap <= 0 {
			continue
		}

		row, ok := byEntry[inv.DirectoryEntryID]
		if !ok {
			row = &AdvertiserRow{DirectoryEntryID: inv.DirectoryEntryID}
			byEntry[inv.DirectoryEntryID] = row
			entryIDs = append(entryIDs, inv.DirectoryEntryID)
		}
		row.Revenue += ProratedAmount(inv, from, to)
		row.InvoiceCount++
		row.ActiveDays += overlap
	}

	names, err := e.entries.GetByIDs(entryIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]AdvertiserRow, 0, len(byEntry))
	for _, row := range byEntry {
		if entry, ok := names[row.DirectoryEntryID]; ok {
			row.Name = entry.Name
		}
		row.Revenue = Round2(row.Revenue)
		rows = append(rows, *row)
	}
	sortRowsByRevenue(rows, func(r AdvertiserRow) (float64, uint) { return r.Revenue, r.DirectoryEntryID })
	return rows, nil
}

// SubcategoryBreakdown prorates paid invoices per subcategory. Invoices
// without a direct subcategory column fall back to the scope implied by the
// advertised entry.
func (e *Engine) SubcategoryBreakdown(from, to time.Time) ([]ScopeRow, error) {
	return e.scopeBreakdown(from, to, func(inv *models.SponsoredListingInvoice, entry *models.DirectoryEntry) (uint, string) {
		if inv.SubcategoryID != nil {
			if sub, err := e.categories.GetSubcategoryByID(*inv.SubcategoryID); err == nil {
				return sub.ID, sub.Name
			}
			return *inv.SubcategoryID, ""
		}
		if entry != nil {
			name := ""
			if entry.Subcategory != nil {
				name = entry.Subcategory.Name
			}
			return entry.SubcategoryID, name
		}
		return 0, ""
	})
}

// CategoryBreakdown prorates paid invoices per category.
func (e *Engine) CategoryBreakdown(from, to time.Time) ([]ScopeRow, error) {
	return e.scopeBreakdown(from, to, func(inv *models.SponsoredListingInvoice, entry *models.DirectoryEntry) (uint, string) {
		var categoryID uint
		if inv.CategoryID != nil {
			categoryID = *inv.CategoryID
		} else if entry != nil && entry.Subcategory != nil {
			categoryID = entry.Subcategory.CategoryID
		}
		if categoryID == 0 {
			return 0, ""
		}
		if cat, err := e.categories.GetByID(categoryID); err == nil {
			return cat.ID, cat.Name
		}
		return categoryID, ""
	})
}

func (e *Engine) scopeBreakdown(from, to time.Time, key func(*models.SponsoredListingInvoice, *models.DirectoryEntry) (uint, string)) ([]ScopeRow, error) {
	invoices, err := e.invoices.GetPaidOverlappingWindow(from, to)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]uint, 0, len(invoices))
	for i := range invoices {
		entryIDs = append(entryIDs, invoices[i].DirectoryEntryID)
	}
	entries, err := e.entries.GetByIDs(entryIDs)
	if err != nil {
		return nil, err
	}

	byScope := make(map[uint]*ScopeRow)
	for i := range invoices {
		inv := &invoices[i]
		overlap := OverlapDays(inv.CampaignStartDate, inv.CampaignEndDate, from, to)
		if overlap <= 0 {
			continue
		}

		var entry *models.DirectoryEntry
		if ent, ok := entries[inv.DirectoryEntryID]; ok {
			cp := ent
			entry = &cp
		}
		scopeID, name := key(inv, entry)
		if scopeID == 0 {
			continue
		}

		row, ok := byScope[scopeID]
		if !ok {
			row = &ScopeRow{ScopeID: scopeID, Name: name}
			byScope[scopeID] = row
		}
		row.Revenue += ProratedAmount(inv, from, to)
		row.InvoiceCount++
		row.ActiveDays += overlap
	}

	rows := make([]ScopeRow, 0, len(byScope))
	for _, row := range byScope {
		row.Revenue = Round2(row.Revenue)
		rows = append(rows, *row)
	}
	sortRowsByRevenue(rows, func(r ScopeRow) (float64, uint) { return r.Revenue, r.ScopeID })
	return rows, nil
}

// RecentPurchases is the public feed of the latest paid sponsorships with a
// derived price per campaign day.
func (e *Engine) RecentPurchases(limit int) ([]RecentPurchase, error) {
	invoices, err := e.invoices.GetRecentPaid(limit)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]uint, 0, len(invoices))
	for i := range invoices {
		entryIDs = append(entryIDs, invoices[i].DirectoryEntryID)
	}
	entries, err := e.entries.GetByIDs(entryIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecentPurchase, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		days := inv.CampaignDays()
		p := RecentPurchase{
			DirectoryEntryID: inv.DirectoryEntryID,
			SponsorshipType:  string(inv.SponsorshipType),
			Amount:           inv.Amount,
			CampaignDays:     days,
			PricePerDay:      Round2(inv.Amount / float64(days)),
			PurchasedAt:      inv.CreatedAt,
		}
		if entry, ok := entries[inv.DirectoryEntryID]; ok {
			p.Name = entry.Name
		}
		out = append(out, p)
	}
	return out, nil
}

// Totals sums paid invoices created inside the window, without proration.
func (e *Engine) Totals(from, to time.Time) (*repository.InvoiceTotals, error) {
	totals, err := e.invoices.GetTotalsPaid(from, to)
	if err != nil {
		return nil, err
	}
	totals.TotalAmount = Round2(totals.TotalAmount)
	return totals, nil
}

func sortRowsByRevenue[T any](rows []T, key func(T) (float64, uint)) {
	sort.Slice(rows, func(i, j int) bool {
		ri, ii := key(rows[i])
		rj, ij := key(rows[j])
		if ri != rj {
			return ri > rj
		}
		return ii < ij
	})
}
