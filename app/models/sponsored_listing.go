package models

import "time"

// SponsoredListing is a paid grant occupying one slot of its scope for the
// campaign window. Exactly one row is created per paid invoice; activity is
// always computed from the current time against the stored window, there is
// no explicit expired flag.
type SponsoredListing struct {
	ID                        uint            `gorm:"primaryKey" json:"id"`
	DirectoryEntryID          uint            `gorm:"not null;index" json:"directory_entry_id"`
	SponsorshipType           SponsorshipType `gorm:"type:varchar(32);not null;index" json:"sponsorship_type"`
	CategoryID                *uint           `gorm:"index" json:"category_id,omitempty"`
	SubcategoryID             *uint           `gorm:"index" json:"subcategory_id,omitempty"`
	CampaignStartDate         time.Time       `gorm:"type:timestamp;not null" json:"campaign_start_date"`
	CampaignEndDate           time.Time       `gorm:"type:timestamp;not null;index" json:"campaign_end_date"`
	SponsoredListingInvoiceID uint            `gorm:"not null;uniqueIndex:ux_sponsored_listings_invoice" json:"sponsored_listing_invoice_id"`
	ImpressionCount           uint            `gorm:"not null;default:0" json:"impression_count"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	DirectoryEntry *DirectoryEntry `gorm:"foreignKey:DirectoryEntryID" json:"directory_entry,omitempty"`
}

// IsActiveAt reports whether the grant still occupies its slot at the given
// instant. A slot is held from purchase until the campaign ends, so campaigns
// with a future start date count too.
func (l *SponsoredListing) IsActiveAt(now time.Time) bool {
	return l.CampaignEndDate.After(now)
}
