package models

import "time"

// SponsoredListingOffer is a static price/duration tuple a buyer can pick.
// Subcategory-specific offers override the type-generic set when present.
type SponsoredListingOffer struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	SponsorshipType SponsorshipType `gorm:"type:varchar(32);not null;index" json:"sponsorship_type"`
	SubcategoryID   *uint           `gorm:"index" json:"subcategory_id,omitempty"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description"`
	Days            int             `gorm:"not null" json:"days"`
	Price           float64         `gorm:"type:decimal(12,2);not null" json:"price"`
	PriceCurrency   string          `gorm:"type:varchar(10);not null;default:'USD'" json:"price_currency"`
	IsEnabled       bool            `gorm:"not null;default:true;index" json:"is_enabled"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PricePerDay is the display price per campaign day, rounded by callers.
func (o *SponsoredListingOffer) PricePerDay() float64 {
	if o.Days <= 0 {
		return 0
	}
	return o.Price / float64(o.Days)
}
