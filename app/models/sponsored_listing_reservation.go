package models

import "time"

// SponsoredListingReservation is a time-limited checkout hold on a slot.
// Holds are never cancelled or deleted; they lapse when the expiration
// passes and are excluded from active counts from then on.
type SponsoredListingReservation struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReservationID    string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"reservation_id"`
	ReservationGroup string    `gorm:"type:varchar(64);not null;index" json:"reservation_group"`
	ExpirationDate   time.Time `gorm:"type:timestamp;not null;index" json:"expiration_date"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveAt reports whether the hold still counts toward capacity.
func (r *SponsoredListingReservation) IsActiveAt(now time.Time) bool {
	return r.ExpirationDate.After(now)
}
