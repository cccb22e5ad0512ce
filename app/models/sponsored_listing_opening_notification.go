package models

import "time"

// SponsoredListingOpeningNotification is a waitlist entry: someone wants an
// email when a slot opens in a scope. At most one active (not yet reminded)
// entry exists per (email, type, scope); rows are never hard-deleted in
// normal operation.
type SponsoredListingOpeningNotification struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Email            string          `gorm:"type:varchar(100);not null;index" json:"email"`
	SponsorshipType  SponsorshipType `gorm:"type:varchar(32);not null;index" json:"sponsorship_type"`
	TypeID           *uint           `gorm:"index" json:"type_id,omitempty"`
	DirectoryEntryID *uint           `json:"directory_entry_id,omitempty"`
	SubscribedDate   time.Time       `gorm:"type:timestamp;not null;index" json:"subscribed_date"`
	IsReminderSent   bool            `gorm:"not null;default:false;index" json:"is_reminder_sent"`
	ReminderSentDate *time.Time      `gorm:"type:timestamp;default:null" json:"reminder_sent_date,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
