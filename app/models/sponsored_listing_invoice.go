package models

import "time"

// SponsoredListingInvoice is one purchase attempt. The processor correlation
// id stays NULL until the processor issues one, so failed creation attempts
// never collide under the unique index; raw request/response payloads are
// stored as opaque blobs and never interpreted by the engine.
type SponsoredListingInvoice struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	InvoiceID          string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"invoice_id"`
	ReservationID      string          `gorm:"type:varchar(36);not null;default:'';index" json:"reservation_id"`
	DirectoryEntryID   uint            `gorm:"not null;index" json:"directory_entry_id"`
	SponsorshipType    SponsorshipType `gorm:"type:varchar(32);not null;index" json:"sponsorship_type"`
	CategoryID         *uint           `json:"category_id,omitempty"`
	SubcategoryID      *uint           `json:"subcategory_id,omitempty"`
	Description        string          `gorm:"type:varchar(255);not null;default:''" json:"description"`
	CampaignStartDate  time.Time       `gorm:"type:timestamp;not null" json:"campaign_start_date"`
	CampaignEndDate    time.Time       `gorm:"type:timestamp;not null" json:"campaign_end_date"`
	Amount             float64         `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Currency           string          `gorm:"type:varchar(10);not null;default:'unknown'" json:"currency"`
	PaidAmount         float64         `gorm:"type:decimal(24,12);not null;default:0" json:"paid_amount"`
	PaidInCurrency     string          `gorm:"type:varchar(10);not null;default:'unknown'" json:"paid_in_currency"`
	ProcessorInvoiceID *string         `gorm:"type:varchar(255);uniqueIndex:ux_sponsored_listing_invoices_processor" json:"processor_invoice_id,omitempty"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(32);not null;default:'invoice_created';index" json:"payment_status"`
	InvoiceRequest     string          `gorm:"type:longtext" json:"invoice_request"`
	InvoiceResponse    string          `gorm:"type:longtext" json:"invoice_response"`
	PaymentResponse    string          `gorm:"type:longtext" json:"payment_response"`
	CreatedAt          time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CampaignDays is the inclusive day count of the campaign window, floored at 1
// so same-day campaigns never divide by zero in proration.
func (i *SponsoredListingInvoice) CampaignDays() int {
	days := int(i.CampaignEndDate.Sub(i.CampaignStartDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
