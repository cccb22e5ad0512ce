package models

import "strings"

// SponsorshipType identifies which capacity pool a sponsorship occupies.
type SponsorshipType string

const (
	SponsorshipTypeUnknown     SponsorshipType = "unknown"
	SponsorshipTypeMain        SponsorshipType = "main_sponsor"
	SponsorshipTypeCategory    SponsorshipType = "category_sponsor"
	SponsorshipTypeSubcategory SponsorshipType = "subcategory_sponsor"
)

// ParseSponsorshipType normalizes a request value to a known type.
func ParseSponsorshipType(s string) SponsorshipType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main_sponsor", "main", "mainsponsor":
		return SponsorshipTypeMain
	case "category_sponsor", "category", "categorysponsor":
		return SponsorshipTypeCategory
	case "subcategory_sponsor", "subcategory", "subcategorysponsor":
		return SponsorshipTypeSubcategory
	default:
		return SponsorshipTypeUnknown
	}
}

// PaymentStatus is the invoice-side payment state. Transitions are driven
// exclusively by processor status events.
type PaymentStatus string

const (
	PaymentStatusUnknown        PaymentStatus = "unknown"
	PaymentStatusInvoiceCreated PaymentStatus = "invoice_created"
	PaymentStatusPending        PaymentStatus = "pending"
	PaymentStatusUnderPayment   PaymentStatus = "under_payment"
	PaymentStatusPaid           PaymentStatus = "paid"
	PaymentStatusFailed         PaymentStatus = "failed"
	PaymentStatusExpired        PaymentStatus = "expired"
)

// IsTerminal reports whether no further processor event can change the status.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired:
		return true
	default:
		return false
	}
}

const (
	CurrencyUnknown = "unknown"
	CurrencyUSD     = "USD"
	CurrencyXMR     = "XMR"
	CurrencyBTC     = "BTC"
)
