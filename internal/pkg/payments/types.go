package payments

import (
	"strings"

	"github.com/dirboard/DirBoard/app/models"
)

// Processor payment statuses as sent in IPN callbacks and status responses.
const (
	ProcessorStatusWaiting       = "waiting"
	ProcessorStatusConfirming    = "confirming"
	ProcessorStatusConfirmed     = "confirmed"
	ProcessorStatusSending       = "sending"
	ProcessorStatusPartiallyPaid = "partially_paid"
	ProcessorStatusFinished      = "finished"
	ProcessorStatusFailed        = "failed"
	ProcessorStatusRefunded      = "refunded"
	ProcessorStatusExpired       = "expired"
)

// CreateInvoiceRequest is the payload sent to the processor to open an invoice.
type CreateInvoiceRequest struct {
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	PayCurrency      string  `json:"pay_currency,omitempty"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description,omitempty"`
	IPNCallbackURL   string  `json:"ipn_callback_url,omitempty"`
	SuccessURL       string  `json:"success_url,omitempty"`
	CancelURL        string  `json:"cancel_url,omitempty"`
}

// CreateInvoiceResponse is the processor's answer to invoice creation.
type CreateInvoiceResponse struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	InvoiceURL     string `json:"invoice_url"`
	PriceAmount    string `json:"price_amount"`
	PriceCurrency  string `json:"price_currency"`
	PayCurrency    string `json:"pay_currency"`
	IPNCallbackURL string `json:"ipn_callback_url"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// PaymentStatusResponse is returned both by the status endpoint and, with the
// same field names, inside IPN callback bodies.
type PaymentStatusResponse struct {
	PaymentID        int64   `json:"payment_id"`
	InvoiceID        int64   `json:"invoice_id"`
	PaymentStatus    string  `json:"payment_status"`
	PayAddress       string  `json:"pay_address"`
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	PayAmount        float64 `json:"pay_amount"`
	ActuallyPaid     float64 `json:"actually_paid"`
	PayCurrency      string  `json:"pay_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description"`
	OutcomeAmount    float64 `json:"outcome_amount"`
	OutcomeCurrency  string  `json:"outcome_currency"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// MapProcessorStatus translates a processor status into the invoice payment
// status. The second return value is false for statuses the engine does not
// recognize; callers must reject those events instead of guessing.
func MapProcessorStatus(processorStatus string) (models.PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(processorStatus)) {
	case ProcessorStatusWaiting:
		// invoice opened, nothing received yet, invoice-side status unchanged
		return models.PaymentStatusInvoiceCreated, true
	case ProcessorStatusSending, ProcessorStatusConfirming, ProcessorStatusConfirmed:
		return models.PaymentStatusPending, true
	case ProcessorStatusPartiallyPaid:
		return models.PaymentStatusUnderPayment, true
	case ProcessorStatusFinished:
		return models.PaymentStatusPaid, true
	case ProcessorStatusFailed, ProcessorStatusRefunded:
		return models.PaymentStatusFailed, true
	case ProcessorStatusExpired:
		return models.PaymentStatusExpired, true
	default:
		return models.PaymentStatusUnknown, false
	}
}
