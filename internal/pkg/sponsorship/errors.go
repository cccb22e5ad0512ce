package sponsorship

import "errors"

var (
	ErrInvalidSignature       = errors.New("callback signature verification failed")
	ErrMalformedPayload       = errors.New("callback payload is malformed")
	ErrInvoiceNotFound        = errors.New("invoice not found for callback order id")
	ErrUnknownProcessorStatus = errors.New("unrecognized processor payment status")
	ErrListingNotEligible     = errors.New("directory entry is not eligible for sponsorship")
	ErrOfferNotAvailable      = errors.New("offer is unknown or disabled")
	ErrInvalidScope           = errors.New("sponsorship scope is invalid for this listing")
	ErrEmailRequired          = errors.New("email is required")
)
