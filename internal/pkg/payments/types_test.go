package payments

import (
	"testing"

	"github.com/dirboard/DirBoard/app/models"
	"github.com/stretchr/testify/assert"
)

func TestMapProcessorStatus(t *testing.T) {
	cases := []struct {
		processor string
		want      models.PaymentStatus
		known     bool
	}{
		{"waiting", models.PaymentStatusInvoiceCreated, true},
		{"sending", models.PaymentStatusPending, true},
		{"confirming", models.PaymentStatusPending, true},
		{"confirmed", models.PaymentStatusPending, true},
		{"partially_paid", models.PaymentStatusUnderPayment, true},
		{"finished", models.PaymentStatusPaid, true},
		{"failed", models.PaymentStatusFailed, true},
		{"refunded", models.PaymentStatusFailed, true},
		{"expired", models.PaymentStatusExpired, true},
		{" FINISHED ", models.PaymentStatusPaid, true},
		{"settled", models.PaymentStatusUnknown, false},
		{"", models.PaymentStatusUnknown, false},
	}

	for _, c := range cases {
		got, known := MapProcessorStatus(c.processor)
		assert.Equal(t, c.want, got, "status %q", c.processor)
		assert.Equal(t, c.known, known, "status %q", c.processor)
	}
}

func TestParseIPNCallback(t *testing.T) {
	body := `{"payment_id":123,"payment_status":"finished","order_id":"inv-1","price_amount":30,"actually_paid":0.21,"pay_currency":"xmr"}`
	evt, err := ParseIPNCallback([]byte(body))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	assert.Equal(t, "inv-1", evt.OrderID)
	assert.Equal(t, "finished", evt.PaymentStatus)
	assert.Equal(t, 0.21, evt.ActuallyPaid)

	_, err = ParseIPNCallback([]byte(`{"payment_status":"finished"}`))
	assert.Error(t, err, "missing order id must fail")

	_, err = ParseIPNCallback([]byte(`{"order_id":"inv-1"}`))
	assert.Error(t, err, "missing payment status must fail")
}
