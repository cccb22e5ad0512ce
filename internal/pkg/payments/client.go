package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dirboard/DirBoard/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.nowpayments.io/v1"

// Client talks to the crypto payment processor. All engine-side payment state
// transitions are driven by IPN callbacks; the client only opens invoices and
// answers ad hoc status queries.
type Client struct {
	APIKey     string
	IPNSecret  string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a processor client from the environment.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("NOWPAYMENTS_API_KEY", "")),
		IPNSecret:  strings.TrimSpace(env.GetEnv("NOWPAYMENTS_IPN_SECRET", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("NOWPAYMENTS_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateInvoice opens an invoice at the processor. Besides the parsed response
// it returns the raw request and response bodies so callers can persist them
// for audit.
func (c *Client) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, []byte, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, nil, nil, errors.New("NOWPAYMENTS_API_KEY is not configured")
	}
	if req == nil || strings.TrimSpace(req.OrderID) == "" {
		return nil, nil, nil, errors.New("order id is required")
	}
	if req.PriceAmount <= 0 {
		return nil, nil, nil, errors.New("price amount must be positive")
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/invoice", bytes.NewReader(reqBody))
	if err != nil {
		return nil, reqBody, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, reqBody, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, reqBody, respBody, fmt.Errorf("invoice creation failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out CreateInvoiceResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, reqBody, respBody, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, reqBody, respBody, errors.New("invoice creation returned empty invoice id")
	}
	return &out, reqBody, respBody, nil
}

// GetPaymentStatus queries the processor for the current state of a payment.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentStatusResponse, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, nil, errors.New("NOWPAYMENTS_API_KEY is not configured")
	}
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, nil, errors.New("payment id is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/payment/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, respBody, fmt.Errorf("payment status request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out PaymentStatusResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, respBody, err
	}
	return &out, respBody, nil
}

// ParseIPNCallback decodes an IPN body after its signature has been verified.
func ParseIPNCallback(payload []byte) (*PaymentStatusResponse, error) {
	var out PaymentStatusResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.OrderID) == "" {
		return nil, errors.New("ipn payload missing order id")
	}
	if strings.TrimSpace(out.PaymentStatus) == "" {
		return nil, errors.New("ipn payload missing payment status")
	}
	return &out, nil
}
