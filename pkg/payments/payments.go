package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds payment-provider credentials and endpoints. It is injected
// explicitly instead of being read from globals so tests can point the client
// at a fake server.
type Config struct {
	APIKey     string
	BaseURL    string // e.g. https://api.stripe.com
	SuccessURL string
	CancelURL  string
	Currency   string // lowercase ISO code for session line items
}

// Client talks to the external payment provider's REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new payment-provider client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// LineItem is a single priced entry in a checkout session.
type LineItem struct {
	Name       string
	UnitAmount int64 // smallest currency unit
	Quantity   int
}

// CheckoutSession is the provider's handle for an out-of-band payment.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a hosted checkout session for the given line
// items. The order and user ids ride along as metadata on both the session and
// its payment intent; the webhook relies on them to locate the order.
func (c *Client) CreateCheckoutSession(ctx context.Context, orderID, userID string, items []LineItem) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.cfg.SuccessURL)
	form.Set("cancel_url", c.cfg.CancelURL)
	form.Set("metadata[orderId]", orderID)
	form.Set("metadata[userId]", userID)
	form.Set("payment_intent_data[metadata][orderId]", orderID)
	form.Set("payment_intent_data[metadata][userId]", userID)
	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", c.cfg.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &session, nil
}

// PaymentMethodType resolves the human-readable type ("card", ...) of a
// payment method id carried on a payment intent.
func (c *Client) PaymentMethodType(ctx context.Context, paymentMethodID string) (string, error) {
	var method struct {
		Type string `json:"type"`
	}
	if err := c.get(ctx, "/v1/payment_methods/"+paymentMethodID, &method); err != nil {
		return "", fmt.Errorf("failed to retrieve payment method %s: %w", paymentMethodID, err)
	}
	return method.Type, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}
