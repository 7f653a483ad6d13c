package stripe

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

// Client talks to the Stripe REST API directly. Only the handful of calls
// the marketplace needs are implemented.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateIntent creates the payment intent for a lead purchase. The lead and
// buyer ids travel in the metadata and come back in the webhook event.
func (c *Client) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentOutput, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	form.Set("currency", "usd")
	form.Set("metadata[lead_id]", input.LeadID)
	form.Set("metadata[buyer_id]", input.BuyerID)

	var resp paymentIntentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &resp); err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &IntentOutput{ID: resp.ID, ClientSecret: resp.ClientSecret, Status: resp.Status}, nil
}

func (c *Client) GetIntent(ctx context.Context, intentID string) (*IntentOutput, error) {
	var resp paymentIntentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get payment intent %s: %w", intentID, err)
	}
	return &IntentOutput{ID: resp.ID, ClientSecret: resp.ClientSecret, Status: resp.Status}, nil
}

func (c *Client) CancelIntent(ctx context.Context, intentID string) error {
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents/"+intentID+"/cancel", url.Values{}, nil); err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", intentID, err)
	}
	return nil
}

// Refund refunds a charged payment intent in full. Used by the
// reconciliation worker for paid-but-unfulfilled purchases.
func (c *Client) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, &resp); err != nil {
		return "", fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return resp.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.setHeaders(req, form != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe rejected request (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe rejected request (status %d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if hasBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("User-Agent", "LeadMarket/1.0")
}
