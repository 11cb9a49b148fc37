package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/sbgaming/cafedesk/internal/session"
)

// DefaultGatewayURL is the Fast2SMS bulk endpoint. Deployments override it
// with sms.api.url, which tests point at an httptest server.
const DefaultGatewayURL = "https://www.fast2sms.com/dev/bulkV2"

const requestTimeout = 15 * time.Second

// Client sends the post-session thank-you message through an SMS gateway
// reached with a single GET request. It performs no retries of its own.
type Client struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
	logger     apt.Logger
}

func NewClient(config *apt.Config, logger apt.Logger) *Client {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	gatewayURL, _ := config.GetString("sms.api.url")
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	apiKey, _ := config.GetString("sms.api.key")

	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// Message renders the fixed thank-you template with the customer's name and
// the current clock time.
func Message(customerName string, now time.Time) string {
	if strings.TrimSpace(customerName) == "" {
		customerName = "Valued Customer"
	}
	return fmt.Sprintf(
		"Thank You %s for Visiting - SB Gaming Cafe\nWe hope to see you soon!\n[%s]",
		customerName,
		now.Format("03:04 PM"),
	)
}

// Notify implements session.Notifier: one dispatch attempt for one session.
// digits must already be the bare 10-digit number; a wrong length here wraps
// session.ErrInvalidNumber so the monitor stops retrying, as does a gateway
// response that rejects the number itself. Everything else (transport
// errors, non-true return flags) is a transient failure.
func (c *Client) Notify(ctx context.Context, digits string, customerName string, now time.Time) error {
	if len(digits) != 10 {
		return fmt.Errorf("%w: got %d digits", session.ErrInvalidNumber, len(digits))
	}

	params := url.Values{}
	params.Set("authorization", c.apiKey)
	params.Set("route", "q")
	params.Set("message", Message(customerName, now))
	params.Set("language", "english")
	params.Set("flash", "0")
	params.Set("numbers", digits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("cannot build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Return  bool            `json:"return"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("cannot decode SMS gateway response: %w", err)
	}

	if !payload.Return {
		reason := strings.Trim(string(payload.Message), `"`)
		if reason == "" {
			reason = fmt.Sprintf("gateway returned failure (HTTP %d)", resp.StatusCode)
		}
		if isInvalidNumberReason(reason) {
			return fmt.Errorf("%w: %s", session.ErrInvalidNumber, reason)
		}
		return fmt.Errorf("SMS gateway rejected message: %s", reason)
	}

	c.logger.Debug("SMS dispatched", "numbers", digits)
	return nil
}

// Fast2SMS reports bad destinations in the message body rather than with a
// distinct code.
func isInvalidNumberReason(reason string) bool {
	lower := strings.ToLower(reason)
	return strings.Contains(lower, "invalid") &&
		(strings.Contains(lower, "number") || strings.Contains(lower, "phone"))
}
