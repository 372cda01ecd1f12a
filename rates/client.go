/*
Package rates provides a client for an external exchange-rate provider.

PURPOSE:
  Fetches live currency rates (ExchangeRate-API v6 wire format) and extracts
  a single target rate. One outbound request per call, bounded by a fixed
  timeout; no retries, no caching - callers decide what to do with failures.

OUTCOMES:
  Every failure is typed so the service can collapse them into one
  conversion-failed class while tests stay able to tell them apart:
  - ErrTimeout:         request did not complete within the timeout
  - *ProviderError:     non-2xx status from the provider
  - *ParseError:        body was not valid rate data
  - ErrRateUnavailable: target code absent from the rate table

USAGE:
  client := rates.NewClient(apiKey)
  rate, err := client.GetRate(ctx, "USD", "TTD")

SEE ALSO:
  - budget/service.go: The only caller
*/
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "https://v6.exchangerate-api.com"
	requestTimeout = 5000 * time.Millisecond
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrTimeout indicates the rate request did not complete in time. The
	// underlying connection is aborted when this fires.
	ErrTimeout = errors.New("rates: request timed out")

	// ErrRateUnavailable indicates the provider answered but its rate table
	// has no entry for the requested target currency.
	ErrRateUnavailable = errors.New("rates: rate not available")
)

// ProviderError is a non-success response from the rate provider. The body is
// not parsed as rates in this case.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("rates: provider error: %d %s", e.StatusCode, e.Message)
}

// ParseError indicates the provider returned 2xx but the body was not valid
// rate data.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rates: parsing rates: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Client fetches latest rates from the provider. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client authorized with the given API key.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL overrides the provider base URL. Used by tests and by
// deployments that pin a regional endpoint.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// latestResponse mirrors the provider's v6 JSON.
type latestResponse struct {
	ConversionRates map[string]decimal.Decimal `json:"conversion_rates"`
}

// GetRate returns the conversion rate from base to target. A single attempt:
// timeout, non-success status, unparseable body, and missing target code each
// produce their typed outcome.
func (c *Client) GetRate(ctx context.Context, base, target string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v6/%s/latest/%s", c.baseURL, c.apiKey, strings.ToUpper(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return decimal.Zero, ErrTimeout
		}
		return decimal.Zero, fmt.Errorf("rates: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, then report.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return decimal.Zero, &ProviderError{StatusCode: resp.StatusCode, Message: msg}
	}

	var parsed latestResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize))
	if err := dec.Decode(&parsed); err != nil {
		if isTimeout(err) {
			return decimal.Zero, ErrTimeout
		}
		return decimal.Zero, &ParseError{Err: err}
	}

	rate, ok := parsed.ConversionRates[strings.ToUpper(target)]
	if !ok || rate.IsZero() {
		return decimal.Zero, ErrRateUnavailable
	}
	return rate, nil
}

// isTimeout classifies both client-level timeouts (http.Client.Timeout fires
// mid-body too) and context deadlines.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
