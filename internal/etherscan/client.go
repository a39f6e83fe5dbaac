package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wallet-feature-lab/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.etherscan.io/v2/api"
	DefaultChainID     = 1
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

const (
	startBlock = "0"
	endBlock   = "9999999999"

	noTransactionsMessage = "No transactions found"
)

// ErrAPI is returned when the API answers with a non-success status.
var ErrAPI = errors.New("etherscan api error")

// Client fetches account transfer histories from the Etherscan v2 API.
type Client struct {
	baseURL     string
	apiKey      string
	chainID     int
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithChainID sets the chain queried.
func WithChainID(id int) ClientOption {
	return func(c *Client) {
		c.chainID = id
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Etherscan client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		chainID:     DefaultChainID,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchNative returns the native-currency transaction list of address,
// newest first.
func (c *Client) FetchNative(ctx context.Context, address string) ([]domain.RawTransfer, error) {
	return c.fetch(ctx, "txlist", address, "desc")
}

// FetchToken returns the token transfer list of address, oldest first.
func (c *Client) FetchToken(ctx context.Context, address string) ([]domain.RawTransfer, error) {
	return c.fetch(ctx, "tokentx", address, "asc")
}

// apiResponse is the envelope shared by account endpoints.
// Result is an array on success and a message string otherwise.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) fetch(ctx context.Context, action, address, sort string) ([]domain.RawTransfer, error) {
	q := url.Values{}
	q.Set("chainid", strconv.Itoa(c.chainID))
	q.Set("module", "account")
	q.Set("action", action)
	q.Set("address", address)
	q.Set("startblock", startBlock)
	q.Set("endblock", endBlock)
	q.Set("sort", sort)
	q.Set("apikey", c.apiKey)

	endpoint := c.baseURL + "?" + q.Encode()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, address, err)
	}

	if resp.Status == "1" {
		var records []domain.RawTransfer
		if err := json.Unmarshal(resp.Result, &records); err != nil {
			return nil, fmt.Errorf("%s %s: unmarshal result: %w", action, address, err)
		}
		return records, nil
	}

	if resp.Message == noTransactionsMessage {
		return []domain.RawTransfer{}, nil
	}

	return nil, fmt.Errorf("%w: %s %s: %s: %s", ErrAPI, action, address, resp.Message, resultText(resp.Result))
}

// get performs a GET with retries and exponential backoff.
func (c *Client) get(ctx context.Context, endpoint string) (*apiResponse, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", stripURL(err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", stripURL(err))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		// Rate limit is reported in-band with HTTP 200
		if apiResp.Status != "1" && isRateLimited(apiResp.Result) {
			lastErr = fmt.Errorf("rate limited: %s", resultText(apiResp.Result))
			continue
		}

		return &apiResp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// stripURL drops the request URL from err. The URL carries the API key.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func isRateLimited(result json.RawMessage) bool {
	return strings.Contains(strings.ToLower(resultText(result)), "rate limit")
}

// resultText returns the result field when it is a string.
func resultText(result json.RawMessage) string {
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return ""
	}
	return s
}
