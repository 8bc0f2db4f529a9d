package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shelfwatch/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultQuotaPerMinute = 120
	maxAttempts           = 3
	maxBodyBytes          = 1 << 20 // 1 MiB
)

// Config controls the advisor client's transport behavior. Zero values fall
// back to the defaults above.
type Config struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	QuotaPerMinute int
}

// Client handles communication with the restock advisor API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new advisor API client
func NewClient(cfg Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	quota := cfg.QuotaPerMinute
	if quota <= 0 {
		quota = defaultQuotaPerMinute
	}

	// The advisor quota is per minute; rate.Limit is per second.
	limiter := rate.NewLimiter(rate.Limit(float64(quota)/60.0), 10) // burst of 10 requests

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request/response logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// debugLog logs only when debug mode is enabled
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[ADVISOR] "+format, args...)
	}
}

// Recommend asks the advisor service to analyze one product's restock needs.
// Transient failures (transport errors, 429, 5xx) are retried with backoff
// inside this single call; other failures return immediately.
func (c *Client) Recommend(ctx context.Context, req domain.RestockRequest) (*domain.AdvisorResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/restock/analyze", c.baseURL)
	c.debugLog("Recommend %s (sku=%s quantity=%d)", req.ProductName, req.SKU, req.Quantity)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, endpoint, payload)
		if err != nil {
			log.Printf("[ADVISOR] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if readErr != nil {
			log.Printf("[ADVISOR] Body read error (attempt %d): %v", attempt, readErr)
			lastErr = fmt.Errorf("%w: %v", domain.ErrAdvisorAPIFailure, readErr)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			if retryableStatus(resp.StatusCode) {
				log.Printf("[ADVISOR] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
				lastErr = fmt.Errorf("%w: status %d", domain.ErrAdvisorAPIFailure, resp.StatusCode)
				time.Sleep(exponentialBackoff(attempt))
				continue
			}
			return nil, fmt.Errorf("%w: status %d", domain.ErrAdvisorAPIFailure, resp.StatusCode)
		}

		var advisorResp domain.AdvisorResponse
		if err := json.Unmarshal(body, &advisorResp); err != nil {
			c.debugLog("undecodable payload: %s", string(body))
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}

		// A reply carrying neither a summary nor a suggestion is unusable.
		if advisorResp.AnalyzerSummary == "" && advisorResp.RestockSuggestion == "" {
			return nil, fmt.Errorf("%w: missing analysis fields", domain.ErrMalformedResponse)
		}

		c.debugLog("Recommend %s succeeded on attempt %d", req.ProductName, attempt)
		return &advisorResp, nil
	}

	log.Printf("[ADVISOR] All retries failed for product: %q", req.ProductName)
	return nil, lastErr
}

// doRequest executes an HTTP POST request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ShelfWatch/1.0")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAdvisorAPIFailure, err)
	}
	return resp, nil
}

// retryableStatus reports whether a status code signals a transient failure
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// exponentialBackoff returns the wait before the next attempt: 500ms, 1s, 2s.
func exponentialBackoff(attempt int) time.Duration {
	return 500 * time.Millisecond << (attempt - 1)
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
