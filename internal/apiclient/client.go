package apiclient

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
)

// ErrRateLimited is returned by Submit when the server refused the
// batch because a check from the same source was accepted recently.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

// Client is a thin HTTP client for the canireach API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (e.g. http://host:port).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Submit sends a finished probe run to the server.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.postJSON(ctx, "/api/submit", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Stats fetches the aggregates, optionally filtered by ISP substring.
func (c *Client) Stats(ctx context.Context, ispFilter string) (StatsResponse, error) {
	var resp StatsResponse
	endpoint := "/api/stats"
	if ispFilter != "" {
		endpoint += "?isp=" + url.QueryEscape(ispFilter)
	}
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Services fetches the service registry the server probes against.
func (c *Client) Services(ctx context.Context) (ServicesResponse, error) {
	var resp ServicesResponse
	if err := c.getJSON(ctx, "/api/services", &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.statusError(res)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.statusError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) statusError(res *http.Response) error {
	body, _ := io.ReadAll(res.Body)

	if res.StatusCode == http.StatusTooManyRequests {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.RetryAfter > 0 {
			return &ErrRateLimited{RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second}
		}
		return &ErrRateLimited{RetryAfter: time.Minute}
	}

	msg := strings.TrimSpace(string(body))
	if msg != "" {
		return fmt.Errorf("request failed: %s: %s", res.Status, msg)
	}
	return fmt.Errorf("request failed: %s", res.Status)
}

// IsRateLimited reports whether err is a rate-limit refusal.
func IsRateLimited(err error) bool {
	var rl *ErrRateLimited
	return errors.As(err, &rl)
}
