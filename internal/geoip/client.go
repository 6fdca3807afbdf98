package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/canireach/canireach/internal/logger"
	"github.com/canireach/canireach/internal/utils"
)

const (
	// DefaultBaseURL is the ip-api.com endpoint. Plain HTTP: the free
	// tier does not serve TLS.
	DefaultBaseURL = "http://ip-api.com"

	// DefaultTimeout bounds how long enrichment may hold up ingestion.
	DefaultTimeout = 3 * time.Second

	// UnknownISP is the sentinel used whenever the lookup fails.
	UnknownISP = "Unknown ISP"
)

// Info is the enrichment attached to every persisted check row.
type Info struct {
	ISP   string `json:"isp"`
	City  string `json:"city"`
	State string `json:"regionName"`
}

// Unknown is the degraded enrichment result.
func Unknown() Info {
	return Info{ISP: UnknownISP}
}

// Client resolves ISP/city/region for an IP via an ip-api.com style
// HTTP lookup. The lookup is best effort and off the critical path:
// every failure mode degrades to Unknown.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

// Lookup enriches an IP. It never returns an error: timeouts, non-OK
// statuses, and malformed bodies all come back as Unknown so that
// enrichment can never block a submission.
func (c *Client) Lookup(ctx context.Context, ip string) Info {
	lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/json/%s?fields=isp,city,regionName", c.baseURL, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(lookupCtx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		c.logger.Debug("geoip lookup skipped", logger.Error(err))
		return Unknown()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("geoip lookup failed", logger.Error(err))
		return Unknown()
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("geoip lookup returned non-OK status",
			logger.Int("status", resp.StatusCode))
		return Unknown()
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.logger.Debug("geoip lookup body unreadable", logger.Error(err))
		return Unknown()
	}

	if info.ISP == "" {
		info.ISP = UnknownISP
	}
	return info
}
