package apiclient

import "github.com/canireach/canireach/internal/domain"

// SubmitRequest carries one finished probe run.
type SubmitRequest struct {
	Results []domain.CheckResult `json:"results"`
}

// SubmitResponse echoes the enrichment the server resolved for the
// submitter, never the IP itself.
type SubmitResponse struct {
	Success bool   `json:"success"`
	ISP     string `json:"isp"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// StatsResponse mirrors the aggregate payload of /api/stats.
type StatsResponse struct {
	ServiceStats []domain.ServiceStat    `json:"serviceStats"`
	IspStats     []domain.IspServiceStat `json:"ispStats"`
	TotalChecks  int64                   `json:"totalChecks"`
	LastUpdated  string                  `json:"lastUpdated"`
}

// ServicesResponse lists the probe targets the server aggregates by.
type ServicesResponse struct {
	Services []domain.Service `json:"services"`
}

type apiError struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}
