package domain

import "time"

// Service is a probe target. The registry of services is static
// deploy-time configuration; Name is the display key and must be
// unique within a registry.
type Service struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Icon string `json:"icon" yaml:"icon"`
}

// CheckResult is the outcome of a single reachability probe. It exists
// only between the probe run and submission; the server turns accepted
// results into CheckRows.
//
// ResponseTimeMs is nil when the probe was classified as blocked
// (timeout, transport error, cancellation). A settled response of any
// status counts as reachable: the probe treats the response as opaque
// and uses "connection completed at all" as the signal, so an
// application-level 403 and a 200 are indistinguishable on purpose.
type CheckResult struct {
	ServiceName    string `json:"serviceName"`
	ServiceURL     string `json:"serviceUrl"`
	IsBlocked      bool   `json:"isBlocked"`
	ResponseTimeMs *int64 `json:"responseTimeMs"`
}

// CheckRow is one persisted check. The checks log is append-only: rows
// are never updated or deleted by the application. IPHash is the only
// submitter identity ever stored; raw IPs never reach the store.
type CheckRow struct {
	IPHash         string
	ISP            string
	City           string
	State          string
	ServiceName    string
	ServiceURL     string
	IsBlocked      bool
	ResponseTimeMs *int64
	CreatedAt      time.Time
}

// CheckBatchEvent is published after a batch of checks has been
// persisted, so dashboards can re-query the aggregates.
type CheckBatchEvent struct {
	ISP       string    `json:"isp"`
	Services  int       `json:"services"`
	CreatedAt time.Time `json:"created_at"`
}
