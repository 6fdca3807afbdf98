package domain

import (
	"math"
	"time"
)

// ServiceStat is the per-service aggregate over the trailing stats
// window, recomputed from the checks log on every query.
type ServiceStat struct {
	ServiceName  string    `json:"service_name"`
	TotalChecks  int64     `json:"total_checks"`
	BlockedCount int64     `json:"blocked_count"`
	BlockedPct   int       `json:"blocked_pct"`
	LastChecked  time.Time `json:"last_checked,omitzero"`
}

// IspServiceStat is the same aggregate keyed by (service, ISP).
type IspServiceStat struct {
	ServiceName  string    `json:"service_name"`
	ISP          string    `json:"isp"`
	TotalChecks  int64     `json:"total_checks"`
	BlockedCount int64     `json:"blocked_count"`
	BlockedPct   int       `json:"blocked_pct"`
	LastChecked  time.Time `json:"last_checked,omitzero"`
}

// BlockedPct returns round(100*blocked/total) clamped to [0,100].
// A service with no checks reports 0, not NaN.
func BlockedPct(total, blocked int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(blocked) / float64(total)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
