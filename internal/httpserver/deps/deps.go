package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/geoip"
	"github.com/canireach/canireach/internal/logger"
	"github.com/canireach/canireach/internal/notify"
)

// CheckStore is the slice of the storage layer the handlers need:
// appending check batches and recomputing the aggregates.
type CheckStore interface {
	InsertChecks(ctx context.Context, rows []domain.CheckRow) error
	CountChecksSince(ctx context.Context, since time.Time) (int64, error)
	ServiceStats(ctx context.Context, since time.Time) ([]domain.ServiceStat, error)
	IspServiceStats(ctx context.Context, since time.Time, ispFilter string) ([]domain.IspServiceStat, error)
	Ping(ctx context.Context) error
}

// RateLimiter claims and releases per-ipHash submission slots.
type RateLimiter interface {
	Reserve(ctx context.Context, ipHash string) (ok bool, retryAfter time.Duration, err error)
	Release(ctx context.Context, ipHash string) error
}

// GeoResolver enriches an IP with ISP/city/state, degrading to Unknown
// on any failure.
type GeoResolver interface {
	Lookup(ctx context.Context, ip string) geoip.Info
}

// Publisher announces persisted check batches to dashboard listeners.
type Publisher interface {
	PublishCheckBatch(ctx context.Context, ev domain.CheckBatchEvent) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Registry    []domain.Service // static probe targets, fixed at startup
	StatsWindow time.Duration    // trailing window for /api/stats aggregates

	Store       CheckStore
	RateLimiter RateLimiter
	Geo         GeoResolver
	Publisher   Publisher
	Hub         *notify.Hub // SSE fanout; nil disables /api/events

	RedisClient *redis.Client // readiness probing only

	TrustProxy   bool     // true if running behind a trusted reverse proxy
	AllowedCIDRS []string // IPs allowed to access healthz/readyz endpoints
}

// Now returns the configured clock, defaulting to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
