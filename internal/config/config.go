package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabasePath string // sqlite file holding the append-only check log
	ServicesFile string // optional YAML override for the service registry (empty = builtin list)

	RateLimitWindow time.Duration // minimum interval between accepted submissions per IP hash (default: 1h)
	StatsWindow     time.Duration // trailing window the aggregates are computed over (default: 24h)

	GeoBaseURL string        // ip-api.com style lookup endpoint
	GeoTimeout time.Duration // enrichment budget; failures degrade to Unknown ISP (default: 3s)

	// Redis (rate-limit slots + insert notifications)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts

	// HTTP abuse limiter (token bucket per client IP, independent of
	// the per-ipHash submission window)
	RateBurst         int
	RateRefillPerMin  int
	RateLimitMaxEntry int

	TrustProxy   bool     // true => resolve client IPs from X-Forwarded-For / X-Real-IP
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CANIREACH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CANIREACH_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CANIREACH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CANIREACH_PRETTY_LOG", true),

		// Storage
		DatabasePath: getenv("CANIREACH_DB_PATH", "canireach.db"),
		ServicesFile: getenv("CANIREACH_SERVICES_FILE", ""),

		// Ingestion policy
		RateLimitWindow: mustDuration("CANIREACH_RATE_LIMIT_WINDOW", time.Hour),
		StatsWindow:     mustDuration("CANIREACH_STATS_WINDOW", 24*time.Hour),

		// Enrichment
		GeoBaseURL: getenv("CANIREACH_GEO_BASE_URL", "http://ip-api.com"),
		GeoTimeout: mustDuration("CANIREACH_GEO_TIMEOUT", 3*time.Second),

		// Redis settings
		RedisAddr:           requireEnv("CANIREACH_REDIS_ADDR"),
		RedisUser:           getenv("CANIREACH_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("CANIREACH_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CANIREACH_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// HTTP abuse limiter
		RateBurst:         getenvInt("CANIREACH_RATE_BURST", 10),
		RateRefillPerMin:  getenvInt("CANIREACH_RATE_REFILL_PER_MIN", 30),
		RateLimitMaxEntry: getenvInt("CANIREACH_RATE_MAX_ENTRIES", 10000),

		// Access
		TrustProxy:   mustBool("CANIREACH_TRUST_PROXY", true),
		AllowedCIDRS: parseAllowedIPs(getenv("CANIREACH_ALLOWED_CIDRS", "")),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
