package redis

const (
	// KeyPrefixRateLimit is the prefix for per-ipHash submission slots.
	// Keys carry a TTL equal to the rate-limit window; redis expiry is
	// the only cleanup.
	KeyPrefixRateLimit = "canireach:ratelimit:"

	// ChannelCheckInserts carries one message per persisted check batch.
	ChannelCheckInserts = "canireach:events:checks"
)

// RateLimitKey returns the redis key holding the submission slot for an
// IP hash. Only hashes ever appear in keys, never raw IPs.
func RateLimitKey(ipHash string) string {
	return KeyPrefixRateLimit + ipHash
}
