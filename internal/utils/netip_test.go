package utils

import (
	"net/http/httptest"
	"testing"
)

func TestSubmitterIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded-for single",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:    "203.0.113.7",
		},
		{
			name:    "forwarded-for takes first entry",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1, 10.0.0.2"},
			want:    "203.0.113.7",
		},
		{
			name: "forwarded-for wins over real-ip",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7",
				"X-Real-IP":       "198.51.100.9",
			},
			want: "203.0.113.7",
		},
		{
			name:    "real-ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.9"},
			want:    "198.51.100.9",
		},
		{
			name:    "no headers falls back to sentinel",
			headers: nil,
			want:    SentinelIP,
		},
		{
			name:    "port stripped",
			headers: map[string]string{"X-Real-IP": "198.51.100.9:4433"},
			want:    "198.51.100.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/submit", nil)
			r.RemoteAddr = "192.0.2.50:12345" // must never be used
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := SubmitterIP(r); got != tt.want {
				t.Errorf("SubmitterIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	a := HashIP("203.0.113.7")
	b := HashIP("203.0.113.7")
	c := HashIP("203.0.113.8")

	if a != b {
		t.Errorf("HashIP not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Error("HashIP collides for distinct IPs")
	}
	if len(a) != 64 {
		t.Errorf("HashIP length = %d, want 64 hex chars", len(a))
	}
	// The digest must not leak the input.
	if a == "203.0.113.7" {
		t.Error("HashIP returned the raw IP")
	}
}

func TestClientIPTrustProxy(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/stats", nil)
	r.RemoteAddr = "10.1.2.3:9999"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")

	if got := ClientIP(r, true); got != "203.0.113.7" {
		t.Errorf("ClientIP(trustProxy) = %q, want forwarded IP", got)
	}
	if got := ClientIP(r, false); got != "10.1.2.3" {
		t.Errorf("ClientIP(no proxy) = %q, want remote addr host", got)
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"192.0.2.1", "10.0.0.0/8", " ", "not-an-ip"})

	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}
	if !m.Allow("192.0.2.1") {
		t.Error("exact IP should match")
	}
	if !m.Allow("10.42.0.7") {
		t.Error("CIDR member should match")
	}
	if m.Allow("192.0.2.2") {
		t.Error("unlisted IP should not match")
	}
	if m.Allow("garbage") {
		t.Error("unparseable IP should not match")
	}
}
