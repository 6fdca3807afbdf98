package probe

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/canireach/canireach/internal/domain"
)

// DefaultTimeout is the per-service probe budget.
const DefaultTimeout = 5 * time.Second

// Options tunes a probe run.
type Options struct {
	// Timeout applies to each probe independently; a slow probe never
	// delays the others, only the final join. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Client overrides the HTTP client used for probes. Mostly for tests.
	Client *http.Client
}

// ProgressFunc receives each result as its probe settles. Completion
// order is arbitrary; only the final result list follows registry
// order. Invocations are serialized by the prober.
type ProgressFunc func(serviceName string, result domain.CheckResult)

// RunAll probes every service in parallel and returns exactly one
// result per service, in registry order, after all probes settle.
//
// A probe that settles at all - any status, the response is treated as
// opaque - is reachable, with its wall-clock latency recorded. A probe
// that errors, times out, or is cancelled is blocked with no latency.
// The goal is detecting ISP-level interception (DNS/TCP/TLS), not
// service health, so reachability cannot be told apart from an
// application error; nor can an ISP block be told apart from the
// service itself being down. Probe failures are classifications, never
// errors: RunAll itself cannot fail.
func RunAll(ctx context.Context, services []domain.Service, opts Options, onProgress ProgressFunc) []domain.CheckResult {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = newClient(timeout)
	}

	results := make([]domain.CheckResult, len(services))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, svc := range services {
		wg.Add(1)
		go func(i int, svc domain.Service) {
			defer wg.Done()

			res := checkOne(ctx, client, svc, timeout)
			results[i] = res

			if onProgress != nil {
				mu.Lock()
				onProgress(svc.Name, res)
				mu.Unlock()
			}
		}(i, svc)
	}
	wg.Wait()

	return results
}

func checkOne(ctx context.Context, client *http.Client, svc domain.Service, timeout time.Duration) domain.CheckResult {
	result := domain.CheckResult{
		ServiceName: svc.Name,
		ServiceURL:  svc.URL,
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, svc.URL, http.NoBody)
	if err != nil {
		result.IsBlocked = true
		return result
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := client.Do(req)
	if err != nil {
		result.IsBlocked = true
		return result
	}
	// The body is never read: settling is the whole signal.
	_ = resp.Body.Close()

	elapsed := time.Since(start).Milliseconds()
	result.ResponseTimeMs = &elapsed
	return result
}

func newClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 0,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			DisableKeepAlives:   true,
		},
	}
}
