package collect

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces page fetches per hostname so a batch of leads stays
// polite to the target site. Each host gets its own bucket; a slow site
// never stalls fetches elsewhere.
type HostLimiter struct {
	rate  rate.Limit
	burst int

	mu    sync.RWMutex
	hosts map[string]*rate.Limiter
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		rate:  rate.Limit(reqPerSec),
		burst: burst,
		hosts: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host behind rawURL may be fetched again.
// Unparseable URLs share one bucket so they are still throttled.
func (hl *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	return hl.bucket(host).Wait(ctx)
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.RLock()
	lim := hl.hosts[host]
	hl.mu.RUnlock()
	if lim != nil {
		return lim
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()
	if lim := hl.hosts[host]; lim != nil {
		return lim
	}
	lim = rate.NewLimiter(hl.rate, hl.burst)
	hl.hosts[host] = lim
	return lim
}
