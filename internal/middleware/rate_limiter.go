package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tillpoint/internal/apierror"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

type rateMap struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
}

func newRateMap() *rateMap {
	return &rateMap{entries: make(map[string]*rateEntry)}
}

func (m *rateMap) get(ip string) *rateEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[ip]
	if !ok {
		entry = &rateEntry{}
		m.entries[ip] = entry
	}
	return entry
}

// purge drops expired entries so IPs that never return don't accumulate.
func (m *rateMap) purge(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for ip, entry := range m.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(m.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

var (
	loginRates = newRateMap()
	apiRates   = newRateMap()
)

func limit(rates *rateMap, max int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := rates.get(c.ClientIP())

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > max {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limit(loginRates, 20, time.Minute, "too many login attempts, retry in a minute")
}

// RateLimiter returns a general-purpose sliding-window rate limiter.
func RateLimiter(max int, window time.Duration) gin.HandlerFunc {
	return limit(apiRates, max, window, "too many requests, retry shortly")
}

const purgeInterval = 5 * time.Minute

func init() {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			purged := loginRates.purge(now) + apiRates.purge(now)
			if purged > 0 {
				log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
			}
		}
	}()
}
