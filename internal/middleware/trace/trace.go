// Package trace attaches request IDs to contexts and keeps rolling
// request counters for the metrics endpoint.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

type ctxKey struct{}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// WithRequestID stores the request ID on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID from the context, or "" when the
// context never went through the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Metrics is a lock-free request counter safe for concurrent use.
type Metrics struct {
	requests    int64
	totalMicros int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Observe records one completed request.
func (m *Metrics) Observe(d time.Duration) {
	atomic.AddInt64(&m.requests, 1)
	atomic.AddInt64(&m.totalMicros, d.Microseconds())
}

// Snapshot returns the request count and the mean response time.
func (m *Metrics) Snapshot() (requests int64, avg time.Duration) {
	requests = atomic.LoadInt64(&m.requests)
	if requests > 0 {
		avg = time.Duration(atomic.LoadInt64(&m.totalMicros)/requests) * time.Microsecond
	}
	return requests, avg
}
