// Package middleware provides the gin middleware chain of the HTTP server.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	mwopts "github.com/kart-io/sentinel-embed/pkg/options/middleware"
)

// HeaderXRequestID is the default request ID header.
const HeaderXRequestID = "X-Request-ID"

type requestIDKey struct{}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request ID in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// IDGenerator generates request IDs.
type IDGenerator interface {
	Generate() string
}

// HexGenerator generates 32-character random hex IDs.
type HexGenerator struct{}

var fallbackCounter uint64

// Generate implements IDGenerator. It falls back to a timestamp and counter
// when the system random source fails.
func (HexGenerator) Generate() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x-%x", time.Now().Unix(), atomic.AddUint64(&fallbackCounter, 1))
	}
	return hex.EncodeToString(b)
}

// ULIDGenerator generates 26-character lexically sortable IDs.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator creates a generator with monotonic entropy, so IDs
// generated within the same millisecond stay ordered.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate implements IDGenerator.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// NewGenerator returns the generator named by generatorType, hex by default.
func NewGenerator(generatorType string) IDGenerator {
	if generatorType == mwopts.GeneratorULID {
		return NewULIDGenerator()
	}
	return HexGenerator{}
}

func skipSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}
