// Package id generates sortable identifiers for log correlation.
//
// IDs are prefixed ULIDs ("call_01J..."), so they read well in logs and sort
// by creation time.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CallID identifies one remote call.
type CallID string

// CallPrefix tags remote call IDs.
const CallPrefix = "call"

func (c CallID) String() string { return string(c) }

// Generator produces ULIDs from a shared entropy source.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	clock   func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader, time.Now)
	})
	return defaultGenerator
}

// NewGenerator builds a generator. Tests pass deterministic entropy and clock.
func NewGenerator(entropy io.Reader, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{entropy: ulid.Monotonic(entropy, 0), clock: clock}
}

// Next returns a new ULID.
func (g *Generator) Next() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.clock()), g.entropy)
}

// WithPrefix returns prefix + "_" + a new ULID.
func (g *Generator) WithPrefix(prefix string) string {
	return prefix + "_" + g.Next().String()
}

// NewCallID generates a remote call ID.
func NewCallID() CallID {
	return CallID(Default().WithPrefix(CallPrefix))
}
