// Package testutil holds deterministic stand-ins for tests.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates "<prefix>-1", "<prefix>-2", ... so request ids in
// logs and headers are predictable.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceIDs creates a generator. An empty prefix becomes "req".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "req"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence so the next id ends in 1.
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
