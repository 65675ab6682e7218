// Package usage counts which sport filters the dashboard is asked for.
// Counts are process telemetry; the medal dataset itself never changes.
package usage

import (
	"context"
	"strings"
	"sync"
)

// AllSports is the key recorded for requests without a sport filter.
const AllSports = "all"

// Recorder stores per-sport selection counters.
type Recorder interface {
	Record(ctx context.Context, sport string) error
	Counts(ctx context.Context) (map[string]int64, error)
	Name() string
}

// Key normalizes a sport filter into a counter key.
func Key(sport string) string {
	if s := strings.TrimSpace(sport); s != "" {
		return s
	}
	return AllSports
}

// Memory is an in-process Recorder.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int64)}
}

// Name implements Recorder.
func (m *Memory) Name() string { return "memory" }

// Record implements Recorder.
func (m *Memory) Record(_ context.Context, sport string) error {
	m.mu.Lock()
	m.counts[Key(sport)]++
	m.mu.Unlock()
	return nil
}

// Counts implements Recorder. The returned map is a copy.
func (m *Memory) Counts(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out, nil
}
