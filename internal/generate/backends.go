package generate

import (
	"context"
	"sync"

	"faqgen/internal/llm"
	"faqgen/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Backend is one completion backend in the rotation pool.
type Backend struct {
	Name      string
	Model     string
	completer llm.Completer
	limiter   *rate.Limiter
}

// NewBackend wires a descriptor to its completer. A positive RPS adds a
// proactive client-side throttle on top of the reactive rate-limit handling.
func NewBackend(desc config.BackendDescriptor, completer llm.Completer) *Backend {
	var limiter *rate.Limiter
	if desc.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(desc.RPS), 1)
	}
	return &Backend{
		Name:      desc.Name,
		Model:     desc.Model,
		completer: completer,
		limiter:   limiter,
	}
}

func (b *Backend) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	return b.limiter.Wait(ctx)
}

// Pool tracks which backends are currently rate-limited and hands them out in
// round-robin priority order. Backends enter the pool sorted by priority and
// never leave; rate-limited ones are skipped until ResetAll.
type Pool struct {
	mu          sync.Mutex
	backends    []*Backend
	rateLimited map[string]bool
	cursor      int
	usage       map[string]int
	logger      *zap.Logger
}

func NewPool(backends []*Backend, logger *zap.Logger) *Pool {
	return &Pool{
		backends:    backends,
		rateLimited: make(map[string]bool),
		usage:       make(map[string]int),
		logger:      logger,
	}
}

func (p *Pool) Len() int {
	return len(p.backends)
}

// Next returns the next backend that is not rate-limited and not in skip,
// advancing the round-robin cursor. It returns false when every candidate is
// rate-limited or skipped.
func (p *Pool) Next(skip map[string]bool) (*Backend, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(p.backends); i++ {
		idx := (p.cursor + i) % len(p.backends)
		backend := p.backends[idx]
		if p.rateLimited[backend.Name] || skip[backend.Name] {
			continue
		}
		p.cursor = idx + 1
		return backend, true
	}
	return nil, false
}

// MarkRateLimited parks a backend until the next ResetAll.
func (p *Pool) MarkRateLimited(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rateLimited[name] = true
	p.logger.Warn("Backend rate limited", zap.String("backend", name))
}

// ResetAll returns every backend to the available state after a cooldown.
func (p *Pool) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rateLimited = make(map[string]bool)
	p.logger.Info("All backends reset to available")
}

// RecordUse counts a successful batch served by the named backend.
func (p *Pool) RecordUse(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage[name]++
}

// Usage returns per-backend successful batch counts.
func (p *Pool) Usage() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.usage))
	for name, count := range p.usage {
		out[name] = count
	}
	return out
}
