package access

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
)

// Navigator replaces the current location without pushing a history entry.
type Navigator interface {
	Replace(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) Replace(ctx context.Context, target string) error { return f(ctx, target) }

// Guard re-runs Evaluate whenever its inputs change and performs the redirect.
type Guard struct {
	nav     Navigator
	metrics *metrics.AccessMetrics
	logg    *logger.Logger

	mu      sync.Mutex
	last    Inputs
	hasLast bool
	verdict Verdict
}

// NewGuard builds a guard around nav. metrics and logg may be nil.
func NewGuard(nav Navigator, m *metrics.AccessMetrics, logg *logger.Logger) (*Guard, error) {
	if nav == nil {
		return nil, errors.New("navigator required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Guard{nav: nav, metrics: m, logg: logg}, nil
}

// Update evaluates in and, on a redirect, replaces the location. Only inputs
// identical to the previous call are skipped; any other change that yields a
// redirect replaces again, even to the same target.
func (g *Guard) Update(ctx context.Context, in Inputs) (Verdict, error) {
	g.mu.Lock()
	if g.hasLast && sameInputs(g.last, in) {
		v := g.verdict
		g.mu.Unlock()
		return v, nil
	}
	v := Evaluate(in)
	g.last = in
	g.hasLast = true
	g.verdict = v
	g.mu.Unlock()

	g.metrics.IncVerdict(string(in.Group), string(v.Kind))
	if v.Kind != KindRedirect {
		return v, nil
	}

	ctx = g.logg.WithFields(ctx, map[string]any{"route_group": string(in.Group), "target": v.Target})
	if err := g.nav.Replace(ctx, v.Target); err != nil {
		g.logg.Error(ctx, "gate redirect failed", err)
		g.mu.Lock()
		g.hasLast = false
		g.mu.Unlock()
		return v, err
	}
	g.logg.Debug(ctx, "gate redirected")
	return v, nil
}

// Verdict returns the most recent decision.
func (g *Guard) Verdict() Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verdict
}

func sameInputs(a, b Inputs) bool {
	if a.Loading != b.Loading || a.HasSession != b.HasSession || a.CanAccessApp != b.CanAccessApp || a.Group != b.Group {
		return false
	}
	return roleOf(a) == roleOf(b) && (a.Role == nil) == (b.Role == nil)
}
