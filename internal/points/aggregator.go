package points

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/finpilot-backend/pkg/logger"
	"github.com/angelmondragon/finpilot-backend/pkg/metrics"
)

// Phase is the aggregator lifecycle state.
type Phase string

const (
	PhaseUninitialized   Phase = "uninitialized"
	PhaseLoading         Phase = "loading"
	PhaseReady           Phase = "ready"
	PhaseStaleRefreshing Phase = "stale_refreshing"
)

// State is what consumers render: the total and whether a read is in flight.
type State struct {
	TotalPoints int64    `json:"total_points"`
	Loading     bool     `json:"loading"`
	Phase       Phase    `json:"phase"`
	Identity    Identity `json:"-"`
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithTimeout bounds every read.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// WithLogger sets the logger used for read failures.
func WithLogger(l *logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logg = l
		}
	}
}

// WithMetrics records read outcomes.
func WithMetrics(m *metrics.PointsMetrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// Aggregator holds the points total of the current identity. Every read is
// tagged with a sequence number; only the most recently issued read may
// update the state, so a late response never overwrites a newer one.
// Subscribers see states in the order they were produced; a state that was
// overtaken before delivery is skipped. Callbacks must not call back into the
// aggregator.
type Aggregator struct {
	reader  TotalReader
	timeout time.Duration
	logg    *logger.Logger
	metrics *metrics.PointsMetrics

	mu      sync.Mutex
	state   State
	seq     uint64
	subs    map[int]func(State)
	nextSub int
	version uint64

	notifyMu  sync.Mutex
	delivered uint64
}

// update is one published state and the subscribers registered when it was produced.
type update struct {
	version uint64
	state   State
	subs    []func(State)
}

// NewAggregator builds an aggregator in the uninitialized phase.
func NewAggregator(reader TotalReader, opts ...Option) (*Aggregator, error) {
	if reader == nil {
		return nil, errors.New("total reader required")
	}
	a := &Aggregator{
		reader: reader,
		logg:   logger.Nop(),
		state:  State{Phase: PhaseUninitialized},
		subs:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Snapshot returns the current state.
func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe registers fn for state changes and returns its cancel func.
func (a *Aggregator) Subscribe(fn func(State)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// SetIdentity switches the keys. A change triggers a read without an explicit
// Refresh; setting the same identity again is a no-op.
func (a *Aggregator) SetIdentity(ctx context.Context, id Identity) State {
	a.mu.Lock()
	if id == a.state.Identity && a.state.Phase != PhaseUninitialized {
		s := a.state
		a.mu.Unlock()
		return s
	}
	a.state = State{Phase: PhaseUninitialized, Identity: id}
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// Refresh re-reads the total for the current identity and blocks until the
// read settles. The returned state may reflect a newer read than this one.
func (a *Aggregator) Refresh(ctx context.Context) State {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	id := a.state.Identity

	if !id.Complete() {
		a.state = State{Phase: PhaseReady, Identity: id}
		u := a.publishLocked()
		a.mu.Unlock()
		a.metrics.ObserveFetch(metrics.OutcomeSkipped, 0)
		a.deliver(u)
		return u.state
	}

	switch a.state.Phase {
	case PhaseReady, PhaseStaleRefreshing:
		a.state.Phase = PhaseStaleRefreshing
	default:
		a.state.Phase = PhaseLoading
	}
	a.state.Loading = true
	u := a.publishLocked()
	a.mu.Unlock()
	a.deliver(u)

	total, found, err := a.read(ctx, id)

	a.mu.Lock()
	if seq != a.seq || id != a.state.Identity {
		s := a.state
		a.mu.Unlock()
		return s
	}
	a.state.Loading = false
	switch {
	case err != nil:
		if a.state.Phase == PhaseStaleRefreshing {
			a.state.Phase = PhaseReady
		} else {
			a.state.Phase = PhaseUninitialized
		}
	case !found:
		a.state.TotalPoints = 0
		a.state.Phase = PhaseReady
	default:
		a.state.TotalPoints = total
		a.state.Phase = PhaseReady
	}
	u = a.publishLocked()
	a.mu.Unlock()
	a.deliver(u)
	return u.state
}

func (a *Aggregator) read(ctx context.Context, id Identity) (int64, bool, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	total, found, err := a.reader.FindTotal(ctx, id.OrgID, id.UserID)
	elapsed := time.Since(started)
	switch {
	case err != nil:
		a.metrics.ObserveFetch(metrics.OutcomeError, elapsed)
		ctx = a.logg.WithIdentity(ctx, id.OrgID.String(), id.UserID.String())
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "points total read failed; keeping previous total")
	case !found:
		a.metrics.ObserveFetch(metrics.OutcomeNotFound, elapsed)
	default:
		a.metrics.ObserveFetch(metrics.OutcomeOK, elapsed)
	}
	return total, found, err
}

// publishLocked stamps the current state with the next version. a.mu must be held.
func (a *Aggregator) publishLocked() update {
	a.version++
	u := update{version: a.version, state: a.state}
	if len(a.subs) > 0 {
		u.subs = make([]func(State), 0, len(a.subs))
		for _, fn := range a.subs {
			u.subs = append(u.subs, fn)
		}
	}
	return u
}

// deliver hands u to its subscribers unless a newer version already went out.
func (a *Aggregator) deliver(u update) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	if u.version <= a.delivered {
		return
	}
	a.delivered = u.version
	for _, fn := range u.subs {
		fn(u.state)
	}
}
