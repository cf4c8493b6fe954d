// internal/domain/workspace/registry.go
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/domain/cart"
	"github.com/agri-oasis/storefront/internal/domain/checkout"
	"github.com/agri-oasis/storefront/internal/domain/session"
	"github.com/agri-oasis/storefront/internal/infrastructure/marketapi"
	"github.com/agri-oasis/storefront/internal/infrastructure/storage"
)

// Options configures a Registry
type Options struct {
	Storage         storage.Backend
	API             *marketapi.Client
	Validator       *session.IdentityValidator
	CheckoutTimeout time.Duration
	IdleTTL         time.Duration
	SweepSchedule   string
	// KeepAlive is the minimum gap between refreshes of the persisted
	// session of an active workspace. Zero disables refreshing.
	KeepAlive       time.Duration
	Logger          *logrus.Logger
}

// entry fields are written once under Registry.mu
type entry struct {
	once sync.Once
	ws   *Workspace
	err  error
}

// Registry hands out one Workspace per client id, creating it on first use
type Registry struct {
	opts Options
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	cron *cron.Cron
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the workspace of clientID. A new workspace restores its
// persisted session before it is returned; if that fails nothing is cached.
func (r *Registry) Get(ctx context.Context, clientID string) (*Workspace, error) {
	r.mu.Lock()
	e, ok := r.entries[clientID]
	if !ok {
		e = &entry{}
		r.entries[clientID] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		ws, err := r.create(ctx, clientID)
		r.mu.Lock()
		e.ws, e.err = ws, err
		r.mu.Unlock()
	})
	if e.err != nil {
		r.mu.Lock()
		if r.entries[clientID] == e {
			delete(r.entries, clientID)
		}
		r.mu.Unlock()
		return nil, e.err
	}

	now := r.now()
	e.ws.Touch(now)
	r.keepAlive(ctx, e.ws, now)
	return e.ws, nil
}

// keepAlive refreshes the persisted session at most once per
// Options.KeepAlive, so storage does not expire it under an active client
func (r *Registry) keepAlive(ctx context.Context, ws *Workspace, now time.Time) {
	if r.opts.KeepAlive <= 0 {
		return
	}
	last := ws.lastKeepAlive.Load()
	if now.UnixNano()-last < int64(r.opts.KeepAlive) {
		return
	}
	if !ws.lastKeepAlive.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	if err := ws.Session.KeepAlive(ctx); err != nil {
		r.opts.Logger.WithError(err).WithField("client_id", ws.ID).Warn("Failed to refresh persisted session")
	}
}

func (r *Registry) create(ctx context.Context, clientID string) (*Workspace, error) {
	slots, err := r.opts.Storage.ForClient(clientID)
	if err != nil {
		return nil, err
	}

	logger := r.opts.Logger.WithField("client_id", clientID)

	// The store is the token source of its own API client, so the client is
	// bound after construction.
	ws := &Workspace{ID: clientID}
	ws.API = r.opts.API.WithTokens(marketapi.TokenFunc(func() string { return ws.Session.Token() }))
	ws.Session = session.NewStore(slots, ws.API, r.opts.Validator, logger.WithField("component", "session"))
	ws.Checkout = checkout.NewOrchestrator(cart.New(), ws.API, r.opts.CheckoutTimeout, logger.WithField("component", "checkout"))

	if err := ws.Session.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	ws.lastKeepAlive.Store(r.now().UnixNano())

	logger.WithField("authenticated", ws.Session.IsAuthenticated()).Debug("Workspace created")
	return ws, nil
}

// Len returns the number of live workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts workspaces idle for longer than IdleTTL. Workspaces with a
// checkout in flight are kept. The persisted session is not touched.
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if e.ws == nil {
			continue
		}
		if e.ws.LastUsed().After(cutoff) || e.ws.Checkout.InFlight() {
			continue
		}
		delete(r.entries, id)
		evicted++
	}

	if evicted > 0 {
		r.opts.Logger.WithFields(logrus.Fields{
			"evicted":   evicted,
			"remaining": len(r.entries),
		}).Info("Idle workspaces evicted")
	}
	return evicted
}

// Start schedules the idle sweep
func (r *Registry) Start() error {
	if r.opts.SweepSchedule == "" || r.opts.IdleTTL <= 0 {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.opts.SweepSchedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", r.opts.SweepSchedule, err)
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop halts the sweep and waits for a running sweep to finish
func (r *Registry) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
