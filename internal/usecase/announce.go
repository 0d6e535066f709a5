package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/ports"
)

// AnnouncementState tracks one engine's handshake progress.
type AnnouncementState string

const (
	StatePending   AnnouncementState = "pending"
	StateAnnounced AnnouncementState = "announced"
	StateAbandoned AnnouncementState = "abandoned"
)

// Announcer registers the service with every configured engine. Each engine
// gets its own retry budget and runs independently; one engine failing never
// delays another. The whole activity is tracked so shutdown can await it.
type Announcer struct {
	engine  ports.EnginePort
	desc    domain.ServiceDescriptor
	engines []string
	retries int
	delay   time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	states map[string]AnnouncementState
	group  *errgroup.Group
}

func NewAnnouncer(engine ports.EnginePort, desc domain.ServiceDescriptor, engines []string, retries int, delay time.Duration, log zerolog.Logger) *Announcer {
	states := make(map[string]AnnouncementState, len(engines))
	for _, url := range engines {
		states[url] = StatePending
	}
	return &Announcer{
		engine:  engine,
		desc:    desc,
		engines: engines,
		retries: retries,
		delay:   delay,
		log:     log.With().Str("component", "announcer").Logger(),
		states:  states,
	}
}

// Start launches one announcement loop per engine. Non-blocking.
func (a *Announcer) Start(ctx context.Context) {
	g := new(errgroup.Group)
	a.group = g
	for _, url := range a.engines {
		g.Go(func() error {
			a.announce(ctx, url)
			return nil
		})
	}
}

// Wait blocks until every engine's loop has reached a terminal state or the
// context passed to Start was cancelled.
func (a *Announcer) Wait() {
	if a.group != nil {
		_ = a.group.Wait()
	}
}

// State reports the handshake state for one engine URL.
func (a *Announcer) State(engineURL string) AnnouncementState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.states[engineURL]
}

// States returns a snapshot of all engines' handshake states.
func (a *Announcer) States() map[string]AnnouncementState {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]AnnouncementState, len(a.states))
	for k, v := range a.states {
		out[k] = v
	}
	return out
}

func (a *Announcer) setState(engineURL string, s AnnouncementState) {
	a.mu.Lock()
	a.states[engineURL] = s
	a.mu.Unlock()
}

func (a *Announcer) announce(ctx context.Context, engineURL string) {
	for attempt := 1; attempt <= a.retries; attempt++ {
		err := a.engine.Announce(ctx, engineURL, a.desc)
		if err == nil {
			a.setState(engineURL, StateAnnounced)
			a.log.Info().Str("engine", engineURL).Int("attempt", attempt).Msg("service announced")
			return
		}
		a.log.Debug().Str("engine", engineURL).Int("attempt", attempt).Err(err).Msg("announcement attempt failed")
		if attempt == a.retries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.delay):
		}
	}
	a.setState(engineURL, StateAbandoned)
	a.log.Warn().Str("engine", engineURL).Int("retries", a.retries).Msg("aborting service announcement after exhausting retries")
}

// Withdraw deregisters from every engine, one best-effort attempt each.
// Failures are logged and ignored; the process is already exiting.
func (a *Announcer) Withdraw(ctx context.Context) {
	g := new(errgroup.Group)
	for _, url := range a.engines {
		g.Go(func() error {
			if err := a.engine.Withdraw(ctx, url, a.desc); err != nil {
				a.log.Warn().Str("engine", url).Err(err).Msg("deregistration failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
