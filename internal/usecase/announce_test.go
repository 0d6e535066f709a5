package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// scriptedEngine fails each engine's announcement a configured number of
// times before succeeding; -1 means it never succeeds.
type scriptedEngine struct {
	mu        sync.Mutex
	failures  map[string]int
	attempts  map[string]int
	withdrawn map[string]int
	withdrawE error
}

func newScriptedEngine(failures map[string]int) *scriptedEngine {
	return &scriptedEngine{
		failures:  failures,
		attempts:  make(map[string]int),
		withdrawn: make(map[string]int),
	}
}

func (f *scriptedEngine) Announce(ctx context.Context, url string, desc domain.ServiceDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[url]++
	n := f.failures[url]
	if n < 0 || f.attempts[url] <= n {
		return errors.New("engine refused")
	}
	return nil
}

func (f *scriptedEngine) Withdraw(ctx context.Context, url string, desc domain.ServiceDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawn[url]++
	return f.withdrawE
}

func (f *scriptedEngine) attemptCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[url]
}

func (f *scriptedEngine) withdrawCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.withdrawn[url]
}

func TestAnnouncer_AbandonsAfterRetryBudget(t *testing.T) {
	const engineURL = "http://engine-a"
	fake := newScriptedEngine(map[string]int{engineURL: -1})
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, []string{engineURL}, 4, time.Millisecond, zerolog.Nop())

	a.Start(context.Background())
	a.Wait()

	if got := fake.attemptCount(engineURL); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
	if got := a.State(engineURL); got != StateAbandoned {
		t.Errorf("state = %s, want %s", got, StateAbandoned)
	}
}

func TestAnnouncer_SucceedsOnSecondAttempt(t *testing.T) {
	const engineURL = "http://engine-a"
	fake := newScriptedEngine(map[string]int{engineURL: 1})
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, []string{engineURL}, 5, time.Millisecond, zerolog.Nop())

	a.Start(context.Background())
	a.Wait()

	if got := fake.attemptCount(engineURL); got != 2 {
		t.Errorf("attempts = %d, want exactly 2", got)
	}
	if got := a.State(engineURL); got != StateAnnounced {
		t.Errorf("state = %s, want %s", got, StateAnnounced)
	}
}

func TestAnnouncer_ImmediateSuccessSingleAttempt(t *testing.T) {
	const engineURL = "http://engine-a"
	fake := newScriptedEngine(map[string]int{engineURL: 0})
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, []string{engineURL}, 3, time.Hour, zerolog.Nop())

	a.Start(context.Background())
	a.Wait() // must not sit in the retry delay after a success

	if got := fake.attemptCount(engineURL); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if got := a.State(engineURL); got != StateAnnounced {
		t.Errorf("state = %s, want %s", got, StateAnnounced)
	}
}

func TestAnnouncer_EnginesAreIndependent(t *testing.T) {
	const (
		failing = "http://engine-a"
		healthy = "http://engine-b"
	)
	fake := newScriptedEngine(map[string]int{failing: -1, healthy: 0})
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, []string{failing, healthy}, 3, 200*time.Millisecond, zerolog.Nop())

	a.Start(context.Background())

	// The healthy engine must announce long before the failing engine's
	// retry loop runs out (~400ms in).
	deadline := time.Now().Add(100 * time.Millisecond)
	for a.State(healthy) != StateAnnounced {
		if time.Now().After(deadline) {
			t.Fatalf("healthy engine not announced; states = %v", a.States())
		}
		time.Sleep(time.Millisecond)
	}
	if got := a.State(failing); got == StateAbandoned {
		t.Errorf("failing engine already terminal while healthy announced")
	}

	a.Wait()
	if got := a.State(failing); got != StateAbandoned {
		t.Errorf("failing engine state = %s, want %s", got, StateAbandoned)
	}
	if got := fake.attemptCount(failing); got != 3 {
		t.Errorf("failing engine attempts = %d, want 3", got)
	}
	if got := fake.attemptCount(healthy); got != 1 {
		t.Errorf("healthy engine attempts = %d, want 1", got)
	}
}

func TestAnnouncer_CancelStopsRetryLoop(t *testing.T) {
	const engineURL = "http://engine-a"
	fake := newScriptedEngine(map[string]int{engineURL: -1})
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, []string{engineURL}, 10, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)

	for fake.attemptCount(engineURL) == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after cancellation")
	}
	if got := fake.attemptCount(engineURL); got != 1 {
		t.Errorf("attempts after cancel = %d, want 1", got)
	}
}

func TestAnnouncer_WithdrawBestEffort(t *testing.T) {
	engines := []string{"http://engine-a", "http://engine-b"}
	fake := newScriptedEngine(map[string]int{})
	fake.withdrawE = errors.New("engine gone")
	a := NewAnnouncer(fake, domain.ServiceDescriptor{}, engines, 1, time.Millisecond, zerolog.Nop())

	// Must not panic or propagate errors even when every engine refuses.
	a.Withdraw(context.Background())

	for _, url := range engines {
		if got := fake.withdrawCount(url); got != 1 {
			t.Errorf("withdraw(%s) = %d calls, want 1", url, got)
		}
	}
}
