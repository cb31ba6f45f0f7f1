package sweep_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/kehila-platform/kehila/internal/sweep"
	"github.com/kehila-platform/kehila/pkg/store"
	"github.com/kehila-platform/kehila/pkg/store/mock"
)

func TestMain(m *testing.M) {
	// verify no goroutine leaks across tests in this package
	goleak.VerifyTestMain(m)
}

func TestSweeperRunsImmediately(t *testing.T) {
	m := mock.New()
	s := sweep.New(m, time.Hour, nil)

	s.Start(context.Background())
	s.Stop()

	if len(m.Invocations) != 1 {
		t.Fatalf("expected exactly one sweep before the first tick, got %d", len(m.Invocations))
	}
	if m.Invocations[0].Name != store.FnExpireSubscriptions {
		t.Fatalf("unexpected function %q", m.Invocations[0].Name)
	}
}

func TestSweeperTicks(t *testing.T) {
	m := mock.New()
	s := sweep.New(m, 10*time.Millisecond, nil)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if len(m.Invocations) < 2 {
		t.Fatalf("expected repeated sweeps, got %d", len(m.Invocations))
	}
}

func TestSweeperSurvivesFailures(t *testing.T) {
	m := mock.New()
	m.InvokeErr = fmt.Errorf("backend unavailable")
	s := sweep.New(m, 10*time.Millisecond, nil)

	s.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	// failures are dropped; the next tick is the retry
	if len(m.Invocations) < 2 {
		t.Fatalf("expected the sweeper to keep ticking after failures, got %d", len(m.Invocations))
	}
}

func TestSweeperExitsOnContextCancel(t *testing.T) {
	m := mock.New()
	ctx, cancel := context.WithCancel(context.Background())
	s := sweep.New(m, time.Hour, nil)

	s.Start(ctx)
	cancel()
	s.Stop()
}
