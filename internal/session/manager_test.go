package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitsnaps/open-creator/internal/interperr"
	"github.com/bitsnaps/open-creator/internal/interpreter"
)

func testManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m := NewManager(cfg, zerolog.Nop())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManagerDefaultSession(t *testing.T) {
	m := testManager(t, DefaultConfig())
	ctx := context.Background()

	if _, err := m.Execute(ctx, "", "x = 20"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := m.Execute(ctx, "", "x + 22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "42" {
		t.Errorf("expected stdout '42', got %q", res.Stdout)
	}

	infos := m.List()
	if len(infos) != 1 || infos[0].ID != DefaultSession {
		t.Errorf("expected single %q session, got %+v", DefaultSession, infos)
	}
}

func TestManagerSessionIsolation(t *testing.T) {
	m := testManager(t, DefaultConfig())
	ctx := context.Background()

	if _, err := m.Execute(ctx, "a", "x = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := m.Execute(ctx, "b", "x")
	if err == nil {
		t.Fatal("expected a fault reading another session's variable")
	}
	if res.Status != interpreter.StatusError {
		t.Errorf("expected error status, got %q", res.Status)
	}
	if !strings.Contains(res.Stderr, "ReferenceError") {
		t.Errorf("expected ReferenceError, got %q", res.Stderr)
	}
}

func TestManagerSeedApplied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = "function create(x) { return x * 2 }"
	m := testManager(t, cfg)
	ctx := context.Background()

	res, err := m.Execute(ctx, "", "create(21)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "42" {
		t.Errorf("expected stdout '42', got %q", res.Stdout)
	}

	// The seed ran unrestricted; everything after it is vetted.
	_, err = m.Execute(ctx, "", "function f() {}")
	if !errors.Is(err, interperr.ErrPolicyViolation) {
		t.Errorf("expected policy violation, got %v", err)
	}
}

func TestManagerSeedFaultStillRestricts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = "null.x"
	m := testManager(t, cfg)
	ctx := context.Background()

	_, err := m.Execute(ctx, "", "function f() {}")
	if !errors.Is(err, interperr.ErrPolicyViolation) {
		t.Errorf("expected policy violation after faulting seed, got %v", err)
	}
}

func TestManagerEmptySeedStillRestricts(t *testing.T) {
	m := testManager(t, DefaultConfig())
	ctx := context.Background()

	if _, err := m.Execute(ctx, "", "y = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := m.Get(DefaultSession)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !info.Restricted {
		t.Error("expected session to be restricted")
	}
}

func TestManagerMaxSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	m := testManager(t, cfg)
	ctx := context.Background()

	if _, err := m.Execute(ctx, "one", "a = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := m.Execute(ctx, "two", "a = 1")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("expected ErrLimitExceeded, got %v", err)
	}

	// Reusing an existing session never hits the limit.
	if _, err := m.Execute(ctx, "one", "a + 1"); err != nil {
		t.Fatalf("unexpected error reusing session: %v", err)
	}
}

func TestManagerGetListRemove(t *testing.T) {
	m := testManager(t, DefaultConfig())
	ctx := context.Background()

	for _, name := range []string{"beta", "alpha"} {
		if _, err := m.Execute(ctx, name, "v = 1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	infos := m.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(infos))
	}
	if infos[0].ID != "alpha" || infos[1].ID != "beta" {
		t.Errorf("expected sorted IDs, got %q, %q", infos[0].ID, infos[1].ID)
	}

	info, err := m.Get("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Executions != 1 {
		t.Errorf("expected 1 execution, got %d", info.Executions)
	}
	if info.CreatedAt.IsZero() || info.LastUsed.IsZero() {
		t.Error("expected timestamps to be set")
	}

	if err := m.Remove("alpha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 session after remove, got %d", m.Count())
	}

	if err := m.Remove("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Get("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManagerEvictIdle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdleTimeout = 50 * time.Millisecond
	m := testManager(t, cfg)
	ctx := context.Background()

	if _, err := m.Execute(ctx, "stale", "v = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(80 * time.Millisecond)
	m.evictIdle()

	if m.Count() != 0 {
		t.Errorf("expected idle session to be evicted, have %d", m.Count())
	}

	// The next use starts a fresh namespace.
	res, err := m.Execute(ctx, "stale", "typeof v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "undefined" {
		t.Errorf("expected fresh namespace, got %q", res.Stdout)
	}
}

func TestManagerOnExecution(t *testing.T) {
	var gotSession string
	var gotResult interpreter.Result

	cfg := DefaultConfig()
	cfg.OnExecution = func(session string, result interpreter.Result) {
		gotSession = session
		gotResult = result
	}
	m := testManager(t, cfg)

	if _, err := m.Execute(context.Background(), "obs", "1 + 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotSession != "obs" {
		t.Errorf("expected session 'obs', got %q", gotSession)
	}
	if gotResult.Status != interpreter.StatusSuccess {
		t.Errorf("expected success status, got %q", gotResult.Status)
	}
	if gotResult.Stdout != "2" {
		t.Errorf("expected stdout '2', got %q", gotResult.Stdout)
	}
}

func TestManagerSetSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = "function create() { return 1 }"
	m := testManager(t, cfg)
	ctx := context.Background()

	res, err := m.Execute(ctx, "old", "create()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "1" {
		t.Errorf("expected '1', got %q", res.Stdout)
	}

	m.SetSeed("function create() { return 2 }")

	res, err = m.Execute(ctx, "new", "create()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "2" {
		t.Errorf("expected new seed in new session, got %q", res.Stdout)
	}

	// Existing sessions keep their namespace.
	res, err = m.Execute(ctx, "old", "create()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "1" {
		t.Errorf("expected old seed in old session, got %q", res.Stdout)
	}
}

func TestManagerExecuteWithSink(t *testing.T) {
	// Bare print is not on the restricted allow-list; output under
	// restriction flows through seeded helpers and expression tails.
	cfg := DefaultConfig()
	cfg.Seed = "function create(m) { print(m) }"
	m := testManager(t, cfg)

	var mirror strings.Builder
	res, err := m.ExecuteWithSink(context.Background(), "", "create('live')", &mirror)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "live\n" {
		t.Errorf("expected captured output, got %q", res.Stdout)
	}
	if mirror.String() != "live\n" {
		t.Errorf("expected mirrored output, got %q", mirror.String())
	}
}

func TestManagerPrepare(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prepare = func(i *interpreter.Interpreter) error {
		return i.Bind("limits", map[string]any{"max": 10})
	}
	m := testManager(t, cfg)

	res, err := m.Execute(context.Background(), "", "limits.max")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "10" {
		t.Errorf("expected '10', got %q", res.Stdout)
	}
}

func TestManagerPrepareFailure(t *testing.T) {
	prepErr := errors.New("binding failed")
	cfg := DefaultConfig()
	cfg.Prepare = func(i *interpreter.Interpreter) error { return prepErr }
	m := testManager(t, cfg)

	_, err := m.Execute(context.Background(), "", "1 + 1")
	if !errors.Is(err, prepErr) {
		t.Errorf("expected prepare error, got %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("expected failed session to be discarded, have %d", m.Count())
	}
}

func TestManagerConcurrentSameSession(t *testing.T) {
	m := testManager(t, DefaultConfig())
	ctx := context.Background()

	if _, err := m.Execute(ctx, "shared", "n = 0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := m.Execute(ctx, "shared", "n = n + 1")
			done <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	res, err := m.Execute(ctx, "shared", "n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "2" {
		t.Errorf("expected serialized increments, got %q", res.Stdout)
	}
}

func TestManagerClose(t *testing.T) {
	m := NewManager(DefaultConfig(), zerolog.Nop())

	if _, err := m.Execute(context.Background(), "", "x = 1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := m.Execute(context.Background(), "", "x")
	if !errors.Is(err, ErrManagerClosed) {
		t.Errorf("expected ErrManagerClosed, got %v", err)
	}

	if err := m.Close(); err != nil {
		t.Errorf("expected idempotent close, got %v", err)
	}
}
