// Package session manages named interpreter instances. Each session
// owns one persistent namespace; the manager creates sessions on first
// use, seeds and latches them, serializes executions per session and
// evicts sessions that sit idle past the configured timeout.
package session

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bitsnaps/open-creator/internal/interpreter"
)

// DefaultSession is the session used when no name is given.
const DefaultSession = "default"

// Config holds tunables for a Manager.
type Config struct {
	// IdleTimeout evicts sessions unused for this long. Zero disables
	// eviction. An evicted session loses its namespace; the next use
	// starts fresh from the seed.
	IdleTimeout time.Duration

	// MaxSessions bounds how many sessions may exist at once.
	// Zero means unlimited. Reusing an existing session never fails
	// on the limit.
	MaxSessions int

	// Interpreter configures each session's interpreter.
	Interpreter interpreter.Config

	// Seed is run unrestricted when a session is created, then the
	// restriction latch engages. An empty seed still latches.
	Seed string

	// Prepare, when set, runs against a fresh interpreter before the
	// seed, typically to bind host values.
	Prepare func(*interpreter.Interpreter) error

	// OnExecution, when set, observes every completed execution.
	// It runs on the executing goroutine; keep it cheap or hand off.
	OnExecution func(session string, result interpreter.Result)
}

// DefaultConfig returns the stock manager configuration: 30 minute
// idle eviction, no session cap.
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 30 * time.Minute,
		Interpreter: interpreter.DefaultConfig(),
	}
}

// Info is the serializable state of one session.
type Info struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
	Executions int64     `json:"executions"`
	Restricted bool      `json:"restricted"`
}

// instance pairs an interpreter with its bookkeeping. The run mutex
// serializes executions; createdAt, lastUsed and executions are
// guarded by the manager lock.
type instance struct {
	id     string
	interp *interpreter.Interpreter

	run sync.Mutex

	createdAt  time.Time
	lastUsed   time.Time
	executions int64
}

// Manager owns the session map and the idle janitor.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*instance
	seed     string
	closed   bool

	stopCh chan struct{}
}

// NewManager creates a Manager and starts its idle janitor when
// eviction is enabled.
func NewManager(cfg Config, logger zerolog.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*instance),
		seed:     cfg.Seed,
		stopCh:   make(chan struct{}),
	}
	if cfg.IdleTimeout > 0 {
		go m.janitor()
	}
	return m
}

// Execute runs source against the named session, creating it on first
// use. An empty name selects the default session. The returned Result
// and error follow the interpreter's contract.
func (m *Manager) Execute(ctx context.Context, session, source string) (interpreter.Result, error) {
	return m.execute(ctx, session, source, nil)
}

// ExecuteWithSink is Execute with a live mirror for captured output.
func (m *Manager) ExecuteWithSink(ctx context.Context, session, source string, w io.Writer) (interpreter.Result, error) {
	return m.execute(ctx, session, source, w)
}

func (m *Manager) execute(ctx context.Context, session, source string, mirror io.Writer) (interpreter.Result, error) {
	if session == "" {
		session = DefaultSession
	}

	inst, err := m.acquire(ctx, session)
	if err != nil {
		return interpreter.Result{}, err
	}

	inst.run.Lock()
	defer inst.run.Unlock()

	var result interpreter.Result
	var execErr error
	if mirror != nil {
		result, execErr = inst.interp.ExecuteWithSink(ctx, source, mirror)
	} else {
		result, execErr = inst.interp.Execute(ctx, source)
	}

	m.mu.Lock()
	inst.lastUsed = time.Now()
	inst.executions++
	m.mu.Unlock()

	if m.cfg.OnExecution != nil && result.Status != "" {
		m.cfg.OnExecution(session, result)
	}
	return result, execErr
}

// acquire returns the named session, creating and seeding it if it
// does not exist yet.
func (m *Manager) acquire(ctx context.Context, session string) (*instance, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if inst, ok := m.sessions[session]; ok {
		inst.lastUsed = time.Now()
		m.mu.Unlock()
		return inst, nil
	}
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, &LimitError{Max: m.cfg.MaxSessions}
	}

	now := time.Now()
	inst := &instance{
		id:        session,
		interp:    interpreter.New(m.cfg.Interpreter, m.logger.With().Str("session", session).Logger()),
		createdAt: now,
		lastUsed:  now,
	}
	seed := m.seed
	m.sessions[session] = inst

	// Hold the run mutex through preparation so a concurrent Execute
	// for the same session waits until the seed has been applied.
	inst.run.Lock()
	m.mu.Unlock()
	defer inst.run.Unlock()

	if m.cfg.Prepare != nil {
		if err := m.cfg.Prepare(inst.interp); err != nil {
			m.discard(session, inst)
			return nil, err
		}
	}

	// The latch engages even when the seed faults; the session stays
	// usable but restricted.
	if err := inst.interp.Setup(ctx, seed); err != nil {
		m.logger.Warn().Err(err).Str("session", session).Msg("seed faulted, session restricted anyway")
	}

	m.logger.Info().Str("session", session).Msg("session created")
	return inst, nil
}

// discard removes a half-built session after a preparation failure.
func (m *Manager) discard(session string, inst *instance) {
	_ = inst.interp.Close()
	m.mu.Lock()
	if cur, ok := m.sessions[session]; ok && cur == inst {
		delete(m.sessions, session)
	}
	m.mu.Unlock()
}

// Get returns the state of one session.
func (m *Manager) Get(session string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.sessions[session]
	if !ok {
		return Info{}, &NotFoundError{ID: session}
	}
	return m.infoLocked(inst), nil
}

// List returns all live sessions sorted by ID.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Info, 0, len(m.sessions))
	for _, inst := range m.sessions {
		result = append(result, m.infoLocked(inst))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *Manager) infoLocked(inst *instance) Info {
	return Info{
		ID:         inst.id,
		CreatedAt:  inst.createdAt,
		LastUsed:   inst.lastUsed,
		Executions: inst.executions,
		Restricted: inst.interp.Restricted(),
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Remove closes and forgets a session. An in-flight execution is
// interrupted.
func (m *Manager) Remove(session string) error {
	m.mu.Lock()
	inst, ok := m.sessions[session]
	if ok {
		delete(m.sessions, session)
	}
	m.mu.Unlock()

	if !ok {
		return &NotFoundError{ID: session}
	}
	_ = inst.interp.Close()
	m.logger.Info().Str("session", session).Msg("session removed")
	return nil
}

// SetSeed replaces the seed for sessions created from now on.
// Existing sessions keep their namespace.
func (m *Manager) SetSeed(source string) {
	m.mu.Lock()
	m.seed = source
	m.mu.Unlock()
	m.logger.Info().Int("bytes", len(source)).Msg("seed updated")
}

// Close shuts the manager down, closing every session. In-flight
// executions are interrupted.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stopCh)
	sessions := m.sessions
	m.sessions = make(map[string]*instance)
	m.mu.Unlock()

	for _, inst := range sessions {
		_ = inst.interp.Close()
	}
	return nil
}

// janitor periodically evicts idle sessions.
func (m *Manager) janitor() {
	ticker := time.NewTicker(janitorInterval(m.cfg.IdleTimeout))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCh:
			return
		}
	}
}

// evictIdle closes sessions whose last use is older than the idle
// timeout. Sessions with an execution in flight are skipped.
func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var expired []*instance
	for id, inst := range m.sessions {
		if !inst.lastUsed.Before(cutoff) {
			continue
		}
		if !inst.run.TryLock() {
			continue
		}
		inst.run.Unlock()
		delete(m.sessions, id)
		expired = append(expired, inst)
	}
	m.mu.Unlock()

	for _, inst := range expired {
		_ = inst.interp.Close()
		m.logger.Info().Str("session", inst.id).Time("last_used", inst.lastUsed).Msg("session evicted")
	}
}

func janitorInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	return interval
}
