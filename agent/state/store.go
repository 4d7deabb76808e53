package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// Store owns every session's state. Calls for one session id never block
// calls for another.
type Store interface {
	// Lock acquires the session's turn lock. The returned func releases it.
	Lock(sessionID string) func()
	GetOrCreate(sessionID string) SessionState
	// SetPhase is a no-op when the phase is unchanged.
	SetPhase(ctx context.Context, sessionID string, phase Phase)
	PendingPlan(sessionID string) (contractx.Plan, bool)
	SetPendingPlan(sessionID string, plan contractx.Plan)
	ClearPendingPlan(sessionID string)
	// Reset moves the session to idle and drops its pending plan.
	Reset(ctx context.Context, sessionID string)
	// OnTransition registers a hook called after every phase change.
	OnTransition(hook TransitionHook)
	Len() int
}

// TransitionHook observes every phase change.
type TransitionHook func(ctx context.Context, sessionID string, from, to Phase)

type StoreOption func(*MemoryStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

type entry struct {
	// turn serialises whole turns; mu guards the fields below.
	turn sync.Mutex

	mu    sync.Mutex
	state *SessionState
}

// MemoryStore keeps sessions for the lifetime of the process. Entries are
// created on first use and never evicted.
type MemoryStore struct {
	sessions *xsync.MapOf[string, *entry]
	now      func() time.Time

	hooksMu sync.RWMutex
	hooks   []TransitionHook
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	store := &MemoryStore{
		sessions: xsync.NewMapOf[string, *entry](),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *MemoryStore) entry(sessionID string) *entry {
	sessionID = strings.TrimSpace(sessionID)
	e, _ := s.sessions.LoadOrCompute(sessionID, func() *entry {
		return &entry{state: NewSessionState(sessionID, s.now())}
	})
	return e
}

func (s *MemoryStore) Lock(sessionID string) func() {
	e := s.entry(sessionID)
	e.turn.Lock()
	return e.turn.Unlock
}

func (s *MemoryStore) GetOrCreate(sessionID string) SessionState {
	e := s.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (s *MemoryStore) SetPhase(ctx context.Context, sessionID string, phase Phase) {
	e := s.entry(sessionID)

	e.mu.Lock()
	from := e.state.Phase
	if from == phase {
		e.mu.Unlock()
		return
	}
	e.state.Phase = phase
	e.state.Touch(s.now())
	e.mu.Unlock()

	s.emit(ctx, e.state.SessionID, from, phase)
}

func (s *MemoryStore) PendingPlan(sessionID string) (contractx.Plan, bool) {
	e := s.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.PendingPlan == nil {
		return contractx.Plan{}, false
	}
	return e.state.PendingPlan.Clone(), true
}

func (s *MemoryStore) SetPendingPlan(sessionID string, plan contractx.Plan) {
	e := s.entry(sessionID)
	cloned := plan.Clone()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.PendingPlan = &cloned
	e.state.Touch(s.now())
}

func (s *MemoryStore) ClearPendingPlan(sessionID string) {
	e := s.entry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.PendingPlan = nil
	e.state.Touch(s.now())
}

func (s *MemoryStore) Reset(ctx context.Context, sessionID string) {
	s.ClearPendingPlan(sessionID)
	s.SetPhase(ctx, sessionID, PhaseIdle)
}

func (s *MemoryStore) OnTransition(hook TransitionHook) {
	if hook == nil {
		return
	}
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *MemoryStore) Len() int {
	return s.sessions.Size()
}

func (s *MemoryStore) emit(ctx context.Context, sessionID string, from, to Phase) {
	s.hooksMu.RLock()
	hooks := s.hooks
	s.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, sessionID, from, to)
	}
}
