// Package session holds per-client authentication state as an explicit
// state machine, so an illegal combination (authenticated without a
// credential, user alongside an error) is unrepresentable to readers.
package session

import (
	"context"
	"sync"

	"github.com/wildpark/wildpark/pkg/auth"
)

// State enumerates the session lifecycle.
type State int

const (
	// StateUninitialized means provider session status is not yet known.
	StateUninitialized State = iota
	// StateBridging means a provider session exists and the identity
	// bridge call is in flight.
	StateBridging
	// StateAuthenticated means provider session, internal user and
	// credential are all jointly settled.
	StateAuthenticated
	// StateUnauthenticated means no provider session exists.
	StateUnauthenticated
	// StateError means a provider session exists but the bridge failed.
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBridging:
		return "bridging"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Exchanger is the identity bridge surface the session depends on.
type Exchanger interface {
	Exchange(ctx context.Context, rawToken string) (*auth.User, *auth.AuthError)
}

// Snapshot is an immutable view of the session. All fields were read under
// one lock, so a reader can never observe a torn combination.
type Snapshot struct {
	State State
	User  *auth.User
	Token string
	Err   *auth.AuthError
}

// Session drives the state machine. All transitions are keyed on provider
// session presence and bridge outcome; a logout or a newer bridge attempt
// supersedes any in-flight exchange, whose late result is then discarded.
type Session struct {
	bridge Exchanger

	mu         sync.Mutex
	state      State
	user       *auth.User
	token      string
	authErr    *auth.AuthError
	generation uint64
	cancel     context.CancelFunc
	lastToken  string
}

// New returns a session in the uninitialized state.
func New(bridge Exchanger) *Session {
	return &Session{bridge: bridge, state: StateUninitialized}
}

// Snapshot returns the current state atomically.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, User: s.user, Token: s.token, Err: s.authErr}
}

// SetUnauthenticated records that no provider session exists.
func (s *Session) SetUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.state = StateUnauthenticated
	s.user = nil
	s.token = ""
	s.authErr = nil
}

// Authenticate runs the bridge exchange for a provider credential. It
// clears any prior error before attempting. On failure the user is cleared
// too — there is no stale-success/new-failure mixed state.
func (s *Session) Authenticate(ctx context.Context, providerToken string) Snapshot {
	s.mu.Lock()
	s.supersedeLocked()
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateBridging
	s.authErr = nil
	s.lastToken = providerToken
	s.mu.Unlock()

	user, authErr := s.bridge.Exchange(ctx, providerToken)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// A logout or newer attempt superseded this exchange; its result
		// must not resurrect the session.
		return Snapshot{State: s.state, User: s.user, Token: s.token, Err: s.authErr}
	}
	if authErr != nil {
		s.state = StateError
		s.user = nil
		s.token = ""
		s.authErr = authErr
	} else {
		s.state = StateAuthenticated
		s.user = user
		s.token = providerToken
		s.authErr = nil
	}
	return Snapshot{State: s.state, User: s.user, Token: s.token, Err: s.authErr}
}

// Retry re-runs the last exchange. The prior error is cleared before the
// attempt; a renewed failure leaves the session errored with no user.
func (s *Session) Retry(ctx context.Context) Snapshot {
	s.mu.Lock()
	token := s.lastToken
	s.mu.Unlock()
	if token == "" {
		s.SetUnauthenticated()
		return s.Snapshot()
	}
	return s.Authenticate(ctx, token)
}

// Logout forces the unauthenticated state from anywhere, clearing user,
// credential and error, and cancelling any in-flight bridge call.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.state = StateUnauthenticated
	s.user = nil
	s.token = ""
	s.authErr = nil
	s.lastToken = ""
}

// supersedeLocked invalidates any in-flight exchange. Callers hold s.mu.
func (s *Session) supersedeLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
