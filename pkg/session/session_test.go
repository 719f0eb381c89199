package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wildpark/wildpark/pkg/auth"
	"github.com/wildpark/wildpark/pkg/roles"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// scriptedBridge returns canned results in order, optionally blocking the
// first call until released.
type scriptedBridge struct {
	mu         sync.Mutex
	results    []result
	blockFirst chan struct{} // when non-nil, the first Exchange waits on it
	calls      int
}

type result struct {
	user *auth.User
	err  *auth.AuthError
}

func (b *scriptedBridge) Exchange(ctx context.Context, rawToken string) (*auth.User, *auth.AuthError) {
	b.mu.Lock()
	b.calls++
	var wait chan struct{}
	if b.calls == 1 {
		wait = b.blockFirst
	}
	next := result{err: auth.NewAuthError("no scripted result", nil)}
	if len(b.results) > 0 {
		next = b.results[0]
		if len(b.results) > 1 {
			b.results = b.results[1:]
		}
	}
	b.mu.Unlock()

	if wait != nil {
		<-wait
	}
	return next.user, next.err
}

func tourist() *auth.User {
	return &auth.User{
		ID:       primitive.NewObjectID(),
		Role:     roles.RoleTourist,
		Email:    "t@example.com",
		IsActive: true,
	}
}

func TestInitialStateIsUninitialized(t *testing.T) {
	s := New(&scriptedBridge{})
	assert.Equal(t, StateUninitialized, s.Snapshot().State)
}

func TestAuthenticateSuccess(t *testing.T) {
	user := tourist()
	s := New(&scriptedBridge{results: []result{{user: user}}})

	snap := s.Authenticate(context.Background(), "provider-token")

	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, user, snap.User)
	assert.Equal(t, "provider-token", snap.Token)
	assert.Nil(t, snap.Err)
}

// Partial success (provider yes, internal user no) is error, never
// authenticated, and never carries a synthesized user.
func TestAuthenticateFailure(t *testing.T) {
	s := New(&scriptedBridge{results: []result{
		{err: auth.NewRetryableAuthError("identity provider rate limited", nil)},
	}})

	snap := s.Authenticate(context.Background(), "provider-token")

	assert.Equal(t, StateError, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	require.NotNil(t, snap.Err)
	assert.True(t, snap.Err.CanRetry)
}

func TestRetryClearsErrorThenSucceeds(t *testing.T) {
	user := tourist()
	s := New(&scriptedBridge{results: []result{
		{err: auth.NewRetryableAuthError("rate limited", nil)},
		{user: user},
		{user: user},
	}})

	s.Authenticate(context.Background(), "provider-token")
	first := s.Retry(context.Background())
	second := s.Retry(context.Background())

	assert.Equal(t, StateAuthenticated, first.State)
	assert.Nil(t, first.Err, "retry must clear the prior error")
	assert.Equal(t, first.User.ID, second.User.ID, "repeated retry must settle on the same user")
}

func TestRetryRenewedFailureClearsUser(t *testing.T) {
	s := New(&scriptedBridge{results: []result{
		{user: tourist()},
		{err: auth.NewAuthError("provider down", nil)},
	}})

	s.Authenticate(context.Background(), "provider-token")
	snap := s.Retry(context.Background())

	assert.Equal(t, StateError, snap.State)
	assert.Nil(t, snap.User, "no stale-success/new-failure mixed state")
}

func TestRetryWithoutProviderSession(t *testing.T) {
	s := New(&scriptedBridge{})
	snap := s.Retry(context.Background())
	assert.Equal(t, StateUnauthenticated, snap.State)
}

func TestLogoutFromEveryState(t *testing.T) {
	s := New(&scriptedBridge{results: []result{{user: tourist()}}})
	s.Authenticate(context.Background(), "provider-token")

	s.Logout()

	snap := s.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Token)
	assert.Nil(t, snap.Err)
}

// A bridge response arriving after logout must not resurrect the session.
func TestLateBridgeResponseDiscardedAfterLogout(t *testing.T) {
	bridge := &scriptedBridge{
		results:    []result{{user: tourist()}},
		blockFirst: make(chan struct{}),
	}
	s := New(bridge)

	done := make(chan Snapshot, 1)
	go func() {
		done <- s.Authenticate(context.Background(), "provider-token")
	}()

	// Wait for the exchange to be in flight, then log out underneath it.
	assertEventually(t, func() bool { return s.Snapshot().State == StateBridging })
	s.Logout()
	close(bridge.blockFirst)

	returned := <-done
	assert.Equal(t, StateUnauthenticated, returned.State)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
	assert.Nil(t, s.Snapshot().User)
}

// A newer bridge attempt supersedes an older in-flight one.
func TestNewerAttemptSupersedesOlder(t *testing.T) {
	older := tourist()
	newer := tourist()

	blockFirst := make(chan struct{})
	bridge := &scriptedBridge{
		results:    []result{{user: older}, {user: newer}},
		blockFirst: blockFirst,
	}
	s := New(bridge)

	done := make(chan struct{})
	go func() {
		s.Authenticate(context.Background(), "older-token")
		close(done)
	}()
	assertEventually(t, func() bool { return s.Snapshot().State == StateBridging })

	// Second attempt resolves immediately to the newer user.
	snap := s.Authenticate(context.Background(), "newer-token")
	require.Equal(t, StateAuthenticated, snap.State)
	require.Equal(t, newer.ID, snap.User.ID)

	// Release the first attempt; its stale result must be ignored.
	close(blockFirst)
	<-done
	assert.Equal(t, newer.ID, s.Snapshot().User.ID)
	assert.Equal(t, "newer-token", s.Snapshot().Token)
}

func assertEventually(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, testWait, testTick)
}
