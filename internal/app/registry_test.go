package app

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primemar/signaling/internal/core"
	"github.com/primemar/signaling/internal/domain"
	"github.com/primemar/signaling/internal/metrics"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   error
}

func (f *fakeConn) TrySend(frame core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() {}

func TestRegistryResolveTracksLiveConnections(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &fakeConn{}, &fakeConn{}

	r.Register("conn-1", c1)
	r.Register("conn-2", c2)
	r.Authenticate("conn-1", "u1")
	r.Authenticate("conn-2", "u1")

	require.Len(t, r.Resolve("u1"), 2)

	r.Unregister("conn-1")
	sinks := r.Resolve("u1")
	require.Len(t, sinks, 1)
	assert.Same(t, c2, sinks[0])

	r.Unregister("conn-2")
	assert.Empty(t, r.Resolve("u1"))
}

func TestRegistryResolveOfflineUserIsEmptyNotError(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Resolve("nobody"))
}

func TestRegistryAuthenticateOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1", &fakeConn{})
	r.Authenticate("conn-1", "u1")
	r.Authenticate("conn-1", "u2")

	assert.Empty(t, r.Resolve("u1"))
	require.Len(t, r.Resolve("u2"), 1)

	uid, ok := r.UserOf("conn-1")
	require.True(t, ok)
	assert.Equal(t, domain.UserID("u2"), uid)
}

func TestRegistryAuthenticateUnknownConnIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Authenticate("ghost", "u1")
	assert.Empty(t, r.Resolve("u1"))
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1", &fakeConn{})
	r.Authenticate("conn-1", "u1")

	uid, existed := r.Unregister("conn-1")
	require.True(t, existed)
	assert.Equal(t, domain.UserID("u1"), uid)

	_, existed = r.Unregister("conn-1")
	assert.False(t, existed)
}

func TestRegistryUnregisterUnauthenticated(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1", &fakeConn{})

	uid, existed := r.Unregister("conn-1")
	assert.True(t, existed)
	assert.Empty(t, uid)
}

func TestAuthenticatedUsersGaugeFollowsIndex(t *testing.T) {
	r := NewRegistry()
	base := testutil.ToFloat64(metrics.AuthenticatedUsers)

	r.Register("conn-1", &fakeConn{})
	r.Register("conn-2", &fakeConn{})
	assert.Equal(t, base, testutil.ToFloat64(metrics.AuthenticatedUsers))

	// First connection of a user raises the gauge; the second does not.
	r.Authenticate("conn-1", "u1")
	assert.Equal(t, base+1, testutil.ToFloat64(metrics.AuthenticatedUsers))
	r.Authenticate("conn-2", "u1")
	assert.Equal(t, base+1, testutil.ToFloat64(metrics.AuthenticatedUsers))

	// Re-authenticating as someone else moves the user, not the count.
	r.Authenticate("conn-2", "u2")
	assert.Equal(t, base+2, testutil.ToFloat64(metrics.AuthenticatedUsers))
	r.Unregister("conn-2")
	assert.Equal(t, base+1, testutil.ToFloat64(metrics.AuthenticatedUsers))

	// Only the last connection of a user lowers the gauge.
	r.Unregister("conn-1")
	assert.Equal(t, base, testutil.ToFloat64(metrics.AuthenticatedUsers))
	r.Unregister("conn-1")
	assert.Equal(t, base, testutil.ToFloat64(metrics.AuthenticatedUsers))
}

func TestRegistryUserOfUnauthenticated(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1", &fakeConn{})
	_, ok := r.UserOf("conn-1")
	assert.False(t, ok)
}
