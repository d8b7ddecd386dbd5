package core

import "github.com/primemar/signaling/internal/domain"

// Frame is a raw outbound payload (already-encoded JSON event).
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ConnectionRegistry maps live transport connections to authenticated
// users. A ConnID belongs to at most one UserID; a UserID may own any
// number of simultaneous connections (multi-device).
type ConnectionRegistry interface {
	// Register records a live connection and its outbound sink.
	Register(cid domain.ConnID, conn SignalConnection)
	// Authenticate attaches a user identity to a connection. Idempotent;
	// overwrites any prior identity for that connection.
	Authenticate(cid domain.ConnID, uid domain.UserID)
	// UserOf returns the identity attached to a connection, if any.
	UserOf(cid domain.ConnID) (domain.UserID, bool)
	// ConnOf returns the sink of a single connection. Used for direct
	// replies to the connection that sent an event.
	ConnOf(cid domain.ConnID) (SignalConnection, bool)
	// Resolve returns the sinks of every live connection of a user.
	// Empty when the user is offline; that is not an error.
	Resolve(uid domain.UserID) []SignalConnection
	// Unregister drops a connection. Returns the identity that was
	// attached (empty if the connection never authenticated) and
	// whether the connection was present at all, so a duplicate
	// disconnect stays a no-op.
	Unregister(cid domain.ConnID) (domain.UserID, bool)
}

// CallTable tracks in-flight call negotiations keyed by generated CallID.
type CallTable interface {
	Create(caller, receiver domain.UserID, media domain.MediaKind) domain.CallID
	Get(id domain.CallID) (domain.CallSession, bool)
	// Transition moves a session to a new status. Reports whether the
	// status actually changed, so concurrent events on the same call
	// resolve to a single winner. No-op when the session is gone.
	Transition(id domain.CallID, status domain.CallStatus) bool
	// Remove reports whether the session was present. Only the caller
	// that wins the removal may forward the terminal event.
	Remove(id domain.CallID) bool
	// FindByUser returns every session uid participates in, as caller
	// or receiver. Used for disconnect cleanup.
	FindByUser(uid domain.UserID) []domain.CallSession
}
