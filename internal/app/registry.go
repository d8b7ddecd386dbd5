package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/core"
	"github.com/primemar/signaling/internal/domain"
	"github.com/primemar/signaling/internal/metrics"
)

type connEntry struct {
	UserID domain.UserID
	Conn   core.SignalConnection
}

// Registry is the in-memory connection registry. It keeps a direct
// userID -> connID index alongside the connection table, so resolving a
// user's connections never scans the whole registry.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
	users map[domain.UserID]map[domain.ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]*connEntry),
		users: make(map[domain.UserID]map[domain.ConnID]struct{}),
	}
}

func (r *Registry) Register(cid domain.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.conns[cid]; ok {
		r.dropIndex(prev.UserID, cid)
	}
	r.conns[cid] = &connEntry{Conn: conn}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("registered connection")
}

func (r *Registry) Authenticate(cid domain.ConnID, uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[cid]
	if !ok {
		return
	}
	if entry.UserID == uid {
		return
	}
	r.dropIndex(entry.UserID, cid)
	entry.UserID = uid
	set, ok := r.users[uid]
	if !ok {
		set = make(map[domain.ConnID]struct{})
		r.users[uid] = set
		metrics.AuthenticatedUsers.Inc()
	}
	set[cid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("uid", string(uid)).Msg("authenticated connection")
}

func (r *Registry) UserOf(cid domain.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[cid]
	if !ok || entry.UserID == "" {
		return "", false
	}
	return entry.UserID, true
}

func (r *Registry) ConnOf(cid domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[cid]
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}

func (r *Registry) Resolve(uid domain.UserID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[uid]
	out := make([]core.SignalConnection, 0, len(set))
	for cid := range set {
		if entry, ok := r.conns[cid]; ok {
			out = append(out, entry.Conn)
		}
	}
	return out
}

func (r *Registry) Unregister(cid domain.ConnID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[cid]
	if !ok {
		return "", false
	}
	delete(r.conns, cid)
	r.dropIndex(entry.UserID, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("uid", string(entry.UserID)).Msg("unregistered connection")
	return entry.UserID, true
}

// dropIndex must be called with r.mu held for writing.
func (r *Registry) dropIndex(uid domain.UserID, cid domain.ConnID) {
	if uid == "" {
		return
	}
	if set, ok := r.users[uid]; ok {
		delete(set, cid)
		if len(set) == 0 {
			delete(r.users, uid)
			metrics.AuthenticatedUsers.Dec()
		}
	}
}
