package app

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/domain"
)

// CallTable is the in-memory table of in-flight call negotiations.
// IDs are uuid-based, so a removed callID is never handed out again.
type CallTable struct {
	mu       sync.RWMutex
	sessions map[domain.CallID]domain.CallSession
}

func NewCallTable() *CallTable {
	return &CallTable{sessions: make(map[domain.CallID]domain.CallSession)}
}

func (t *CallTable) Create(caller, receiver domain.UserID, media domain.MediaKind) domain.CallID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := domain.CallID(fmt.Sprintf("call_%s", uuid.NewString()))
	for {
		if _, exists := t.sessions[id]; !exists {
			break
		}
		id = domain.CallID(fmt.Sprintf("call_%s", uuid.NewString()))
	}
	t.sessions[id] = domain.CallSession{
		ID:       id,
		CallerID: caller,
		Receiver: receiver,
		Media:    media,
		Status:   domain.CallRinging,
	}
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).
		Str("caller", string(caller)).Str("receiver", string(receiver)).
		Str("media", string(media)).Msg("created call session")
	return id
}

func (t *CallTable) Get(id domain.CallID) (domain.CallSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *CallTable) Transition(id domain.CallID, status domain.CallStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok || s.Status == status {
		return false
	}
	s.Status = status
	t.sessions[id] = s
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).Str("status", string(status)).Msg("call transition")
	return true
}

func (t *CallTable) Remove(id domain.CallID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[id]; !ok {
		return false
	}
	delete(t.sessions, id)
	log.Info().Str("module", "app.calls").Str("call_id", string(id)).Msg("removed call session")
	return true
}

func (t *CallTable) FindByUser(uid domain.UserID) []domain.CallSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.CallSession
	for _, s := range t.sessions {
		if s.Involves(uid) {
			out = append(out, s)
		}
	}
	return out
}

// Len is used by metrics collection.
func (t *CallTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
