package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/core"
	"github.com/primemar/signaling/internal/domain"
	"github.com/primemar/signaling/internal/metrics"
)

// Relay routes real-time events between exactly two parties and manages
// ephemeral call state. Delivery is fire-and-forget: at-most-once, no
// queueing and no retries. A target without a live connection simply
// never receives the event; that is policy, not a failure.
//
// The relay is the only writer of the registry and the call table.
type Relay struct {
	Registry core.ConnectionRegistry
	Calls    core.CallTable
}

func NewRelay(reg core.ConnectionRegistry, calls core.CallTable) *Relay {
	return &Relay{Registry: reg, Calls: calls}
}

// Connect registers a fresh, not-yet-authenticated connection.
func (r *Relay) Connect(cid domain.ConnID, conn core.SignalConnection) {
	r.Registry.Register(cid, conn)
	metrics.ActiveConnections.Inc()
}

// Authenticate attaches a user identity to a connection. Idempotent.
func (r *Relay) Authenticate(cid domain.ConnID, uid domain.UserID) {
	r.Registry.Authenticate(cid, uid)
}

// SendMessage forwards a chat message to every live connection of the
// receiver. The message body is opaque to the relay; it only stamps the
// sender identity on top.
func (r *Relay) SendMessage(cid domain.ConnID, receiver domain.UserID, message map[string]any) {
	fromUser, ok := r.Registry.UserOf(cid)
	if !ok {
		return
	}
	out := make(map[string]any, len(message)+2)
	for k, v := range message {
		out[k] = v
	}
	out["type"] = EvtNewMessage
	out["senderId"] = fromUser
	r.sendToUser(receiver, out)
}

// StartCall creates a ringing session and notifies both sides. The
// caller gets call-started on the initiating connection even when the
// receiver is offline; the client UI owns ringing timeouts, not the
// relay.
func (r *Relay) StartCall(cid domain.ConnID, receiver domain.UserID, media domain.MediaKind) {
	fromUser, ok := r.Registry.UserOf(cid)
	if !ok {
		return
	}
	callID := r.Calls.Create(fromUser, receiver, media)
	metrics.ActiveCalls.Inc()

	r.sendToUser(receiver, incomingCallEvent{
		Type:     EvtIncomingCall,
		CallID:   callID,
		CallerID: fromUser,
		Media:    media,
	})
	r.sendToConn(cid, callEvent{Type: EvtCallStarted, CallID: callID})
}

// AcceptCall moves the session to accepted and notifies the caller.
// Unknown callID is a no-op. The transition result decides the single
// winner when concurrent events race on the same call, so the caller
// never sees a duplicate call-accepted.
func (r *Relay) AcceptCall(cid domain.ConnID, callID domain.CallID) {
	sess, ok := r.Calls.Get(callID)
	if !ok {
		return
	}
	if !r.Calls.Transition(callID, domain.CallAccepted) {
		return
	}
	r.sendToUser(sess.CallerID, callEvent{Type: EvtCallAccepted, CallID: callID})
}

// RejectCall removes the session and notifies the caller. Only the
// event that wins the removal notifies.
func (r *Relay) RejectCall(cid domain.ConnID, callID domain.CallID) {
	sess, ok := r.Calls.Get(callID)
	if !ok {
		return
	}
	if !r.removeCall(callID) {
		return
	}
	r.sendToUser(sess.CallerID, callEvent{Type: EvtCallRejected, CallID: callID})
}

// EndCall removes the session and notifies the other participant,
// whichever side fromUser turns out to be.
func (r *Relay) EndCall(cid domain.ConnID, callID domain.CallID) {
	fromUser, ok := r.Registry.UserOf(cid)
	if !ok {
		return
	}
	sess, ok := r.Calls.Get(callID)
	if !ok {
		return
	}
	other, ok := sess.Other(fromUser)
	if !ok {
		// Sender is not a participant; leave the session alone.
		log.Warn().Str("module", "app.relay").Str("call_id", string(callID)).
			Str("uid", string(fromUser)).Msg("end-call from non-participant")
		return
	}
	if !r.removeCall(callID) {
		// Both sides hanging up at once: the loser stays silent.
		return
	}
	r.sendToUser(other, callEvent{Type: EvtCallEnded, CallID: callID})
}

// RTCSignal relays an opaque WebRTC payload (offer/answer/ICE) to the
// target user. The relay never inspects the payload.
func (r *Relay) RTCSignal(cid domain.ConnID, target domain.UserID, signal json.RawMessage) {
	fromUser, ok := r.Registry.UserOf(cid)
	if !ok {
		return
	}
	r.sendToUser(target, rtcSignalEvent{
		Type:       EvtRTCSignal,
		Signal:     signal,
		FromUserID: fromUser,
	})
}

// Typing forwards a typing indicator.
func (r *Relay) Typing(cid domain.ConnID, receiver domain.UserID, isTyping bool) {
	fromUser, ok := r.Registry.UserOf(cid)
	if !ok {
		return
	}
	r.sendToUser(receiver, typingEvent{Type: EvtTyping, SenderID: fromUser, IsTyping: isTyping})
}

// MessageSeen forwards a read receipt back to the original sender.
func (r *Relay) MessageSeen(cid domain.ConnID, messageID string, sender domain.UserID) {
	if _, ok := r.Registry.UserOf(cid); !ok {
		return
	}
	r.sendToUser(sender, messageSeenEvent{Type: EvtMessageSeen, MessageID: messageID})
}

// OnDisconnect drops the connection and force-ends every call the user
// was part of, telling the surviving participant. Safe to call more
// than once for the same connection.
func (r *Relay) OnDisconnect(cid domain.ConnID) {
	uid, existed := r.Registry.Unregister(cid)
	if !existed {
		return
	}
	metrics.ActiveConnections.Dec()
	if uid == "" {
		return
	}
	for _, sess := range r.Calls.FindByUser(uid) {
		other, _ := sess.Other(uid)
		if !r.removeCall(sess.ID) {
			continue
		}
		r.sendToUser(other, callEvent{Type: EvtCallEnded, CallID: sess.ID})
	}
	log.Info().Str("module", "app.relay").Str("cid", string(cid)).Str("uid", string(uid)).Msg("client disconnected")
}

// removeCall reports whether this call actually removed the session.
// The gauge moves only on the winning removal.
func (r *Relay) removeCall(id domain.CallID) bool {
	if !r.Calls.Remove(id) {
		return false
	}
	metrics.ActiveCalls.Dec()
	return true
}

// sendToUser fans a frame out to every live connection of uid. A full
// send buffer counts as offline: the frame is dropped for that sink.
func (r *Relay) sendToUser(uid domain.UserID, v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal outbound event")
		return
	}
	sinks := r.Registry.Resolve(uid)
	if len(sinks) == 0 {
		metrics.DroppedDeliveries.Inc()
		return
	}
	for _, s := range sinks {
		if err := s.TrySend(frame); err != nil {
			metrics.DroppedDeliveries.Inc()
		}
	}
}

// sendToConn replies on the single connection that sent an event.
func (r *Relay) sendToConn(cid domain.ConnID, v any) {
	conn, ok := r.Registry.ConnOf(cid)
	if !ok {
		metrics.DroppedDeliveries.Inc()
		return
	}
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("marshal outbound event")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		metrics.DroppedDeliveries.Inc()
	}
}
