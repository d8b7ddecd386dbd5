package app

import "github.com/primemar/signaling/internal/domain"

// Outbound events. Every frame carries a "type" the client dispatches on;
// payload shapes mirror what the web client already consumes.

const (
	EvtNewMessage   = "new-message"
	EvtIncomingCall = "incoming-call"
	EvtCallStarted  = "call-started"
	EvtCallAccepted = "call-accepted"
	EvtCallRejected = "call-rejected"
	EvtCallEnded    = "call-ended"
	EvtRTCSignal    = "rtc-signal"
	EvtTyping       = "typing"
	EvtMessageSeen  = "message-seen"
)

type incomingCallEvent struct {
	Type     string           `json:"type"`
	CallID   domain.CallID    `json:"callId"`
	CallerID domain.UserID    `json:"callerId"`
	Media    domain.MediaKind `json:"callType"`
}

// callEvent covers call-started, call-accepted, call-rejected and
// call-ended, which all carry the callId alone.
type callEvent struct {
	Type   string        `json:"type"`
	CallID domain.CallID `json:"callId"`
}

type rtcSignalEvent struct {
	Type       string        `json:"type"`
	Signal     any           `json:"signal"`
	FromUserID domain.UserID `json:"fromUserId"`
}

type typingEvent struct {
	Type     string        `json:"type"`
	SenderID domain.UserID `json:"senderId"`
	IsTyping bool          `json:"isTyping"`
}

type messageSeenEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
}
