package domain

import "errors"

// CallID identifies one call attempt. Generated server-side, never reused.
type CallID string

// MediaKind is the media requested by the caller.
type MediaKind string

const (
	MediaVoice MediaKind = "voice"
	MediaVideo MediaKind = "video"
)

var ErrUnknownMediaKind = errors.New("unknown media kind")

func (m MediaKind) Validate() error {
	switch m {
	case MediaVoice, MediaVideo:
		return nil
	}
	return ErrUnknownMediaKind
}

// CallStatus is the negotiation state of a call session.
// ringing -> accepted -> ended, or ringing -> ended on reject.
// ended is terminal.
type CallStatus string

const (
	CallRinging  CallStatus = "ringing"
	CallAccepted CallStatus = "accepted"
	CallEnded    CallStatus = "ended"
)

// CallSession is the ephemeral record of one call negotiation.
// Participants are referenced by user, not by connection, so a user
// can reconnect mid-call without losing the session.
type CallSession struct {
	ID       CallID
	CallerID UserID
	Receiver UserID
	Media    MediaKind
	Status   CallStatus
}

// Other returns the participant opposite to uid, and whether uid is a
// participant at all.
func (s CallSession) Other(uid UserID) (UserID, bool) {
	switch uid {
	case s.CallerID:
		return s.Receiver, true
	case s.Receiver:
		return s.CallerID, true
	}
	return "", false
}

// Involves reports whether uid is the caller or receiver of the session.
func (s CallSession) Involves(uid UserID) bool {
	return uid == s.CallerID || uid == s.Receiver
}
