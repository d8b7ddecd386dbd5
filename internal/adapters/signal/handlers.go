package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/domain"
	"github.com/primemar/signaling/internal/metrics"
)

func (ctl *SignalWSController) dropMalformed(cid domain.ConnID, event string, err error) {
	log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Str("event", event).Msg("bad payload")
	metrics.MalformedEvents.Inc()
}

func (ctl *SignalWSController) handleAuthenticate(cid domain.ConnID, data []byte) {
	type payload struct {
		UserID domain.UserID `json:"userId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "authenticate", err)
		return
	}
	if err := p.UserID.Validate(); err != nil {
		ctl.dropMalformed(cid, "authenticate", err)
		return
	}
	ctl.Relay.Authenticate(cid, p.UserID)
}

func (ctl *SignalWSController) handleSendMessage(cid domain.ConnID, data []byte) {
	type payload struct {
		ReceiverID domain.UserID  `json:"receiverId"`
		Message    map[string]any `json:"message"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "send-message", err)
		return
	}
	if p.ReceiverID == "" {
		ctl.dropMalformed(cid, "send-message", domain.ErrUserIDEmpty)
		return
	}
	ctl.Relay.SendMessage(cid, p.ReceiverID, p.Message)
}

func (ctl *SignalWSController) handleStartCall(cid domain.ConnID, data []byte) {
	type payload struct {
		ReceiverID domain.UserID    `json:"receiverId"`
		CallType   domain.MediaKind `json:"callType"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "start-call", err)
		return
	}
	if p.ReceiverID == "" {
		ctl.dropMalformed(cid, "start-call", domain.ErrUserIDEmpty)
		return
	}
	if err := p.CallType.Validate(); err != nil {
		ctl.dropMalformed(cid, "start-call", err)
		return
	}
	ctl.Relay.StartCall(cid, p.ReceiverID, p.CallType)
}

func (ctl *SignalWSController) handleAcceptCall(cid domain.ConnID, data []byte) {
	type payload struct {
		CallID domain.CallID `json:"callId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "accept-call", err)
		return
	}
	ctl.Relay.AcceptCall(cid, p.CallID)
}

func (ctl *SignalWSController) handleRejectCall(cid domain.ConnID, data []byte) {
	type payload struct {
		CallID domain.CallID `json:"callId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "reject-call", err)
		return
	}
	ctl.Relay.RejectCall(cid, p.CallID)
}

func (ctl *SignalWSController) handleEndCall(cid domain.ConnID, data []byte) {
	type payload struct {
		CallID domain.CallID `json:"callId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "end-call", err)
		return
	}
	ctl.Relay.EndCall(cid, p.CallID)
}

func (ctl *SignalWSController) handleRTCSignal(cid domain.ConnID, data []byte) {
	type payload struct {
		TargetUserID domain.UserID   `json:"targetUserId"`
		Signal       json.RawMessage `json:"signal"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "rtc-signal", err)
		return
	}
	if p.TargetUserID == "" {
		ctl.dropMalformed(cid, "rtc-signal", domain.ErrUserIDEmpty)
		return
	}
	ctl.Relay.RTCSignal(cid, p.TargetUserID, p.Signal)
}

func (ctl *SignalWSController) handleTyping(cid domain.ConnID, data []byte) {
	type payload struct {
		ReceiverID domain.UserID `json:"receiverId"`
		IsTyping   bool          `json:"isTyping"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "typing", err)
		return
	}
	if p.ReceiverID == "" {
		ctl.dropMalformed(cid, "typing", domain.ErrUserIDEmpty)
		return
	}
	ctl.Relay.Typing(cid, p.ReceiverID, p.IsTyping)
}

func (ctl *SignalWSController) handleMessageSeen(cid domain.ConnID, data []byte) {
	type payload struct {
		MessageID string        `json:"messageId"`
		SenderID  domain.UserID `json:"senderId"`
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.dropMalformed(cid, "message-seen", err)
		return
	}
	if p.SenderID == "" {
		ctl.dropMalformed(cid, "message-seen", domain.ErrUserIDEmpty)
		return
	}
	ctl.Relay.MessageSeen(cid, p.MessageID, p.SenderID)
}
