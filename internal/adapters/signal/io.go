package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/domain"
	"github.com/primemar/signaling/internal/metrics"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, cid domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		ctl.Relay.OnDisconnect(cid)
		ctl.limiter.Forget(cid)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(cid, data)
		}
	}
}

// handleEvent decodes the envelope and dispatches on the event type.
// A malformed payload poisons only that event, never the connection.
func (ctl *SignalWSController) handleEvent(cid domain.ConnID, data []byte) {
	// The limiter charges every inbound frame, parseable or not, so a
	// client flooding garbage spends the same budget.
	if !ctl.limiter.Allow(cid) {
		log.Warn().Str("module", "signal").Str("cid", string(cid)).Msg("rate limited")
		metrics.RateLimitedEvents.Inc()
		return
	}

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("bad json")
		metrics.MalformedEvents.Inc()
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case "authenticate":
		ctl.handleAuthenticate(cid, data)
	case "send-message":
		ctl.handleSendMessage(cid, data)
	case "start-call":
		ctl.handleStartCall(cid, data)
	case "accept-call":
		ctl.handleAcceptCall(cid, data)
	case "reject-call":
		ctl.handleRejectCall(cid, data)
	case "end-call":
		ctl.handleEndCall(cid, data)
	case "rtc-signal":
		ctl.handleRTCSignal(cid, data)
	case "typing":
		ctl.handleTyping(cid, data)
	case "message-seen":
		ctl.handleMessageSeen(cid, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
