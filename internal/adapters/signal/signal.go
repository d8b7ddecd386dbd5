package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/primemar/signaling/internal/app"
	"github.com/primemar/signaling/internal/config"
	"github.com/primemar/signaling/internal/core"
	"github.com/primemar/signaling/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type SignalWSController struct {
	Relay   *app.Relay
	Cfg     *config.Config
	limiter *rateLimiter
}

func NewSignalWSController(relay *app.Relay, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Relay:   relay,
		Cfg:     cfg,
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateInterval),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Permissive origin check: the relay is deployed behind trusted fronts
// and performs no authorization of its own.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	// The transport owns the connection id; the client never sees it.
	cid := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("new WS connection")

	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ctl.Relay.Connect(cid, conn)

	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, cid, conn)
}

var _ core.SignalConnection = (*WsSignalConn)(nil)
