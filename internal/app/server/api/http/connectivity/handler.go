package connectivity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/exp/slog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Path is where clients in stream mode connect.
const Path = "/api/v1/connectivity"

// Heartbeat is sent to every connected client at a fixed interval.
type Heartbeat struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Handler upgrades to a websocket and sends heartbeats until the client
// goes away or the server shuts down.
type Handler struct {
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewHandler(interval time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		interval: interval,
		log:      log.With("component", "connectivity_handler"),
		now:      time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead handles their close frames.
	ctx := conn.CloseRead(r.Context())

	h.log.Debug("client connected", "remote_addr", r.RemoteAddr)
	err = h.stream(ctx, conn)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusNormalClosure, "")
	case websocket.CloseStatus(err) != -1:
	default:
		h.log.Debug("heartbeat stream ended", "remote_addr", r.RemoteAddr, "error", err)
	}
}

func (h *Handler) stream(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.beat(ctx, conn); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (h *Handler) beat(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()
	return wsjson.Write(ctx, conn, Heartbeat{Type: "heartbeat", At: h.now().UTC()})
}
