package connectivity

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/exp/slog"
	"nhooyr.io/websocket"
)

const streamPath = "/api/v1/connectivity"

type StreamOptions struct {
	// URL is the ws(s) root of the server.
	URL   string
	Token string
	// HeartbeatTimeout is how long the stream may stay silent before the
	// server counts as unreachable.
	HeartbeatTimeout   time.Duration
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

func (o *StreamOptions) defaults() {
	if o.HeartbeatTimeout <= 0 {
		o.HeartbeatTimeout = 30 * time.Second
	}
	if o.ReconnectBaseDelay <= 0 {
		o.ReconnectBaseDelay = time.Second
	}
	if o.ReconnectMaxDelay <= 0 {
		o.ReconnectMaxDelay = 30 * time.Second
	}
}

// Stream keeps a websocket open to the server's heartbeat endpoint. The
// server is online while heartbeats arrive.
type Stream struct {
	opts StreamOptions
	log  *slog.Logger
	b    *broadcaster

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ Monitor = (*Stream)(nil)

func NewStream(opts StreamOptions, log *slog.Logger) *Stream {
	opts.defaults()
	return &Stream{
		opts: opts,
		log:  log.With("component", "connectivity_stream"),
		b:    newBroadcaster(),
		done: make(chan struct{}),
	}
}

func (s *Stream) Subscribe(fn func(bool)) (func(), error) {
	if fn == nil {
		return nil, errors.New("nil subscriber")
	}
	if s.opts.URL == "" {
		return nil, errors.New("stream url is empty")
	}

	unsubscribe := s.b.subscribe(fn)
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		go s.run(ctx)
	})
	return unsubscribe, nil
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	attempt := 0
	for {
		connected, err := s.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		s.b.set(false)
		if connected {
			attempt = 0
		}

		delay := backoff(s.opts.ReconnectBaseDelay, s.opts.ReconnectMaxDelay, attempt)
		attempt++
		s.log.Debug("stream lost, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// listen dials the server and reads heartbeats until the stream breaks. It
// reports whether the connection was established at all.
func (s *Stream) listen(ctx context.Context) (bool, error) {
	header := http.Header{}
	if s.opts.Token != "" {
		header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.HeartbeatTimeout)
	conn, _, err := websocket.Dial(dialCtx, s.opts.URL+streamPath, &websocket.DialOptions{HTTPHeader: header})
	cancel()
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s.b.set(true)

	for {
		readCtx, cancel := context.WithTimeout(ctx, s.opts.HeartbeatTimeout)
		_, _, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			return true, err
		}
	}
}

func backoff(base, limit time.Duration, attempt int) time.Duration {
	d := float64(base) * math.Pow(2, float64(attempt))
	return time.Duration(math.Min(d, float64(limit)))
}

func (s *Stream) IsOnline() bool {
	return s.b.current()
}

// Close tears the stream down. It is safe to call when it never started.
func (s *Stream) Close() error {
	s.startOnce.Do(func() {})
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	return nil
}
