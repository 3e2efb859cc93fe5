package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// HealthChecker answers whether the server is up.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Probe polls a HealthChecker. Polling starts with the first subscription
// and ends with Close.
type Probe struct {
	checker  HealthChecker
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
	b        *broadcaster

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

var _ Monitor = (*Probe)(nil)

func NewProbe(checker HealthChecker, interval time.Duration, log *slog.Logger) *Probe {
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Probe{
		checker:  checker,
		interval: interval,
		timeout:  timeout,
		log:      log.With("component", "connectivity_probe"),
		b:        newBroadcaster(),
		done:     make(chan struct{}),
	}
}

func (p *Probe) Subscribe(fn func(bool)) (func(), error) {
	if fn == nil {
		return nil, errors.New("nil subscriber")
	}
	if p.interval <= 0 {
		return nil, errors.New("probe interval must be positive")
	}

	unsubscribe := p.b.subscribe(fn)
	p.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		go p.run(ctx)
	})
	return unsubscribe, nil
}

func (p *Probe) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Probe) check(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.checker.HealthCheck(checkCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.log.Debug("server unreachable", "error", err)
	}
	p.b.set(err == nil)
}

func (p *Probe) IsOnline() bool {
	return p.b.current()
}

// Close stops polling. It is safe to call when polling never started.
func (p *Probe) Close() error {
	p.startOnce.Do(func() {})
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	return nil
}
