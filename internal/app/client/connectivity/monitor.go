// Package connectivity reports whether the document server is reachable.
package connectivity

import "sync"

// Monitor delivers the current reachability to fn promptly after
// subscription and then on every transition. An unknown state counts as
// offline.
type Monitor interface {
	Subscribe(fn func(isConnected bool)) (unsubscribe func(), err error)
}

// broadcaster keeps the last known state and fans transitions out to
// subscribers. Subscribers are called outside of mu but under deliver, so a
// subscriber sees states in the order they were set. Subscribers must not
// call set or subscribe.
type broadcaster struct {
	deliver   sync.Mutex
	mu        sync.Mutex
	known     bool
	online    bool
	listeners map[int]func(bool)
	nextID    int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{listeners: make(map[int]func(bool))}
}

func (b *broadcaster) subscribe(fn func(bool)) func() {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	known, online := b.known, b.online
	b.mu.Unlock()

	if known {
		fn(online)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// set records the state and notifies subscribers when it changed.
func (b *broadcaster) set(online bool) {
	b.deliver.Lock()
	defer b.deliver.Unlock()

	b.mu.Lock()
	if b.known && b.online == online {
		b.mu.Unlock()
		return
	}
	b.known = true
	b.online = online
	listeners := make([]func(bool), 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(online)
	}
}

func (b *broadcaster) current() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.known && b.online
}

func (b *broadcaster) subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
