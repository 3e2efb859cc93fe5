package connectivity

import "errors"

// Manual is a Monitor whose state is set explicitly, e.g. by a CLI flag.
type Manual struct {
	b   *broadcaster
	err error
}

var _ Monitor = (*Manual)(nil)

func NewManual(online bool) *Manual {
	m := &Manual{b: newBroadcaster()}
	m.b.set(online)
	return m
}

func (m *Manual) Subscribe(fn func(bool)) (func(), error) {
	if m.err != nil {
		return nil, m.err
	}
	if fn == nil {
		return nil, errors.New("nil subscriber")
	}
	return m.b.subscribe(fn), nil
}

// SetOnline changes the state. Subscribers only hear about real transitions.
func (m *Manual) SetOnline(online bool) {
	m.b.set(online)
}

func (m *Manual) IsOnline() bool {
	return m.b.current()
}

// FailSubscribe makes every following Subscribe return err.
func (m *Manual) FailSubscribe(err error) {
	m.err = err
}

// Subscribers returns the number of active subscriptions.
func (m *Manual) Subscribers() int {
	return m.b.subscribers()
}
