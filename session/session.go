// Package session holds the signed-in operator identity.
package session

import "sync"

// Manager tracks the current identity and tells listeners when it changes.
// Listeners run synchronously, in registration order, on the goroutine that
// changed the identity, and are not called when the identity is unchanged.
type Manager struct {
	mu        sync.Mutex
	current   string
	listeners []func(identity string)
	changing  sync.Mutex
}

func NewManager() *Manager {
	return &Manager{}
}

// Current returns the signed-in identity, or "" when nobody is signed in.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnChange registers fn to receive every subsequent identity change.
func (m *Manager) OnChange(fn func(identity string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) SignIn(identity string) {
	m.set(identity)
}

func (m *Manager) SignOut() {
	m.set("")
}

// set serialises changes so listeners observe them in order.
func (m *Manager) set(identity string) {
	m.changing.Lock()
	defer m.changing.Unlock()

	m.mu.Lock()
	if m.current == identity {
		m.mu.Unlock()
		return
	}
	m.current = identity
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(identity)
	}
}
