package stream

import (
	"sync"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// Hub fans dispatch events out to attached server-push listeners.
// Each listener owns a buffered channel; a listener that falls behind
// loses events instead of stalling the publisher.
type Hub struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	buffer    int
	closed    bool

	onChange func(count int)
	onDrop   func()
}

// Listener is one attached server-push client.
type Listener struct {
	events chan domain.StreamEvent
	once   sync.Once
}

// Events delivers dispatch events until the listener is removed or the hub
// is closed, at which point the channel is closed.
func (l *Listener) Events() <-chan domain.StreamEvent { return l.events }

func (l *Listener) close() { l.once.Do(func() { close(l.events) }) }

// Hooks carries optional callbacks injected by main for metrics.
type Hooks struct {
	OnChange func(count int)
	OnDrop   func()
}

func NewHub(buffer int, hooks Hooks) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if hooks.OnChange == nil {
		hooks.OnChange = func(int) {}
	}
	if hooks.OnDrop == nil {
		hooks.OnDrop = func() {}
	}
	return &Hub{
		listeners: make(map[*Listener]struct{}),
		buffer:    buffer,
		onChange:  hooks.OnChange,
		onDrop:    hooks.OnDrop,
	}
}

// Subscribe attaches a new listener. It returns nil once the hub is closed.
func (h *Hub) Subscribe() *Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	l := &Listener{events: make(chan domain.StreamEvent, h.buffer)}
	h.listeners[l] = struct{}{}
	h.onChange(len(h.listeners))
	return l
}

// Unsubscribe detaches l and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(l *Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[l]; !ok {
		return
	}
	delete(h.listeners, l)
	l.close()
	h.onChange(len(h.listeners))
}

// Broadcast delivers ev to every listener without blocking.
func (h *Hub) Broadcast(ev domain.StreamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for l := range h.listeners {
		select {
		case l.events <- ev:
		default:
			h.onDrop()
		}
	}
}

// Count returns the number of attached listeners.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close detaches every listener and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for l := range h.listeners {
		l.close()
		delete(h.listeners, l)
	}
	h.onChange(0)
}
