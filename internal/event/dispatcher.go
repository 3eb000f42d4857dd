package event

import "sync"

// Handler consumes one event. Handlers run on their own goroutine and must do
// their own error handling; the dispatcher never retries.
type Handler func(Event)

// Dispatcher fans events out to subscribed handlers asynchronously.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		go h(e)
	}
}
