package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// AccountFlagged is published after a flagged account has been persisted.
const AccountFlagged = "AccountFlagged"

// FlaggedPayload is the event payload carried to every subscriber.
type FlaggedPayload struct {
	Platform    string   `json:"platform"`
	Handle      string   `json:"handle"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	RiskScore   float64  `json:"risk_score"`
	Reasons     []string `json:"reasons"`
	FirstSeen   string   `json:"first_seen"`
	LastSeen    string   `json:"last_seen"`
	CrawlLog    []string `json:"crawl_log"`
}

// Handler consumes one event payload. Returned errors are logged at the
// bus boundary and never reach the publisher or sibling handlers.
type Handler func(ctx context.Context, payload FlaggedPayload) error

// Bus is a synchronous in-process publish/subscribe registry keyed by
// event name. Construct one per process at startup and pass it by
// reference; there is no ambient instance.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Handler
	logger *slog.Logger
}

// New builds an empty bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   map[string][]Handler{},
		logger: logger,
	}
}

// Subscribe registers a handler for the named event. Delivery order within
// one event name equals subscription order.
func (b *Bus) Subscribe(name string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], handler)
}

// Publish invokes every registered handler for name, in registration
// order. Each handler runs to completion before Publish returns; a failing
// or panicking handler is logged and never prevents the remaining handlers
// from running.
func (b *Bus) Publish(ctx context.Context, name string, payload FlaggedPayload) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[name]))
	copy(handlers, b.subs[name])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, name, h, payload)
	}
}

func (b *Bus) dispatch(ctx context.Context, name string, h Handler, payload FlaggedPayload) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic", "event", name, "panic", r)
		}
	}()

	if err := h(ctx, payload); err != nil {
		b.logger.Error("event handler error", "event", name, "error", err)
	}
}
