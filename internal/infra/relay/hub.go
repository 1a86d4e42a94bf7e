package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/infra/events"
	"cafe-passport/internal/infra/metrics"
)

// clientBuffer bounds how many undelivered events a slow client may hold.
const clientBuffer = 16

// Event is one relay notification as handed to a connected client.
type Event struct {
	Subject string
	Data    json.RawMessage
}

type client struct {
	userID string
	ch     chan Event
}

// Hub fans events out to connected clients. Delivery is at most once: a
// client whose buffer is full loses the event, and an offline client gets
// nothing. Clients reconcile by re-fetching state on (re)connect.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *zerolog.Logger
}

func NewHub(logger *zerolog.Logger) *Hub {
	l := logger.With().Str("component", "RelayHub").Logger()
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     &l,
	}
}

// Attach registers a client connection for the given user and returns its
// event channel plus a detach func. The caller must call detach when the
// connection closes.
func (h *Hub) Attach(userID string) (<-chan Event, func()) {
	c := &client{userID: userID, ch: make(chan Event, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetRelayClients(n)

	detach := func() {
		h.mu.Lock()
		delete(h.clients, c)
		n := len(h.clients)
		h.mu.Unlock()
		metrics.SetRelayClients(n)
	}
	return c.ch, detach
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(ev Event) {
	h.deliver(ev, func(*client) bool { return true })
}

// NotifyUser delivers an event to the clients of one user only.
func (h *Hub) NotifyUser(userID string, ev Event) {
	h.deliver(ev, func(c *client) bool { return c.userID == userID })
}

func (h *Hub) deliver(ev Event, match func(*client) bool) {
	metrics.IncRelayEvent(ev.Subject)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.ch <- ev:
		default:
			// Slow client: drop rather than stall the hub.
			metrics.IncRelayDropped()
			h.log.Warn().Str("subject", ev.Subject).Str("user_id", c.userID).Msg("relay buffer full, event dropped")
		}
	}
}

// Run wires the hub to the event bus. Cafe updates fan out to everyone;
// redemption events are routed to the claim holder only.
func (h *Hub) Run(bus events.Subscriber) error {
	if err := bus.Subscribe(adapter.EventCafeUpdated, func(msg *events.Message) {
		h.Broadcast(Event{Subject: msg.Subject, Data: msg.Data})
	}); err != nil {
		return err
	}
	return bus.Subscribe(adapter.EventClaimRedeemed, func(msg *events.Message) {
		var ev adapter.ClaimRedeemedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			h.log.Warn().Err(err).Msg("bad claim.redeemed payload")
			return
		}
		h.NotifyUser(ev.UserID, Event{Subject: msg.Subject, Data: msg.Data})
	})
}
