// Package session fans owner session lifecycle events (sign in, sign out,
// token refresh) out to subscribers such as the dashboard event stream.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chatdesk/api/metrics"
)

type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
)

type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"userId"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher is implemented by Broker and RedisRelay.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type subscriber struct {
	userID string
	ch     chan Event
}

// Broker is an in-process publish/subscribe hub. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{subs: make(map[uint64]*subscriber), buffer: buffer}
}

// Subscribe registers for events of userID, or all users when userID is
// empty. The returned func unsubscribes and closes the channel; it is safe
// to call more than once.
func (b *Broker) Subscribe(userID string) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{userID: userID, ch: make(chan Event, b.buffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, unsubscribe
}

func (b *Broker) Publish(_ context.Context, e Event) error {
	b.deliver(e)
	return nil
}

func (b *Broker) deliver(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	metrics.SessionEventsTotal.WithLabelValues(string(e.Type)).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.userID != "" && sub.userID != e.UserID {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			log.Warn().Str("type", string(e.Type)).Str("user_id", e.UserID).Msg("Session subscriber is full, dropping event")
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
