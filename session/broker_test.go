package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBrokerFiltersByUser(t *testing.T) {
	b := NewBroker(4)
	alice, unsubAlice := b.Subscribe("alice")
	defer unsubAlice()
	all, unsubAll := b.Subscribe("")
	defer unsubAll()

	require.NoError(t, b.Publish(context.Background(), Event{Type: SignedIn, UserID: "bob"}))
	require.NoError(t, b.Publish(context.Background(), Event{Type: TokenRefreshed, UserID: "alice"}))

	assert.Equal(t, "bob", receive(t, all).UserID)
	assert.Equal(t, "alice", receive(t, all).UserID)

	e := receive(t, alice)
	assert.Equal(t, TokenRefreshed, e.Type)
	assert.False(t, e.At.IsZero())
	assert.Empty(t, alice)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(1)
	ch, unsubscribe := b.Subscribe("alice")
	assert.Equal(t, 1, b.Subscribers())

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers())
	assert.NoError(t, b.Publish(context.Background(), Event{Type: SignedOut, UserID: "alice"}))
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker(1)
	_, unsubscribe := b.Subscribe("")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = b.Publish(context.Background(), Event{Type: SignedIn, UserID: "u"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
