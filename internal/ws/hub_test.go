package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-credit-inventory/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	failing  bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestPublish_EncodesEvent(t *testing.T) {
	hub := NewHub()

	hub.Publish(service.Event{Action: service.ActionPaymentAdded, Profile: "alice", Message: "paid"})

	select {
	case msg := <-hub.Broadcast:
		assert.Equal(t, "alice", msg.Profile)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, service.ActionPaymentAdded, decoded["action"])
	case <-time.After(time.Second):
		t.Fatal("event was not broadcast")
	}
}

func TestRun_DeliversToMatchingProfile(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	alice := &fakeConn{}
	bob := &fakeConn{}
	broken := &fakeConn{failing: true}
	hub.Register <- Subscription{Conn: alice, Profile: "alice"}
	hub.Register <- Subscription{Conn: bob, Profile: "bob"}
	hub.Register <- Subscription{Conn: broken, Profile: "alice"}

	hub.Broadcast <- Message{Profile: "alice", Payload: []byte(`{"action":"credit_created"}`)}
	hub.Broadcast <- Message{Payload: []byte(`{"action":"everyone"}`)}

	assert.Eventually(t, func() bool {
		return alice.received() == 2 && bob.received() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
	assert.True(t, broken.isClosed())

	hub.Unregister <- alice
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, alice.isClosed())
}

func TestPublish_KeepsOrder(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	alice := &fakeConn{}
	require.True(t, hub.Subscribe(alice, "alice"))

	actions := []string{service.ActionCreditCreated, service.ActionStatusChanged, service.ActionPaymentAdded}
	for _, a := range actions {
		hub.Publish(service.Event{Action: a, Profile: "alice"})
	}

	require.Eventually(t, func() bool { return alice.received() == len(actions) }, time.Second, 10*time.Millisecond)

	alice.mu.Lock()
	defer alice.mu.Unlock()
	for i, raw := range alice.messages {
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, actions[i], decoded["action"])
	}
}

func TestStop_ReleasesSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := &fakeConn{}
	require.True(t, hub.Subscribe(conn, "alice"))
	hub.Stop()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unsubscribe(conn)
		assert.False(t, hub.Subscribe(&fakeConn{}, "bob"))
		hub.Publish(service.Event{Action: service.ActionProductCreated, Profile: "alice"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after Stop")
	}
	assert.Eventually(t, conn.isClosed, time.Second, 10*time.Millisecond)
}
