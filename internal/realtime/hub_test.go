package realtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(id string, chatID int64) *Client {
	return &Client{ID: id, ChatID: chatID, send: make(chan WSMessage, 4)}
}

func TestBroadcastReachesChatClientsOnly(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)

	a := newTestClient("a", 7)
	b := newTestClient("b", 7)
	other := newTestClient("c", 8)
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.BroadcastToChat(7, "poll_dispatched", map[string]int{"question": 1})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "poll_dispatched", msg.Event)
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	assert.Empty(t, other.send)
	assert.Equal(t, 2, hub.ViewerCount(7))

	hub.Unregister(a)
	hub.Unregister(b)
	assert.Equal(t, 0, hub.ViewerCount(7))
}

func TestBroadcastSkipsClientsWithFullBuffer(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := &Client{ID: "slow", ChatID: 7, send: make(chan WSMessage)}
	hub.Register(c)

	// Nothing drains c.send; the broadcast must not block.
	hub.BroadcastToChat(7, "answer_reconciled", map[string]bool{"correct": true})
}

// Clients connect and disconnect while broadcasts are in flight; run with
// -race to catch unguarded access to the per-chat client maps.
func TestBroadcastDuringRegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c := newTestClient(fmt.Sprintf("c-%d", i), 7)
			hub.Register(c)
			hub.Unregister(c)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.BroadcastToChat(7, "answer_reconciled", map[string]int{"n": i})
		}
	}()
	wg.Wait()
}

type fakeSubscriber struct {
	err        error
	subscribed []int64
	cancelled  []int64
}

func (f *fakeSubscriber) SubscribeChat(chatID int64, handler func(event string, payload []byte)) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subscribed = append(f.subscribed, chatID)
	return func() { f.cancelled = append(f.cancelled, chatID) }, nil
}

func TestSubscriptionLifecycleFollowsFirstAndLastClient(t *testing.T) {
	sub := &fakeSubscriber{}
	hub := NewHub(zap.NewNop(), nil, sub)

	a := newTestClient("a", 7)
	b := newTestClient("b", 7)
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, []int64{7}, sub.subscribed, "one subscription per chat")

	hub.Unregister(a)
	assert.Empty(t, sub.cancelled)
	hub.Unregister(b)
	assert.Equal(t, []int64{7}, sub.cancelled, "cancelled when the last client leaves")
}

func TestRegisterSurvivesSubscriptionFailure(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("redis down")}
	hub := NewHub(zap.NewNop(), nil, sub)

	c := newTestClient("a", 7)
	hub.Register(c)

	// Local broadcast still works without the cross-instance feed.
	assert.Equal(t, 1, hub.ViewerCount(7))
	hub.BroadcastToChat(7, "poll_dispatched", map[string]int{"n": 1})
	msg := <-c.send
	assert.Equal(t, "poll_dispatched", msg.Event)
}
