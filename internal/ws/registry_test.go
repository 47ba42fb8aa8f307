package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type fakeConn struct {
	mu        sync.Mutex
	sent      []any
	sendErr   error
	closed    bool
	closeCode websocket.StatusCode
}

func (f *fakeConn) Send(_ context.Context, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeConn) Close(code websocket.StatusCode, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCode = code
	return nil
}

func (f *fakeConn) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeConn) wasClosed() (bool, websocket.StatusCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed, f.closeCode
}

func TestRegistry_JoinLeave(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}

	r.Join("trip-1", c1, "u1")
	r.Join("trip-1", c2, "u2")
	assert.Equal(t, 2, r.ConnectionCount("trip-1"))

	r.Leave("trip-1", c1)
	assert.Equal(t, 1, r.ConnectionCount("trip-1"))

	r.Leave("trip-1", c2)
	assert.Equal(t, 0, r.ConnectionCount("trip-1"))
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}

	r.Join("trip-1", c1, "u1")
	r.Leave("trip-1", c1)
	r.Leave("trip-1", c1)
	r.Leave("trip-1", &fakeConn{})
	r.Leave("no-such-trip", c1)

	assert.Equal(t, 0, r.ConnectionCount("trip-1"))
}

func TestRegistry_Broadcast(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	other := &fakeConn{}

	r.Join("trip-1", c1, "u1")
	r.Join("trip-1", c2, "u2")
	r.Join("trip-2", other, "u3")

	r.Broadcast(context.Background(), "trip-1", "hello", nil)

	assert.Equal(t, 1, c1.sentCount())
	assert.Equal(t, 1, c2.sentCount())
	assert.Equal(t, 0, other.sentCount(), "other trips must not receive the payload")
}

func TestRegistry_BroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	sender := &fakeConn{}
	peer := &fakeConn{}

	r.Join("trip-1", sender, "u1")
	r.Join("trip-1", peer, "u2")

	r.Broadcast(context.Background(), "trip-1", "hello", sender)

	assert.Equal(t, 0, sender.sentCount())
	assert.Equal(t, 1, peer.sentCount())
}

func TestRegistry_BroadcastContinuesPastFailures(t *testing.T) {
	r := NewRegistry()
	broken := &fakeConn{sendErr: errors.New("write failed")}
	healthy := &fakeConn{}

	r.Join("trip-1", broken, "u1")
	r.Join("trip-1", healthy, "u2")

	r.Broadcast(context.Background(), "trip-1", "hello", nil)

	assert.Equal(t, 1, healthy.sentCount())
	// The failing connection stays registered; its own session cleans up.
	assert.Equal(t, 2, r.ConnectionCount("trip-1"))
}

func TestRegistry_CloseTrip(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	c2 := &fakeConn{}
	other := &fakeConn{}

	r.Join("trip-1", c1, "u1")
	r.Join("trip-1", c2, "u2")
	r.Join("trip-2", other, "u3")

	r.CloseTrip("trip-1", websocket.StatusGoingAway, "trip cancelled")

	for _, c := range []*fakeConn{c1, c2} {
		closed, code := c.wasClosed()
		require.True(t, closed)
		assert.Equal(t, websocket.StatusGoingAway, code)
	}
	closed, _ := other.wasClosed()
	assert.False(t, closed)
}

func TestRegistry_JoinAfterLastLeaveLandsInLiveRoom(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{}
	r.Join("trip-1", c1, "u1")

	// Resolve the room pointer the way a joiner does before it takes the
	// room lock, then let the last Leave reap the room underneath it.
	r.mu.RLock()
	stale := r.rooms["trip-1"]
	r.mu.RUnlock()

	r.Leave("trip-1", c1)

	c2 := &fakeConn{}
	r.Join("trip-1", c2, "u2")

	stale.mu.Lock()
	assert.True(t, stale.dead, "reaped room must be marked dead")
	assert.Empty(t, stale.entries, "no entry may land in a reaped room")
	stale.mu.Unlock()

	assert.Equal(t, 1, r.ConnectionCount("trip-1"))
	r.Broadcast(context.Background(), "trip-1", "hello", nil)
	assert.Equal(t, 1, c2.sentCount())
}

func TestRegistry_LastLeaveRacingJoin(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 2000; i++ {
		c1 := &fakeConn{}
		r.Join("trip-1", c1, "u1")

		c2 := &fakeConn{}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Leave("trip-1", c1)
		}()
		go func() {
			defer wg.Done()
			r.Join("trip-1", c2, "u2")
		}()
		wg.Wait()

		require.Equal(t, 1, r.ConnectionCount("trip-1"), "iteration %d", i)
		r.Leave("trip-1", c2)
	}
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tripID := fmt.Sprintf("trip-%d", i%5)
			c := &fakeConn{}
			r.Join(tripID, c, fmt.Sprintf("u%d", i))
			r.Broadcast(context.Background(), tripID, "hi", nil)
			r.Leave(tripID, c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, r.ConnectionCount(fmt.Sprintf("trip-%d", i)))
	}
}
