// Package ws contains the trip chat core: the connection registry that
// groups live connections by trip and the per-connection session handler.
package ws

import (
	"context"
	"sync"

	"github.com/travel-buddies/travel-buddies-backend/logger"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Connection is the write side of one live chat connection. The session
// handler wraps the real websocket; tests substitute fakes.
type Connection interface {
	Send(ctx context.Context, payload any) error
	Close(code websocket.StatusCode, reason string) error
}

type entry struct {
	userID string
	conn   Connection
}

// room holds the ordered set of connections for one trip. Each room has
// its own lock so broadcasting to one trip never blocks joins on another.
// dead is set when the room is unlinked from the registry map; a joiner
// holding a stale pointer must re-lookup instead of appending to it.
type room struct {
	mu      sync.Mutex
	dead    bool
	entries []entry
}

func (rm *room) snapshot() []entry {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]entry, len(rm.entries))
	copy(out, rm.entries)
	return out
}

// Registry tracks which live connections belong to which trip and fans
// payloads out to them. It exclusively owns the trip-to-connections
// mapping; sessions mutate it only through Join and Leave.
type Registry struct {
	log   *zap.SugaredLogger
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		log:   logger.GetLogger().Named("chat_registry"),
		rooms: make(map[string]*room),
	}
}

// Join registers a connection for a trip, creating the room if absent.
// Callers join at most once per session. The room pointer is resolved
// and appended to under separate locks, so a concurrent last Leave can
// reap the room in between; a dead room forces a fresh lookup.
func (r *Registry) Join(tripID string, conn Connection, userID string) {
	for {
		r.mu.Lock()
		rm, ok := r.rooms[tripID]
		if !ok {
			rm = &room{}
			r.rooms[tripID] = rm
		}
		r.mu.Unlock()

		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}
		rm.entries = append(rm.entries, entry{userID: userID, conn: conn})
		rm.mu.Unlock()
		break
	}

	activeConnections.Inc()
	r.log.Infow("Connection joined trip chat", "tripID", tripID, "userID", userID)
}

// Leave removes a connection from a trip's room. Calling Leave for a
// connection that was never joined, or a second time, is a no-op: cleanup
// runs unconditionally on every session exit path.
func (r *Registry) Leave(tripID string, conn Connection) {
	r.mu.RLock()
	rm, ok := r.rooms[tripID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	removed := false
	for i, e := range rm.entries {
		if e.conn == conn {
			rm.entries = append(rm.entries[:i], rm.entries[i+1:]...)
			removed = true
			break
		}
	}
	empty := len(rm.entries) == 0
	rm.mu.Unlock()

	if removed {
		activeConnections.Dec()
		r.log.Infow("Connection left trip chat", "tripID", tripID)
	}

	if empty {
		r.dropRoomIfEmpty(tripID, rm)
	}
}

// dropRoomIfEmpty unlinks the room from the map unless a concurrent Join
// repopulated it. The dead flag is set under both locks so the unlink is
// atomic with respect to joiners holding a stale room pointer.
func (r *Registry) dropRoomIfEmpty(tripID string, rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.rooms[tripID]; ok && current == rm {
		rm.mu.Lock()
		if len(rm.entries) == 0 {
			rm.dead = true
			delete(r.rooms, tripID)
		}
		rm.mu.Unlock()
	}
}

// Broadcast sends payload to every connection registered for the trip,
// skipping exclude if non-nil. A failed delivery to one connection is
// logged and does not abort delivery to the others; the failing session's
// own read loop is responsible for its cleanup.
func (r *Registry) Broadcast(ctx context.Context, tripID string, payload any, exclude Connection) {
	r.mu.RLock()
	rm, ok := r.rooms[tripID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	broadcastsTotal.Inc()
	for _, e := range rm.snapshot() {
		if exclude != nil && e.conn == exclude {
			continue
		}
		if err := e.conn.Send(ctx, payload); err != nil {
			deliveryFailuresTotal.Inc()
			r.log.Warnw("Failed to deliver chat payload",
				"tripID", tripID,
				"userID", e.userID,
				"error", err)
		}
	}
}

// CloseTrip force-closes every connection registered for a trip. Each
// affected session observes the close on its read loop and runs its
// normal leave-on-exit cleanup, so entries are not removed here.
func (r *Registry) CloseTrip(tripID string, code websocket.StatusCode, reason string) {
	r.mu.RLock()
	rm, ok := r.rooms[tripID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	for _, e := range rm.snapshot() {
		if err := e.conn.Close(code, reason); err != nil {
			r.log.Debugw("Error force-closing chat connection",
				"tripID", tripID,
				"userID", e.userID,
				"error", err)
		}
	}
	r.log.Infow("Closed trip chat room", "tripID", tripID, "reason", reason)
}

// ConnectionCount returns the number of connections registered for a trip.
func (r *Registry) ConnectionCount(tripID string) int {
	r.mu.RLock()
	rm, ok := r.rooms[tripID]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.entries)
}

// Shutdown force-closes every registered connection, for graceful server
// shutdown.
func (r *Registry) Shutdown(code websocket.StatusCode, reason string) {
	r.mu.RLock()
	tripIDs := make([]string, 0, len(r.rooms))
	for tripID := range r.rooms {
		tripIDs = append(tripIDs, tripID)
	}
	r.mu.RUnlock()

	for _, tripID := range tripIDs {
		r.CloseTrip(tripID, code, reason)
	}
}
