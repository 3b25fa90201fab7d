package socket

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"matchday_server/models"
	"matchday_server/services"

	"github.com/google/uuid"
)

// Participant identifies the sender behind a chat event.
type Participant struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Subscriber is one live connection in a room. socketio.Conn satisfies it;
// Emit buffers per connection, so a slow subscriber never blocks the rest
// of the room.
type Subscriber interface {
	ID() string
	Emit(event string, args ...interface{})
}

// room serializes all persist+broadcast sequences for one match, so every
// subscriber observes messages in the order the store records them.
type room struct {
	mu   sync.Mutex
	subs map[string]Subscriber
}

// RoomRegistry maps match ids to their current subscribers and routes chat
// events to persistence and to every live connection of that room. The
// subscriber map is process-local and owned exclusively by the registry.
type RoomRegistry struct {
	Chat services.ChatStore

	mu     sync.Mutex
	rooms  map[string]*room
	conns  map[string]map[string]bool // connection id -> subscribed match ids
	purged map[string]bool
}

func NewRoomRegistry(chat services.ChatStore) *RoomRegistry {
	return &RoomRegistry{
		Chat:   chat,
		rooms:  make(map[string]*room),
		conns:  make(map[string]map[string]bool),
		purged: make(map[string]bool),
	}
}

func (rr *RoomRegistry) getRoom(matchID string) (*room, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.purged[matchID] {
		return nil, false
	}
	r, ok := rr.rooms[matchID]
	if !ok {
		r = &room{subs: make(map[string]Subscriber)}
		rr.rooms[matchID] = r
	}
	return r, true
}

// Subscribe registers the connection under matchID's room and announces a
// participantJoined event to the room's other subscribers (best-effort,
// not persisted).
func (rr *RoomRegistry) Subscribe(matchID string, sub Subscriber, participant Participant) {
	r, ok := rr.getRoom(matchID)
	if !ok {
		log.Printf("❌ Ignoring subscribe to purged room %s\n", matchID)
		return
	}

	rr.mu.Lock()
	if rr.conns[sub.ID()] == nil {
		rr.conns[sub.ID()] = make(map[string]bool)
	}
	rr.conns[sub.ID()][matchID] = true
	rr.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, peer := range r.subs {
		if id != sub.ID() {
			peer.Emit("participantJoined", map[string]string{
				"matchId":  matchID,
				"userId":   participant.UserID,
				"userName": participant.UserName,
			})
		}
	}
	r.subs[sub.ID()] = sub

	log.Printf("👥 %s subscribed to room %s\n", participant.UserID, matchID)
}

// Publish persists a chat message with a server-assigned timestamp and
// delivers it to every current subscriber of the room, the sender
// included. Empty or whitespace-only text is a silent no-op. Persist and
// broadcast run as one step under the room lock, so no two publishes to
// the same room interleave.
func (rr *RoomRegistry) Publish(ctx context.Context, matchID string, participant Participant, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	r, ok := rr.getRoom(matchID)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	message := models.ChatMessage{
		MatchID:    matchID,
		MessageID:  uuid.New().String(),
		SenderID:   participant.UserID,
		SenderName: participant.UserName,
		Text:       text,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := rr.Chat.AppendMessage(ctx, message); err != nil {
		return err
	}

	for _, sub := range r.subs {
		sub.Emit("message", message)
	}
	return nil
}

// Unsubscribe removes the connection from every room it belongs to.
// Invoked on disconnect.
func (rr *RoomRegistry) Unsubscribe(connID string) {
	rr.mu.Lock()
	matchIDs := rr.conns[connID]
	delete(rr.conns, connID)
	members := make([]*room, 0, len(matchIDs))
	for matchID := range matchIDs {
		if r, ok := rr.rooms[matchID]; ok {
			members = append(members, r)
		}
	}
	rr.mu.Unlock()

	for _, r := range members {
		r.mu.Lock()
		delete(r.subs, connID)
		r.mu.Unlock()
	}
}

// LoadHistory returns the persisted messages for matchID in ascending
// timestamp order. A purged or never-used room yields an empty sequence.
func (rr *RoomRegistry) LoadHistory(ctx context.Context, matchID string) ([]models.ChatMessage, error) {
	rr.mu.Lock()
	isPurged := rr.purged[matchID]
	rr.mu.Unlock()
	if isPurged {
		return []models.ChatMessage{}, nil
	}

	messages, err := rr.Chat.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// PurgeRoom stops further relay for matchID and deletes its persisted
// messages. Connections stay open; their subscriptions to other rooms are
// untouched. Invoked by the lifecycle engine on end and delete.
func (rr *RoomRegistry) PurgeRoom(ctx context.Context, matchID string) error {
	rr.mu.Lock()
	rr.purged[matchID] = true
	r := rr.rooms[matchID]
	delete(rr.rooms, matchID)
	for _, matchIDs := range rr.conns {
		delete(matchIDs, matchID)
	}
	rr.mu.Unlock()

	// Wait out any in-flight publish before wiping history.
	if r != nil {
		r.mu.Lock()
		r.subs = nil
		r.mu.Unlock()
	}

	if err := rr.Chat.DeleteByMatch(ctx, matchID); err != nil {
		return err
	}

	log.Printf("🧹 Room %s purged\n", matchID)
	return nil
}
