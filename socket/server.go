package socket

import (
	"context"
	"log"

	socketio "github.com/googollee/go-socket.io"
)

type joinRoomPayload struct {
	MatchID  string `json:"matchId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type publishPayload struct {
	MatchID  string `json:"matchId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

// NewSocketServer wires the socket.io transport to the room registry.
func NewSocketServer(registry *RoomRegistry) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		log.Println("✅ Socket connected:", s.ID())
		return nil
	})

	server.OnEvent("/", "joinRoom", func(s socketio.Conn, data joinRoomPayload) {
		if data.MatchID == "" || data.UserID == "" {
			log.Println("❌ Invalid joinRoom request: missing matchId or userId")
			return
		}
		registry.Subscribe(data.MatchID, s, Participant{UserID: data.UserID, UserName: data.UserName})
	})

	server.OnEvent("/", "publish", func(s socketio.Conn, data publishPayload) {
		if data.MatchID == "" || data.UserID == "" {
			log.Println("❌ Invalid publish request: missing matchId or userId")
			return
		}
		participant := Participant{UserID: data.UserID, UserName: data.UserName}
		if err := registry.Publish(context.Background(), data.MatchID, participant, data.Text); err != nil {
			log.Printf("❌ Failed to publish message to room %s: %v\n", data.MatchID, err)
		}
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		registry.Unsubscribe(s.ID())
		log.Println("❌ Socket disconnected:", s.ID(), reason)
	})

	return server
}
