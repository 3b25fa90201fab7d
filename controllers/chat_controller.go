package controllers

import (
	"context"
	"net/http"

	"matchday_server/socket"

	"github.com/gorilla/mux"
)

// ChatController handles HTTP requests for chat history
type ChatController struct {
	Registry *socket.RoomRegistry
}

// NewChatController initializes the chat controller
func NewChatController(registry *socket.RoomRegistry) *ChatController {
	return &ChatController{Registry: registry}
}

// GetMessages - GET /api/chat/messages/{matchId}. Returns the room's
// persisted history in ascending timestamp order; a purged room yields an
// empty list.
func (cc *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	matchID := mux.Vars(r)["matchId"]
	if matchID == "" {
		writeError(w, http.StatusBadRequest, "matchId is required")
		return
	}

	messages, err := cc.Registry.LoadHistory(context.TODO(), matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
