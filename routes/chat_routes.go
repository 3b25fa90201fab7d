package routes

import (
	"matchday_server/controllers"
	"matchday_server/socket"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat history under /api/chat
func RegisterChatRoutes(r *mux.Router, registry *socket.RoomRegistry) {
	controller := controllers.NewChatController(registry)

	chatRouter := r.PathPrefix("/api/chat").Subrouter()

	chatRouter.HandleFunc("/messages/{matchId}", controller.GetMessages).Methods("GET")
}
