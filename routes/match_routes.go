package routes

import (
	"matchday_server/controllers"
	"matchday_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match lifecycle operations under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("", controller.CreateMatch).Methods("POST")
	matchRouter.HandleFunc("", controller.ListMatches).Methods("GET")
	matchRouter.HandleFunc("/user/{userId}", controller.GetUserMatches).Methods("GET")
	matchRouter.HandleFunc("/{id}/join", controller.JoinMatch).Methods("POST")
	matchRouter.HandleFunc("/{id}/start", controller.StartMatch).Methods("POST")
	matchRouter.HandleFunc("/{id}/score", controller.UpdateScore).Methods("PUT")
	matchRouter.HandleFunc("/{id}/end", controller.EndMatch).Methods("POST")
	matchRouter.HandleFunc("/{id}", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/{id}", controller.DeleteMatch).Methods("DELETE")
}
