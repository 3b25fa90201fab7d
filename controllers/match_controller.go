package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"matchday_server/models"
	"matchday_server/services"

	"github.com/gorilla/mux"
)

// MatchController handles HTTP requests for the match lifecycle
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// CreateMatch - POST /api/matches. The response is the only place the
// plaintext PIN is ever disclosed.
func (mc *MatchController) CreateMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var request struct {
		Name  string `json:"name"`
		Sport string `json:"sport"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	match, pin, err := mc.MatchService.CreateMatch(context.TODO(), caller.UserID, request.Name, request.Sport)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"match": match,
		"pin":   pin,
	})
}

// JoinMatch - POST /api/matches/{id}/join
func (mc *MatchController) JoinMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var request struct {
		Team string `json:"team"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, ok := models.ParseTeam(request.Team)
	if !ok {
		writeServiceError(w, services.ErrInvalidTeam)
		return
	}

	match, err := mc.MatchService.JoinMatch(context.TODO(), mux.Vars(r)["id"], caller.UserID, team)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// StartMatch - POST /api/matches/{id}/start
func (mc *MatchController) StartMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var request struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	match, err := mc.MatchService.StartMatch(context.TODO(), mux.Vars(r)["id"], caller.UserID, request.Pin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Match started",
		"match":   match,
	})
}

// UpdateScore - PUT /api/matches/{id}/score
func (mc *MatchController) UpdateScore(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var request struct {
		Team   string `json:"team"`
		Points int    `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	team, ok := models.ParseTeam(request.Team)
	if !ok {
		writeServiceError(w, services.ErrInvalidTeam)
		return
	}

	match, err := mc.MatchService.UpdateScore(context.TODO(), mux.Vars(r)["id"], caller.UserID, team, request.Points)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// EndMatch - POST /api/matches/{id}/end
func (mc *MatchController) EndMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	match, err := mc.MatchService.EndMatch(context.TODO(), mux.Vars(r)["id"], caller.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Match ended",
		"match":   match,
	})
}

// DeleteMatch - DELETE /api/matches/{id}
func (mc *MatchController) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := mc.MatchService.DeleteMatch(context.TODO(), mux.Vars(r)["id"], caller.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Match deleted",
	})
}

// ListMatches - GET /api/matches?status=pending,started
func (mc *MatchController) ListMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	matches, err := mc.MatchService.ListMatches(context.TODO(), statuses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}

	writeJSON(w, http.StatusOK, matches)
}

// GetMatch - GET /api/matches/{id}
func (mc *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	detail, err := mc.MatchService.GetMatch(context.TODO(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// GetUserMatches - GET /api/matches/user/{userId}
func (mc *MatchController) GetUserMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := IdentityFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	matches, err := mc.MatchService.GetUserMatches(context.TODO(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}

	writeJSON(w, http.StatusOK, matches)
}
