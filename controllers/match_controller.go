package controllers

import (
	"net/http"

	"squadfinder_server/services"
)

// MatchController handles match listing.
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance.
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// HandleGetMatches serves GET /api/matches?user_id=U.
func (mc *MatchController) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	matches, err := mc.MatchService.GetMatchesForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}
