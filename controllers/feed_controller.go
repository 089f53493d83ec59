package controllers

import (
	"net/http"

	"squadfinder_server/services"
)

// FeedController handles feed requests.
type FeedController struct {
	FeedService *services.FeedService
}

// NewFeedController creates a new FeedController instance.
func NewFeedController(feedService *services.FeedService) *FeedController {
	return &FeedController{FeedService: feedService}
}

// HandleGetFeed serves GET /api/feed?user_id=U&game_id=G. An empty list is a
// normal response meaning no more candidates, not a failure.
func (fc *FeedController) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	gameID := r.URL.Query().Get("game_id")

	users, err := fc.FeedService.GetFeed(r.Context(), userID, gameID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
