package controllers

import (
	"net/http"

	"squadfinder_server/services"
)

// SwipeController handles swipe submissions.
type SwipeController struct {
	MatchService *services.MatchService
}

// NewSwipeController creates a new SwipeController instance.
func NewSwipeController(matchService *services.MatchService) *SwipeController {
	return &SwipeController{MatchService: matchService}
}

type swipeRequest struct {
	SwiperID string `json:"swiper_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=like pass"`
}

// HandleSwipe serves POST /api/swipe. Matched is true on exactly the call
// that created the match.
func (sc *SwipeController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := sc.MatchService.RecordSwipe(r.Context(), req.SwiperID, req.TargetID, req.Action)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
