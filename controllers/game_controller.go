package controllers

import (
	"net/http"

	"squadfinder_server/services"
)

// GameController serves the games list for the feed filter.
type GameController struct {
	GameService *services.GameService
}

// NewGameController creates a new GameController instance.
func NewGameController(gameService *services.GameService) *GameController {
	return &GameController{GameService: gameService}
}

// HandleListGames serves GET /api/games.
func (gc *GameController) HandleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := gc.GameService.ListGames(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}
