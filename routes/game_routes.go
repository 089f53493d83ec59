package routes

import (
	"squadfinder_server/controllers"
	"squadfinder_server/services"

	"github.com/gorilla/mux"
)

// RegisterGameRoutes sets up the games listing under /api/games
func RegisterGameRoutes(r *mux.Router, gameService *services.GameService) {
	controller := controllers.NewGameController(gameService)

	gameRouter := r.PathPrefix("/api/games").Subrouter()
	gameRouter.HandleFunc("", controller.HandleListGames).Methods("GET")
}
