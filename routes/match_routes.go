package routes

import (
	"squadfinder_server/controllers"
	"squadfinder_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match listing under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.HandleFunc("", controller.HandleGetMatches).Methods("GET")
}
