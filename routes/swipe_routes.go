package routes

import (
	"squadfinder_server/controllers"
	"squadfinder_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up routes for swipe operations under /api/swipe
func RegisterSwipeRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewSwipeController(matchService)

	swipeRouter := r.PathPrefix("/api/swipe").Subrouter()
	swipeRouter.HandleFunc("", controller.HandleSwipe).Methods("POST")
}
