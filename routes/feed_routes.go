package routes

import (
	"squadfinder_server/controllers"
	"squadfinder_server/services"

	"github.com/gorilla/mux"
)

// RegisterFeedRoutes sets up routes for feed operations under /api/feed
func RegisterFeedRoutes(r *mux.Router, feedService *services.FeedService) {
	controller := controllers.NewFeedController(feedService)

	feedRouter := r.PathPrefix("/api/feed").Subrouter()
	feedRouter.HandleFunc("", controller.HandleGetFeed).Methods("GET")
}
