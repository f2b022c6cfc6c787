package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Auth
	r.HandleFunc("/api/auth/signup", deps.UserHandler.SignUp).Methods("POST")
	r.HandleFunc("/api/auth/signin", deps.UserHandler.SignIn).Methods("POST")
	r.HandleFunc("/api/auth/signout", deps.UserHandler.SignOut).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.List).Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.Create).Methods("POST")
	r.HandleFunc("/api/event/stream", deps.EventHandler.Stream).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Get).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Update).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.EventHandler.Delete).Methods("DELETE")

	// Favorites
	r.HandleFunc("/api/favorite", deps.FavoriteHandler.List).Methods("GET")
	r.HandleFunc("/api/favorite/ids", deps.FavoriteHandler.Ids).Methods("GET")
	r.HandleFunc("/api/favorite/calendar.ics", deps.FavoriteHandler.Calendar).Methods("GET")
	r.HandleFunc("/api/favorite/{eventId}/toggle", deps.FavoriteHandler.Toggle).Methods("PUT")
	r.HandleFunc("/api/favorite/{eventId}", deps.FavoriteHandler.Remove).Methods("DELETE")
}
