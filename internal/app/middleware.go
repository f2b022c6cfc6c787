package app

import (
	"net/http"
	"time"

	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var publicPaths = map[string]bool{
	"/api/auth/signup": true,
	"/api/auth/signin": true,
	"/health":          true,
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {
	r.Use(requestLogger)
	r.Use(sessionMiddleware(deps.AuthService))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		log.Tracef("%s %s took %s", req.Method, req.URL.Path, time.Since(start))
	})
}

// sessionMiddleware resolves the bearer token into a session carried by the request context.
// Every route except the public ones requires a valid session.
func sessionMiddleware(auth user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if publicPaths[req.URL.Path] {
				next.ServeHTTP(w, req)
				return
			}

			token := user.TokenFromRequest(req)
			if token == "" {
				rest.WriteError(w, http.StatusUnauthorized, "Missing bearer token", "")
				return
			}
			session, err := auth.Authenticate(req.Context(), token)
			if err != nil {
				log.Debugf("rejecting request to %s: %v", req.URL.Path, err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid or expired session", "")
				return
			}
			next.ServeHTTP(w, req.WithContext(user.WithSession(req.Context(), session)))
		})
	}
}
