package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eventdeck/eventdeck/internal/rest"
	log "github.com/sirupsen/logrus"
)

type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionDTO struct {
	Token     string    `json:"token"`
	UserId    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserDTO struct {
	Uid       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SignUp godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Credentials"
// @Success 201 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Email already registered"
// @Router /api/auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing up")
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	session, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, sessionToDTO(session))
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Invalid credentials"
// @Router /api/auth/signin [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing in")
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	session, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sessionToDTO(session))
}

// SignOut godoc
// @Summary End the current session
// @Tags Auth
// @Success 204 "No Content"
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/auth/signout [post]
// @Security Bearer
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	session, err := CurrentSession(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	if err := h.service.SignOut(r.Context(), session); err != nil {
		writeAuthError(w, err)
		return
	}
	log.Debugf("user %s signed out", session.UserId)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser godoc
// @Summary Get the signed-in user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/user/current [get]
// @Security Bearer
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userId, err := CurrentId(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	u, err := h.service.GetUser(r.Context(), userId)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			rest.WriteError(w, http.StatusNotFound, "User not found", "")
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load user", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, UserDTO{Uid: u.Uid, Email: u.Email, CreatedAt: u.CreatedAt})
}

// TokenFromRequest extracts the bearer token from the Authorization header, falling back to the
// access_token query parameter used by streaming clients.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

func writeAuthError(w http.ResponseWriter, err error) {
	if field := FieldOf(err); field != "" && !errors.Is(err, ErrEmailTaken) {
		rest.WriteValidationError(w, err.Error(), []rest.FieldError{{Field: field, Message: err.Error()}})
		return
	}
	switch {
	case errors.Is(err, ErrEmailTaken):
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidSession):
		rest.WriteError(w, http.StatusUnauthorized, err.Error(), "")
	default:
		log.Errorf("auth request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Authentication service failed", err.Error())
	}
}

func sessionToDTO(s Session) SessionDTO {
	return SessionDTO{Token: s.Token, UserId: s.UserId, Email: s.Email, ExpiresAt: s.ExpiresAt}
}
