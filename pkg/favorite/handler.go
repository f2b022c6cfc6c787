package favorite

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ToggleResultDTO struct {
	EventId   string   `json:"eventId"`
	Favorited bool     `json:"favorited"`
	EventIds  []string `json:"eventIds"`
}

type IdsDTO struct {
	EventIds []string `json:"eventIds"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List favorite events
// @Description Events the current user favorited. Empty when there are none.
// @Tags Favorite
// @Produce json
// @Success 200 {array} event.EventDTO
// @Router /api/favorite [get]
// @Security Bearer
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing favorite events")
	events, err := h.service.ListFavorites(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, event.ToDTOs(events))
}

// Ids godoc
// @Summary List favorite event ids
// @Tags Favorite
// @Produce json
// @Success 200 {object} IdsDTO
// @Router /api/favorite/ids [get]
// @Security Bearer
func (h *Handler) Ids(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.FavoriteIds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	rest.WriteJSON(w, http.StatusOK, IdsDTO{EventIds: ids})
}

// Toggle godoc
// @Summary Toggle an event in the favorites
// @Tags Favorite
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} ToggleResultDTO
// @Router /api/favorite/{eventId}/toggle [put]
// @Security Bearer
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Toggling favorite %s", eventId)
	result, err := h.service.Toggle(r.Context(), eventId)
	if err != nil {
		writeError(w, err)
		return
	}
	ids := result.EventIds
	if ids == nil {
		ids = []string{}
	}
	rest.WriteJSON(w, http.StatusOK, ToggleResultDTO{EventId: result.EventId, Favorited: result.Favorited, EventIds: ids})
}

// Remove godoc
// @Summary Remove an event from the favorites
// @Tags Favorite
// @Param eventId path string true "Event ID"
// @Success 204 "No Content"
// @Router /api/favorite/{eventId} [delete]
// @Security Bearer
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Removing favorite %s", eventId)
	if err := h.service.Remove(r.Context(), eventId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calendar godoc
// @Summary Favorite events as iCalendar
// @Description Dates and times are read in the zone given by the tz query parameter (UTC by default).
// @Tags Favorite
// @Produce text/calendar
// @Param tz query string false "IANA time zone"
// @Success 200 {string} string "iCalendar feed"
// @Router /api/favorite/calendar.ics [get]
// @Security Bearer
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Unknown time zone", err.Error())
			return
		}
		loc = parsed
	}
	feed, err := h.service.Calendar(r.Context(), loc)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="favorites.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		log.Errorf("failed to write calendar: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case IsClientError(err):
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, event.ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, user.ErrNoSession):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	default:
		log.Errorf("favorite request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Favorites store failed", err.Error())
	}
}
