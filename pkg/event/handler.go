package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eventdeck/eventdeck/internal/rest"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	SnapshotMessage = "snapshot"
	ErrorMessage    = "error"
)

// SnapshotDTO is the payload of one snapshot message on the event stream.
type SnapshotDTO struct {
	Events []EventDTO `json:"events"`
}

type Handler struct {
	service   Service
	heartbeat time.Duration
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, heartbeat: 25 * time.Second}
}

// List godoc
// @Summary List the current user's events
// @Tags Event
// @Produce json
// @Success 200 {array} EventDTO
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/event [get]
// @Security Bearer
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing events")
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(events))
}

// Create godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body FieldsDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Missing required fields"
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/event [post]
// @Security Bearer
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating event")
	var dto FieldsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Tracef("Creating event: %+v", dto)

	created, err := h.service.CreateEvent(r.Context(), FieldsFromDTO(dto))
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

// Get godoc
// @Summary Get an event
// @Tags Event
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/event/{eventId} [get]
// @Security Bearer
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(e))
}

// Update godoc
// @Summary Update an event
// @Tags Event
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param event body FieldsDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Missing required fields"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/event/{eventId} [put]
// @Security Bearer
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Updating event %s", eventId)
	var dto FieldsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), eventId, FieldsFromDTO(dto))
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Delete godoc
// @Summary Delete an event
// @Tags Event
// @Param eventId path string true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/event/{eventId} [delete]
// @Security Bearer
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	eventId := mux.Vars(r)["eventId"]
	log.Debugf("Deleting event %s", eventId)
	if err := h.service.DeleteEvent(r.Context(), eventId); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream godoc
// @Summary Stream the current user's events
// @Description Server-Sent Events. Sends a "snapshot" message with the full event list right away
// @Description and again after every change.
// @Tags Event
// @Produce text/event-stream
// @Success 200 {object} SnapshotDTO
// @Router /api/event/stream [get]
// @Security Bearer
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	sub, err := h.service.Watch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warnf("failed to clear write deadline for event stream: %v", err)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Errorf("event stream cannot be flushed: %v", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case events, ok := <-sub.Snapshots():
			if !ok {
				if err := sub.Err(); err != nil {
					writeMessage(w, ErrorMessage, rest.ErrorResponse{Error: "Event stream failed", Details: err.Error()})
					rc.Flush()
				}
				return
			}
			if err := writeMessage(w, SnapshotMessage, SnapshotDTO{Events: ToDTOs(events)}); err != nil {
				log.Debugf("event stream closed by client: %v", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeMessage(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

func writeError(w http.ResponseWriter, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		fields := make([]rest.FieldError, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			fields = append(fields, rest.FieldError{Field: f.Field, Message: f.Message})
		}
		rest.WriteValidationError(w, ErrValidation.Error(), fields)
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrEmptyIdList):
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, user.ErrNoSession):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	default:
		log.Errorf("event request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Event store failed", err.Error())
	}
}
