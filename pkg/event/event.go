package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEmptyIdList   = errors.New("event id list must not be empty")
	ErrValidation    = errors.New("missing required fields")
)

// Fields are the user-editable attributes of an event. Date and Time are free-form strings;
// YYYY-MM-DD and HH:MM are suggested but not enforced.
type Fields struct {
	EventName   string
	Description string
	Location    string
	Date        string
	Time        string
}

type Event struct {
	Id     string
	UserId string
	Fields
	CreatedAt time.Time
	UpdatedAt time.Time
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every required field left empty.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(names, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks the required fields after trimming. Date and time are optional.
func (f Fields) Validate() error {
	var missing []FieldError
	if strings.TrimSpace(f.EventName) == "" {
		missing = append(missing, FieldError{Field: "eventName", Message: "Event name is required"})
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, FieldError{Field: "description", Message: "Description is required"})
	}
	if strings.TrimSpace(f.Location) == "" {
		missing = append(missing, FieldError{Field: "location", Message: "Location is required"})
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Normalized trims surrounding whitespace from every field.
func (f Fields) Normalized() Fields {
	return Fields{
		EventName:   strings.TrimSpace(f.EventName),
		Description: strings.TrimSpace(f.Description),
		Location:    strings.TrimSpace(f.Location),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
	}
}

// OrderByIds returns the events in the order of ids, dropping ids without a matching event.
func OrderByIds(ids []string, events []Event) []Event {
	byId := make(map[string]Event, len(events))
	for _, e := range events {
		byId[e.Id] = e
	}
	ordered := make([]Event, 0, len(events))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		e, ok := byId[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, e)
	}
	return ordered
}
