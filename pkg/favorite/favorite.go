package favorite

import (
	"errors"
	"time"
)

var ErrEventIdRequired = errors.New("event id is required")

// Marker records that a user favorited an event. Nothing ties it to the event record; a marker
// may outlive its event.
type Marker struct {
	Id        string
	UserId    string
	EventId   string
	CreatedAt time.Time
}

// Duplicate is a (user, event) pair holding more than one marker.
type Duplicate struct {
	UserId  string
	EventId string
	Count   int
}

// ToggleResult is the membership state after a toggle, together with every event id the user
// has favorited.
type ToggleResult struct {
	EventId   string
	Favorited bool
	EventIds  []string
}

// MarkerId is the deterministic document id of the marker for a pair.
func MarkerId(userId, eventId string) string {
	return userId + "_" + eventId
}

// uniqueEventIds keeps the first occurrence of every event id.
func uniqueEventIds(markers []Marker) []string {
	seen := make(map[string]bool, len(markers))
	ids := make([]string, 0, len(markers))
	for _, m := range markers {
		if seen[m.EventId] {
			continue
		}
		seen[m.EventId] = true
		ids = append(ids, m.EventId)
	}
	return ids
}
