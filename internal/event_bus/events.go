package event_bus

const (
	EventCreated EventType = "event.created"
	EventUpdated EventType = "event.updated"
	EventDeleted EventType = "event.deleted"

	FavoriteToggled EventType = "favorite.toggled"
)

// EventChangeTypes lists every type carrying an EventChanged payload.
var EventChangeTypes = []EventType{EventCreated, EventUpdated, EventDeleted}

// EventChanged is published after an event record was written. Subscribers re-read the store;
// the payload only identifies what changed and whose listing it affects.
type EventChanged struct {
	EventId string `json:"eventId"`
	UserId  string `json:"userId"`
}

type FavoriteChanged struct {
	EventId   string `json:"eventId"`
	UserId    string `json:"userId"`
	Favorited bool   `json:"favorited"`
}
