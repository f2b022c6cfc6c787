package event

import "time"

type EventDTO struct {
	Id          string    `json:"id"`
	EventName   string    `json:"eventName"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	UserId      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FieldsDTO struct {
	EventName   string `json:"eventName"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

func ToDTO(e Event) EventDTO {
	return EventDTO{
		Id:          e.Id,
		EventName:   e.EventName,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		UserId:      e.UserId,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func FromDTO(dto EventDTO) Event {
	return Event{
		Id:        dto.Id,
		UserId:    dto.UserId,
		Fields:    Fields{EventName: dto.EventName, Description: dto.Description, Location: dto.Location, Date: dto.Date, Time: dto.Time},
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

func ToDTOs(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, ToDTO(e))
	}
	return dtos
}

func FromDTOs(dtos []EventDTO) []Event {
	events := make([]Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, FromDTO(dto))
	}
	return events
}

func FieldsToDTO(f Fields) FieldsDTO {
	return FieldsDTO{EventName: f.EventName, Description: f.Description, Location: f.Location, Date: f.Date, Time: f.Time}
}

func FieldsFromDTO(dto FieldsDTO) Fields {
	return Fields{EventName: dto.EventName, Description: dto.Description, Location: dto.Location, Date: dto.Date, Time: dto.Time}
}
