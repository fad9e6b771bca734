package domain

import (
	"context"
	"time"
)

// Event represents a scheduled event with a fixed seat capacity.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	TimeOfDay   string    `json:"time"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	// RegisteredCount is the live number of registrations, computed by the
	// repository on read. It is never stored.
	RegisteredCount int       `json:"registered_count"`
	ReminderSent    bool      `json:"reminder_sent"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title string, description *string, date time.Time, timeOfDay, location string, capacity int, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		TimeOfDay:   timeOfDay,
		Location:    location,
		Capacity:    capacity,
		CreatedAt:   createdAt,
	}
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns all events ascending by date, each annotated with its live
	// registration count.
	List(ctx context.Context) ([]*Event, error)
	// Delete removes the event and all of its registrations as one unit.
	Delete(ctx context.Context, id string) error
	// ListDue returns events on targetDate whose reminder flag is unset.
	ListDue(ctx context.Context, targetDate time.Time) ([]*Event, error)
	// MarkReminded sets the event-level reminder flag. Idempotent.
	MarkReminded(ctx context.Context, id string) error
}

// EventService defines organizer and attendee operations on events.
type EventService interface {
	Create(ctx context.Context, title string, description *string, date time.Time, timeOfDay, location string, capacity int) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Delete(ctx context.Context, id string) error
	ListRegistrations(ctx context.Context, eventID string) ([]*Registration, error)
}
