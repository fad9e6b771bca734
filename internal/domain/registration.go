package domain

import (
	"context"
	"time"
)

// Registration represents one claimed seat for an event.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Reserve atomically claims one seat: it checks remaining capacity and the
	// (event, email) uniqueness constraint and inserts the registration, all
	// serialized against concurrent reserves on the same event. Returns
	// ErrNotFound, ErrEventFull, or ErrDuplicateRegistration on the expected
	// business outcomes.
	Reserve(ctx context.Context, eventID, name, email string, phone *string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	// ListUnreminded returns the event's registrations whose reminder flag is unset.
	ListUnreminded(ctx context.Context, eventID string) ([]*Registration, error)
	// MarkReminded sets the per-registration reminder flag. Idempotent.
	MarkReminded(ctx context.Context, id string) error
}

// RegistrationService defines the attendee-facing registration operation.
type RegistrationService interface {
	// Register reserves a seat and sends a best-effort confirmation email.
	// The reservation is durable even if the confirmation fails to send.
	Register(ctx context.Context, eventID, name, email string, phone *string) (*Registration, error)
}
