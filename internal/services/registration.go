package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"eventregistration/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewRegistrationService creates a RegistrationService with the given
// repositories and email service.
func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

// Register reserves a seat and then sends the confirmation email. The reserve
// commits before any email work starts, so mail latency never holds the
// per-event lock and a delivery failure never undoes the reservation.
func (s *registrationService) Register(ctx context.Context, eventID, name, email string, phone *string) (*domain.Registration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id is required", domain.ErrInvalidInput)
	}

	reg, err := s.registrationRepo.Reserve(ctx, eventID, name, email, phone)
	if err != nil {
		// Surface business outcomes directly so handlers can set correct HTTP status.
		if errors.Is(err, domain.ErrNotFound) ||
			errors.Is(err, domain.ErrEventFull) ||
			errors.Is(err, domain.ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve registration: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmation email skipped: event lookup failed",
			"event_id", eventID, "registration_id", reg.ID, "err", err)
		return reg, nil
	}
	if err := s.emailService.SendConfirmation(ctx, NewRegistrationEmailData(reg, event)); err != nil {
		// Best-effort policy: the seat is already committed; log and move on.
		s.logger.WarnContext(ctx, "confirmation email failed",
			"event_id", eventID, "registration_id", reg.ID, "err", err)
	}
	return reg, nil
}

// NewRegistrationEmailData builds the email payload from a committed
// registration and its event.
func NewRegistrationEmailData(reg *domain.Registration, event *domain.Event) *domain.RegistrationEmailData {
	data := &domain.RegistrationEmailData{
		Name:           reg.Name,
		Email:          reg.Email,
		RegistrationID: reg.ID,
		Title:          event.Title,
		Date:           event.Date.Format("Monday, January 2, 2006"),
		Time:           event.TimeOfDay,
		Location:       event.Location,
	}
	if reg.Phone != nil {
		data.Phone = *reg.Phone
	}
	if event.Description != nil {
		data.Description = *event.Description
	}
	return data
}
