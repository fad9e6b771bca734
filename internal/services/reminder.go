package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventregistration/internal/domain"
)

// ReminderScanner finds events happening tomorrow and sends one reminder to
// each registrant that has not received one yet. Every state transition is an
// idempotent flag flip, so a scan may be re-run or aborted mid-loop safely.
type ReminderScanner struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewReminderScanner creates a ReminderScanner with the given dependencies.
func NewReminderScanner(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) *ReminderScanner {
	return &ReminderScanner{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

// Scan processes all events due the day after now. Per-registration failures
// leave the registration's flag unset so the next scan retries exactly those
// registrants; they never abort the scan.
func (s *ReminderScanner) Scan(ctx context.Context, now time.Time) error {
	target := TargetDate(now)

	events, err := s.eventRepo.ListDue(ctx, target)
	if err != nil {
		return fmt.Errorf("list due events: %w", err)
	}
	s.logger.InfoContext(ctx, "reminder scan started",
		"target_date", target.Format("2006-01-02"), "due_events", len(events))

	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.scanEvent(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "reminder scan failed for event",
				"event_id", event.ID, "err", err)
		}
	}
	return nil
}

func (s *ReminderScanner) scanEvent(ctx context.Context, event *domain.Event) error {
	regs, err := s.registrationRepo.ListUnreminded(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list unreminded registrations: %w", err)
	}

	for _, reg := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emailService.SendReminder(ctx, NewRegistrationEmailData(reg, event)); err != nil {
			// Leave the flag unset; the next scan retries this registrant.
			s.logger.WarnContext(ctx, "reminder email failed",
				"event_id", event.ID, "registration_id", reg.ID, "err", err)
			continue
		}
		if err := s.registrationRepo.MarkReminded(ctx, reg.ID); err != nil {
			// The email went out but the flag did not stick; a retried send on
			// the next scan is the accepted trade-off over losing the reminder.
			s.logger.ErrorContext(ctx, "failed to mark registration reminded",
				"registration_id", reg.ID, "err", err)
		}
	}

	// The event flag only keeps the event out of future due queries. Set it
	// only once no unreminded registrations remain, re-checked after the send
	// loop, so an event with failed sends keeps resurfacing until every
	// registrant has been reminded.
	remaining, err := s.registrationRepo.ListUnreminded(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("recheck unreminded registrations: %w", err)
	}
	if len(remaining) == 0 {
		if err := s.eventRepo.MarkReminded(ctx, event.ID); err != nil {
			return fmt.Errorf("mark event reminded: %w", err)
		}
	}
	return nil
}

// TargetDate returns tomorrow's calendar date relative to now, truncated to
// midnight UTC to match the DATE column.
func TargetDate(now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
}
