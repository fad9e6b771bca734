package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for confirmation and reminder emails.
type RegistrationEmailData struct {
	Name           string
	Email          string
	Phone          string
	RegistrationID string
	Title          string
	Description    string
	Date           string
	Time           string
	Location       string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	// SendConfirmation sends the one-time registration confirmation.
	SendConfirmation(ctx context.Context, data *RegistrationEmailData) error
	// SendReminder sends the day-before event reminder.
	SendReminder(ctx context.Context, data *RegistrationEmailData) error
}
