package ports

import "context"

// Email is one outbound notification: an HTML body plus optional file
// attachments.
type Email struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []string
}

// Mailer delivers notification emails over the configured SMTP relay
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}
