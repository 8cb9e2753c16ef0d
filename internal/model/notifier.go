package model

// Notifier defines a generic interface for delivering alert notifications.
type Notifier interface {
	// Send delivers one message; body is HTML.
	Send(subject, body string) error
}
