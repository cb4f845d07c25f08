package mail

import (
	"context"
	"fmt"
	"strings"
)

const (
	passwordResetSubject = "Your password reset token (valid for 10 min)"
	welcomeSubject       = "Welcome to the TourBook family!"
)

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	body := fmt.Sprintf("Hi %s,\n\n"+
		"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to:\n%s\n\n"+
		"If you didn't forget your password, please ignore this email.",
		firstName(name), resetURL)
	return m.Send(ctx, Message{To: email, Subject: passwordResetSubject, Body: body})
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, email, name, accountURL string) error {
	body := fmt.Sprintf("Hi %s,\n\n"+
		"Welcome to TourBook, we're glad to have you.\n"+
		"Upload a photo and manage your bookings from your account page:\n%s\n",
		firstName(name), accountURL)
	return m.Send(ctx, Message{To: email, Subject: welcomeSubject, Body: body})
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
