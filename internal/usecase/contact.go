package usecase

import (
	"context"
	"errors"
	netmail "net/mail"
	"strings"
	"time"

	"portfolio-backend/internal/mail"
)

const (
	maxNameLen    = 100
	maxSubjectLen = 200
	maxContactLen = 2000
	maxEmailLen   = 254
)

// ContactService validates contact submissions, renders the dual-format
// message, and hands it to the mail sender.
type ContactService struct {
	sender mail.Sender
	now    func() time.Time
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func NewContactService(sender mail.Sender) (*ContactService, error) {
	if sender == nil {
		return nil, errors.New("usecase: mail sender must not be nil")
	}
	return &ContactService{
		sender: sender,
		now:    time.Now,
	}, nil
}

// Submit validates the submission and dispatches the rendered email.
// Validation failures occur before any side effect.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) error {
	sub, err := validateContactInput(in)
	if err != nil {
		return err
	}

	rendered, err := mail.Render(sub, s.now())
	if err != nil {
		return newError(ErrorInternal, "render_error", err)
	}

	msg := mail.Message{
		ReplyTo:  sub.Email,
		Subject:  sub.Subject,
		HTMLBody: rendered.HTMLBody,
		TextBody: rendered.TextBody,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return newError(ErrorSendFailed, "mail_send_error", err)
	}
	return nil
}

func validateContactInput(in ContactInput) (mail.Submission, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > maxNameLen {
		return mail.Submission{}, newError(ErrorInvalidInput, "name_length_invalid", nil)
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || len(email) > maxEmailLen {
		return mail.Submission{}, newError(ErrorInvalidInput, "email_invalid", nil)
	}
	if _, err := netmail.ParseAddress(email); err != nil {
		return mail.Submission{}, newError(ErrorInvalidInput, "email_invalid", nil)
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" || len(subject) > maxSubjectLen {
		return mail.Submission{}, newError(ErrorInvalidInput, "subject_length_invalid", nil)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" || len(message) > maxContactLen {
		return mail.Submission{}, newError(ErrorInvalidInput, "message_length_invalid", nil)
	}
	return mail.Submission{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}, nil
}
