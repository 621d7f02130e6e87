package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/mail"
)

type fakeSender struct {
	sent    []mail.Message
	sendErr error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func validContactInput() ContactInput {
	return ContactInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Project inquiry",
		Message: "I would like to discuss a project.",
	}
}

func newTestContactService(t *testing.T, sender *fakeSender) *ContactService {
	t.Helper()
	s, err := NewContactService(sender)
	require.NoError(t, err)
	s.now = func() time.Time {
		return time.Date(2026, time.March, 14, 15, 4, 0, 0, time.UTC)
	}
	return s
}

func TestNewContactService_NilSender(t *testing.T) {
	_, err := NewContactService(nil)
	require.Error(t, err)
}

func TestSubmit_HappyPath(t *testing.T) {
	sender := &fakeSender{}
	s := newTestContactService(t, sender)

	err := s.Submit(context.Background(), validContactInput())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.Equal(t, "jane@example.com", msg.ReplyTo)
	require.Equal(t, "Project inquiry", msg.Subject)
	require.Contains(t, msg.HTMLBody, "Jane Doe")
	require.Contains(t, msg.TextBody, "Jane Doe")
	require.Contains(t, msg.TextBody, "I would like to discuss a project.")
}

func TestSubmit_ValidationRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContactInput)
		reason string
	}{
		{
			name:   "empty name",
			mutate: func(in *ContactInput) { in.Name = "  " },
			reason: "name_length_invalid",
		},
		{
			name:   "name too long",
			mutate: func(in *ContactInput) { in.Name = strings.Repeat("a", 101) },
			reason: "name_length_invalid",
		},
		{
			name:   "empty email",
			mutate: func(in *ContactInput) { in.Email = "" },
			reason: "email_invalid",
		},
		{
			name:   "malformed email",
			mutate: func(in *ContactInput) { in.Email = "not-an-address" },
			reason: "email_invalid",
		},
		{
			name:   "email too long",
			mutate: func(in *ContactInput) { in.Email = strings.Repeat("a", 250) + "@example.com" },
			reason: "email_invalid",
		},
		{
			name:   "empty subject",
			mutate: func(in *ContactInput) { in.Subject = "" },
			reason: "subject_length_invalid",
		},
		{
			name:   "subject too long",
			mutate: func(in *ContactInput) { in.Subject = strings.Repeat("s", 201) },
			reason: "subject_length_invalid",
		},
		{
			name:   "empty message",
			mutate: func(in *ContactInput) { in.Message = "\n\t " },
			reason: "message_length_invalid",
		},
		{
			name:   "message too long",
			mutate: func(in *ContactInput) { in.Message = strings.Repeat("m", 2001) },
			reason: "message_length_invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			s := newTestContactService(t, sender)

			in := validContactInput()
			tt.mutate(&in)

			err := s.Submit(context.Background(), in)
			uerr := requireCode(t, err, ErrorInvalidInput)
			require.Equal(t, tt.reason, uerr.Reason)
			require.Empty(t, sender.sent, "invalid input must not reach the sender")
		})
	}
}

func TestSubmit_TrimsFields(t *testing.T) {
	sender := &fakeSender{}
	s := newTestContactService(t, sender)

	in := ContactInput{
		Name:    "  Jane Doe  ",
		Email:   " jane@example.com ",
		Subject: " Hello ",
		Message: " Hi there ",
	}
	require.NoError(t, s.Submit(context.Background(), in))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "jane@example.com", sender.sent[0].ReplyTo)
	require.Equal(t, "Hello", sender.sent[0].Subject)
}

func TestSubmit_SenderFailure(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("smtp: 535 auth failed")}
	s := newTestContactService(t, sender)

	err := s.Submit(context.Background(), validContactInput())
	uerr := requireCode(t, err, ErrorSendFailed)
	require.Equal(t, "mail_send_error", uerr.Reason)
}
