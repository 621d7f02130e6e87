package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"
)

// Message is an email to deliver. From and To are fixed to the configured
// mailbox; ReplyTo points back at the submitter so replies reach them.
type Message struct {
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender abstracts email delivery for injection and testing.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	subjectPrefix = "Portfolio Contact: "
	dialTimeout   = 15 * time.Second
)

// smtpSession is the subset of *smtp.Client used to transmit one message.
type smtpSession interface {
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// dialFunc opens an encrypted SMTP session. Injectable so tests can assert
// that no connection is attempted when credentials are missing.
type dialFunc func(ctx context.Context, host string, port int) (smtpSession, error)

// SMTPSender delivers messages over an implicit-TLS SMTP connection using a
// Gmail-style address + application password pair.
type SMTPSender struct {
	address     string
	appPassword string
	host        string
	port        int
	dial        dialFunc
}

// NewSMTPSender creates an SMTPSender. Empty credentials are permitted here;
// Send reports them as an error without touching the network.
func NewSMTPSender(address, appPassword, host string, port int) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errors.New("mail: smtp host must not be empty")
	}
	if port <= 0 {
		return nil, errors.New("mail: smtp port must be > 0")
	}
	return &SMTPSender{
		address:     strings.TrimSpace(address),
		appPassword: appPassword,
		host:        host,
		port:        port,
		dial:        dialSMTPS,
	}, nil
}

// Send builds a self-addressed multipart/alternative message and transmits it
// synchronously. A single attempt, no retry, no queueing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.address == "" || s.appPassword == "" {
		return errors.New("mail: gmail credentials not configured")
	}

	raw, err := buildMIME(s.address, msg)
	if err != nil {
		return fmt.Errorf("mail: build message: %w", err)
	}

	session, err := s.dial(ctx, s.host, s.port)
	if err != nil {
		return fmt.Errorf("mail: connect to %s:%d: %w", s.host, s.port, err)
	}
	defer func() { _ = session.Close() }()

	auth := smtp.PlainAuth("", s.address, s.appPassword, s.host)
	if err := session.Auth(auth); err != nil {
		return fmt.Errorf("mail: authenticate: %w", err)
	}
	if err := session.Mail(s.address); err != nil {
		return fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	if err := session.Rcpt(s.address); err != nil {
		return fmt.Errorf("mail: RCPT TO: %w", err)
	}
	w, err := session.Data()
	if err != nil {
		return fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("mail: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: finish message: %w", err)
	}
	return session.Quit()
}

// buildMIME assembles the multipart/alternative payload: headers first, then
// the plain-text part, then the HTML part so capable clients prefer HTML.
func buildMIME(mailbox string, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mp := multipart.NewWriter(&buf)

	subject := subjectPrefix + sanitizeHeader(msg.Subject)

	headers := []string{
		"From: " + mailbox,
		"To: " + mailbox,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Reply-To: " + sanitizeHeader(msg.ReplyTo),
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="` + mp.Boundary() + `"`,
	}
	for _, h := range headers {
		if _, err := fmt.Fprintf(&buf, "%s\r\n", h); err != nil {
			return nil, err
		}
	}
	if _, err := buf.WriteString("\r\n"); err != nil {
		return nil, err
	}

	if err := writePart(mp, "text/plain", msg.TextBody); err != nil {
		return nil, err
	}
	if err := writePart(mp, "text/html", msg.HTMLBody); err != nil {
		return nil, err
	}
	if err := mp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(mp *multipart.Writer, contentType, body string) error {
	part, err := mp.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType + `; charset="utf-8"`},
	})
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(body))
	return err
}

// sanitizeHeader strips CR and LF so user-supplied subject and reply address
// text cannot inject additional message headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// dialSMTPS opens an implicit-TLS connection (SMTPS, port 465 style) and
// wraps it in an SMTP client.
func dialSMTPS(ctx context.Context, host string, port int) (smtpSession, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: dialTimeout},
		Config:    &tls.Config{ServerName: host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}
