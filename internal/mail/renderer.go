// Package mail renders contact-form submissions into dual-format email and
// delivers them over an authenticated SMTPS session.
package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Submission holds the contact-form fields to render.
type Submission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Rendered is the dual-format message body pair.
type Rendered struct {
	HTMLBody string
	TextBody string
}

const timestampLayout = "January 2, 2006 at 3:04 PM"

// htmlTemplate embeds the submission fields through html/template so user
// text is contextually escaped before it reaches an HTML-capable mail client.
var htmlTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>New Contact Form Submission</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f5f7fa; line-height: 1.6;">
<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="background-color: #f5f7fa; padding: 40px 20px;">
<tr><td align="center">
<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="600" style="max-width: 600px; background-color: #ffffff; border-radius: 16px; overflow: hidden;">
<tr><td style="background: linear-gradient(135deg, #2563eb 0%, #1d4ed8 100%); padding: 40px 30px; text-align: center;">
<h1 style="margin: 0; color: #ffffff; font-size: 28px; font-weight: 700;">New Contact Message</h1>
<p style="margin: 8px 0 0 0; color: rgba(255, 255, 255, 0.9); font-size: 15px;">You've received a new inquiry from your portfolio</p>
</td></tr>
<tr><td style="padding: 40px 30px;">
<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="background-color: #f8fafc; border-radius: 12px; padding: 24px;">
<tr><td>
<h2 style="margin: 0 0 20px 0; color: #1e293b; font-size: 18px; font-weight: 600;">Contact Details</h2>
<p style="margin: 0 0 8px 0;"><span style="color: #64748b; font-size: 14px;">Name:</span> <span style="color: #1e293b; font-size: 15px; font-weight: 600;">{{.Name}}</span></p>
<p style="margin: 0 0 8px 0;"><span style="color: #64748b; font-size: 14px;">Email:</span> <a href="mailto:{{.Email}}" style="color: #2563eb; font-size: 15px; text-decoration: none;">{{.Email}}</a></p>
<p style="margin: 0 0 8px 0;"><span style="color: #64748b; font-size: 14px;">Subject:</span> <span style="color: #1e293b; font-size: 15px;">{{.Subject}}</span></p>
<p style="margin: 0;"><span style="color: #64748b; font-size: 14px;">Date:</span> <span style="color: #64748b; font-size: 14px;">{{.Timestamp}}</span></p>
</td></tr>
</table>
<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="margin-top: 24px; border: 2px solid #e2e8f0; border-left: 4px solid #2563eb; border-radius: 12px; padding: 24px;">
<tr><td>
<h3 style="margin: 0 0 16px 0; color: #1e293b; font-size: 16px; font-weight: 600;">Message Content</h3>
<div style="color: #475569; font-size: 15px; line-height: 1.7; white-space: pre-wrap; word-wrap: break-word;">{{.Message}}</div>
</td></tr>
</table>
</td></tr>
<tr><td style="background-color: #f8fafc; padding: 30px; text-align: center; border-top: 1px solid #e2e8f0;">
<p style="margin: 0; color: #64748b; font-size: 13px;">This email was automatically sent from your portfolio contact form. Reply directly to respond to the sender.</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`))

// Render produces the HTML body and the plain-text fallback for a submission.
// It is a pure function of the submission and the given timestamp.
func Render(sub Submission, now time.Time) (Rendered, error) {
	ts := now.Format(timestampLayout)

	var html strings.Builder
	err := htmlTemplate.Execute(&html, struct {
		Name, Email, Subject, Message, Timestamp string
	}{sub.Name, sub.Email, sub.Subject, sub.Message, ts})
	if err != nil {
		return Rendered{}, fmt.Errorf("mail: render html body: %w", err)
	}

	text := fmt.Sprintf(`New Contact Form Submission
===========================

From: %s
Email: %s
Subject: %s
Date: %s

Message:
%s

---
Reply directly to this email to respond to %s.
`, sub.Name, sub.Email, sub.Subject, ts, sub.Message, sub.Name)

	return Rendered{HTMLBody: html.String(), TextBody: text}, nil
}
