// Package email delivers generated documents to the will maker over SMTP.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"willgen/internal/will/store/submission"
)

// Mailer sends the will package as a multipart message with the PDF and
// signing checklist attached. Authentication is optional: hosts that accept
// unauthenticated relay (local postfix, mailhog) work with empty credentials.
type Mailer struct {
	host     string
	port     int
	from     string
	username string
	password string
	logger   *slog.Logger
}

type Option func(*Mailer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mailer) { m.logger = logger }
}

// WithAuth enables SMTP PLAIN authentication.
func WithAuth(username, password string) Option {
	return func(m *Mailer) {
		m.username = username
		m.password = password
	}
}

func New(host string, port int, from string, opts ...Option) *Mailer {
	m := &Mailer{
		host:   host,
		port:   port,
		from:   from,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendWill delivers the generated documents to the recipient. The caller
// treats failures as non-fatal, so this returns the raw transport error.
func (m *Mailer) SendWill(ctx context.Context, recipient string, sub *submission.Submission, pdfBytes, checklistBytes []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.buildMessage(recipient, sub, pdfBytes, checklistBytes)
	if err != nil {
		return fmt.Errorf("email: build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{recipient}, msg); err != nil {
		return fmt.Errorf("email: send to %s: %w", addr, err)
	}

	m.logger.Info("will package emailed",
		"submission_id", sub.ID,
		"recipient", recipient,
	)
	return nil
}

// buildMessage assembles a multipart/mixed message: a plain-text body
// followed by the two PDF attachments, base64 encoded.
func (m *Mailer) buildMessage(recipient string, sub *submission.Submission, pdfBytes, checklistBytes []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", recipient)
	fmt.Fprintf(&buf, "Subject: Your Will Document (%s)\r\n", sub.ID)
	fmt.Fprintf(&buf, "Date: %s\r\n", sub.GenerationTimestamp.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	buf.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(part, bodyTemplate, sub.ID, sub.PDFSHA256)

	attachments := []struct {
		name string
		data []byte
	}{
		{sub.ID + ".pdf", pdfBytes},
		{sub.ID + "_checklist.pdf", checklistBytes},
	}
	for _, a := range attachments {
		if err := writeAttachment(mw, a.name, a.data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAttachment(mw *multipart.Writer, name string, data []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "application/pdf")
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// RFC 2045 caps encoded lines at 76 characters.
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:n]); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

const bodyTemplate = `Your will document has been generated.

Submission: %s
Document hash (SHA-256): %s

Two documents are attached:

  1. Your will, ready to print and sign.
  2. A signing checklist covering the execution requirements.

Print the will single-sided, then follow the checklist. The document is
not legally effective until it is signed and witnessed correctly.

This mailbox is not monitored.
`
