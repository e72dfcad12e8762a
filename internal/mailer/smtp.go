// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Encryption selects how the SMTP connection is secured.
type Encryption string

// Supported encryption modes.
const (
	EncryptionNone     Encryption = "none"
	EncryptionStartTLS Encryption = "starttls"
	EncryptionImplicit Encryption = "ssl/tls"
)

// SMTPMailer implements Mailer over a plain SMTP provider. A fresh
// connection is dialed per send; transient dial failures are retried with
// exponential backoff.
type SMTPMailer struct {
	host       string
	port       int
	username   string
	password   string
	fromAddr   string
	encryption Encryption
	timeout    time.Duration
}

// SMTPOptions configures an SMTPMailer.
type SMTPOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromAddr   string
	Encryption string
	Timeout    time.Duration
}

// NewSMTPMailer creates an SMTPMailer. Unknown encryption modes fall back
// to STARTTLS.
func NewSMTPMailer(opts SMTPOptions) *SMTPMailer {
	enc := Encryption(strings.ToLower(strings.TrimSpace(opts.Encryption)))
	if enc != EncryptionNone && enc != EncryptionStartTLS && enc != EncryptionImplicit {
		enc = EncryptionStartTLS
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{
		host:       opts.Host,
		port:       opts.Port,
		username:   opts.Username,
		password:   opts.Password,
		fromAddr:   opts.FromAddr,
		encryption: enc,
		timeout:    timeout,
	}
}

// SendSimple delivers a message with the given subject and bodies. At
// least one body must be non-empty.
func (m *SMTPMailer) SendSimple(ctx context.Context, destAddr, subject, textBody, htmlBody string) (bool, error) {
	if destAddr == "" {
		return false, oops.Code("MAIL_NO_RECIPIENT").Errorf("destination address is required")
	}
	if textBody == "" && htmlBody == "" {
		return false, oops.Code("MAIL_EMPTY_BODY").Errorf("message body is required")
	}

	message := m.buildMessage(destAddr, subject, textBody, htmlBody)

	var client *smtp.Client
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, dialErr := m.dial(ctx)
		if dialErr != nil {
			return retry.RetryableError(dialErr)
		}
		client = c
		return nil
	})
	if err != nil {
		return false, oops.Code("MAIL_DIAL_FAILED").With("host", m.host).Wrap(err)
	}
	defer client.Close() //nolint:errcheck // best-effort cleanup after Quit

	if err := m.submit(client, destAddr, message); err != nil {
		return false, err
	}
	return true, nil
}

func (m *SMTPMailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	dialer := &net.Dialer{Timeout: m.timeout}

	if m.encryption == EncryptionImplicit {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by the retry caller
		}
		return smtp.NewClient(conn, m.host)
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the retry caller
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the retry caller
	}
	if m.encryption == EncryptionStartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12}); err != nil {
			_ = client.Close() //nolint:errcheck // handshake error takes precedence
			return nil, err    //nolint:wrapcheck // wrapped by the retry caller
		}
	}
	return client, nil
}

func (m *SMTPMailer) submit(client *smtp.Client, destAddr string, message []byte) error {
	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return oops.Code("MAIL_AUTH_FAILED").With("host", m.host).Wrap(err)
		}
	}
	if err := client.Mail(m.fromAddr); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "MAIL FROM").Wrap(err)
	}
	if err := client.Rcpt(destAddr); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "RCPT TO").Wrap(err)
	}
	w, err := client.Data()
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "DATA").Wrap(err)
	}
	if _, err := w.Write(message); err != nil {
		_ = w.Close() //nolint:errcheck // write error takes precedence
		return oops.Code("MAIL_SEND_FAILED").With("operation", "write body").Wrap(err)
	}
	if err := w.Close(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "close body").Wrap(err)
	}
	if err := client.Quit(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("operation", "QUIT").Wrap(err)
	}
	return nil
}

// buildMessage renders a multipart/alternative MIME message with the
// provided text and HTML parts.
func (m *SMTPMailer) buildMessage(destAddr, subject, textBody, htmlBody string) []byte {
	const boundary = "boavaga-alt"
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", m.fromAddr)
	fmt.Fprintf(&b, "To: %s\r\n", destAddr)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	if textBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(textBody)
		b.WriteString("\r\n")
	}
	if htmlBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(htmlBody)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// Compile-time interface check.
var _ Mailer = (*SMTPMailer)(nil)
