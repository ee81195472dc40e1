// Package mailer implements the plateauth mail delivery collaborator over
// authenticated SMTP with implicit TLS, matching the deployment the Plate
// backend has always used (SMTPS, typically port 465).
package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTP defines a public type used by plateauth APIs.
//
// SMTP instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSMTP describes the newsmtp operation and its observable behavior.
//
// NewSMTP may return an error when input validation, dependency calls, or security checks fail.
// NewSMTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

// Send delivers a single HTML message. One connection per call; the engine
// treats delivery as a synchronous step of challenge issuance.
func (c *SMTP) Send(to, subject, htmlBody string) error {
	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: c.Host})
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", c.Username, c.Password, c.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mailer: auth: %w", err)
	}

	if err := client.Mail(c.Username); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mailer: rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write(c.message(to, subject, htmlBody)); err != nil {
		w.Close()
		return fmt.Errorf("mailer: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: close: %w", err)
	}

	return client.Quit()
}

func (c *SMTP) message(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + c.Username + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
