// Package mailer delivers one time codes over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	accounts "github.com/stormhaven/go-accounts"
)

// Config holds the SMTP transport options.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// Disabled turns delivery into a log line. Useful for local development.
	Disabled bool
}

// Mailer implements accounts.Notifier over SMTP with multipart
// alternative bodies. Port 465 uses implicit TLS, anything else
// negotiates STARTTLS when the server offers it.
type Mailer struct {
	cfg    Config
	logger accounts.Logger
}

var _ accounts.Notifier = (*Mailer)(nil)

// New creates a Mailer.
func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: nil,
	}
}

// WithLogger sets the logger used for disabled mode and delivery errors.
func (m *Mailer) WithLogger(logger accounts.Logger) *Mailer {
	m.logger = logger
	return m
}

// Deliver renders the template for the notification kind and sends it.
func (m *Mailer) Deliver(ctx context.Context, n accounts.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, textBody, htmlBody := renderNotification(n)

	if m.cfg.Disabled {
		if m.logger != nil {
			m.logger.Info("smtp disabled; would deliver code", "to", n.To, "kind", string(n.Kind), "code", n.Code)
		}
		return nil
	}

	if m.cfg.Host == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		return errors.New("smtp not configured")
	}

	fromAddr := m.cfg.From
	if fromAddr == "" {
		fromAddr = m.cfg.Username
	}
	fromHeader := fromAddr
	if m.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.cfg.FromName, fromAddr)
	}

	msg := buildMessage(fromHeader, fromAddr, n.To, subject, textBody, htmlBody)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if m.cfg.Port == 465 {
		return sendMailTLS(addr, m.cfg.Host, auth, fromAddr, []string{n.To}, msg)
	}

	return sendMail(addr, m.cfg.Host, auth, fromAddr, n.To, msg)
}

func sendMail(addr, host string, auth smtp.Auth, from, to, msg string) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: host}
		if err := c.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(fromHeader, fromAddr, to, subject, textBody, htmlBody string) string {
	boundary := fmt.Sprintf("accounts-%d", time.Now().UnixNano())
	var sb strings.Builder
	sb.WriteString("From: " + fromHeader + "\r\n")
	sb.WriteString("Sender: " + fromAddr + "\r\n")
	sb.WriteString("Reply-To: " + fromAddr + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(textBody + "\r\n")
	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody + "\r\n")
	sb.WriteString("--" + boundary + "--\r\n")
	return sb.String()
}
