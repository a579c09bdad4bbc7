/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package alerts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
)

const defaultSMTPPort = 587

var errEmailNotConfigured = errors.New("email notifier is not configured")

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// RecipientFunc returns the owner address of a network, or "".
type RecipientFunc func(networkID string) string

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends alert e-mails to the owner of the affected network,
// falling back to the SMTP user.
type EmailNotifier struct {
	config    EmailConfig
	recipient RecipientFunc
	sendMail  sendMailFunc
}

// NewEmailNotifier creates an e-mail notifier. recipient may be nil.
func NewEmailNotifier(config EmailConfig, recipient RecipientFunc) *EmailNotifier {
	if config.Port == 0 {
		config.Port = defaultSMTPPort
	}

	if config.From == "" {
		config.From = "noreply@meshradar.local"
	}

	return &EmailNotifier{
		config:    config,
		recipient: recipient,
		sendMail:  smtp.SendMail,
	}
}

func (e *EmailNotifier) IsEnabled() bool {
	return e.config.Enabled && e.config.Host != "" && e.config.Username != ""
}

// Notify formats and sends the alert. ctx only bounds the wait; net/smtp has
// no context support, so a send already in flight runs to completion.
func (e *EmailNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if !e.IsEnabled() {
		return errEmailNotConfigured
	}

	to := e.config.Username
	if e.recipient != nil {
		if addr := e.recipient(alert.NetworkID); addr != "" {
			to = addr
		}
	}

	subject, body, err := FormatAlertEmail(alert)
	if err != nil {
		return err
	}

	msg := buildMessage(e.config.From, to, subject, body)
	addr := net.JoinHostPort(e.config.Host, strconv.Itoa(e.config.Port))
	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	done := make(chan error, 1)

	go func() {
		done <- e.sendMail(addr, auth, e.config.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}

		log.Printf("Alert email sent to %s: %s", to, subject)

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var emailTemplate = template.Must(template.New("email").Parse(`
<div style="font-family: 'Segoe UI', sans-serif; max-width: 500px; margin: 0 auto;">
  <div style="background: #003D5C; color: #fff; padding: 15px 20px; border-radius: 8px 8px 0 0;">
    <h2 style="margin: 0; font-size: 18px;">meshradar alert</h2>
  </div>
  <div style="background: #f8f9fa; padding: 20px; border: 1px solid #ddd; border-top: none; border-radius: 0 0 8px 8px;">
    <div style="background: {{.Color}}20; border-left: 4px solid {{.Color}}; padding: 12px; border-radius: 4px; margin-bottom: 15px;">
      <strong style="color: {{.Color}};">{{.Severity}}</strong>
      <p style="margin: 5px 0 0; color: #333;">{{.Message}}</p>
    </div>
    <p style="color: #666; font-size: 13px;">Network ID: {{.NetworkID}}<br>Type: {{.Type}}<br>Time: {{.Time}}</p>
  </div>
</div>
`))

// FormatAlertEmail renders the subject and HTML body for an alert.
func FormatAlertEmail(alert *models.Alert) (string, string, error) {
	severity := strings.ToUpper(string(alert.Severity))
	if severity == "" {
		severity = "INFO"
	}

	networkID := alert.NetworkID
	if networkID == "" {
		networkID = "N/A"
	}

	color := "#FFC107"
	if alert.Severity == models.SeverityCritical {
		color = "#F44336"
	}

	subject := fmt.Sprintf("[meshradar] %s: %s - Network %s", severity, alert.Type, networkID)

	var buf bytes.Buffer

	if err := emailTemplate.Execute(&buf, map[string]any{
		"Color":     template.CSS(color),
		"Severity":  severity,
		"Message":   alert.Message,
		"NetworkID": networkID,
		"Type":      string(alert.Type),
		"Time":      alert.CreatedAt.UTC().Format(time.RFC1123),
	}); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}

	return subject, buf.String(), nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder

	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
