package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

var ErrUnknownTemplate = errors.New("unknown notification template")

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[string]mailTemplate{
	models.TemplateArtistBookingApproved: {
		subject: "Payment Pending for your booking",
		body: template.Must(template.New(models.TemplateArtistBookingApproved).Parse(
			`<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto; border: 2px dashed #FF6600; border-radius: 10px; padding: 20px; background-color: #fff9f2;">
	<h2 style="color: #FF6600;">Your booking was approved</h2>
	<p style="font-size: 16px; color: #555;">Hi {{.customer_name}},</p>
	<p style="font-size: 16px; color: #555;">{{if .artist_name}}{{.artist_name}}{{else}}The artist{{end}} accepted booking <b>{{.booking_uuid}}</b>.</p>
	<p style="font-size: 16px; color: #555;">Complete the payment of <b>{{.payable_amount}}</b> to confirm it.</p>
</div>`)),
	},
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender renders HTML templates and delivers them over SMTP.
type EmailSender struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
	log      *logger.Logger
}

func NewEmailSender(cfg config.SMTPConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, sendMail: smtp.SendMail, log: log}
}

func (s *EmailSender) Send(ctx context.Context, recipients []string, template string, vars map[string]string) error {
	if len(recipients) == 0 {
		return nil
	}

	msg, err := s.render(recipients, template, vars)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.sendMail(addr, auth, s.cfg.From, recipients, msg); err != nil {
		s.log.Error("EMAIL", fmt.Sprintf("Failed to send %s to %v: %v", template, recipients, err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("EMAIL", fmt.Sprintf("Sent %s to %s", template, strings.Join(recipients, ", ")))
	return nil
}

// HandleEvent delivers a notification read from the notification topic.
func (s *EmailSender) HandleEvent(event *models.NotificationEvent) error {
	return s.Send(context.Background(), event.Recipients, event.Template, event.Variables)
}

func (s *EmailSender) render(recipients []string, name string, vars map[string]string) ([]byte, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, vars); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", tmpl.subject)
	msg.WriteString("MIME-version: 1.0;\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
