package notify

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-service/internal/config"
	"booking-service/internal/logger"
	"booking-service/internal/models"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, "error", "text")
}

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestSender(sent *[]sentMail, fail error) *EmailSender {
	s := NewEmailSender(config.SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "mailer", Password: "secret", From: "bookings@example.com"}, testLogger())
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if fail != nil {
			return fail
		}
		*sent = append(*sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return s
}

func approvalVars() map[string]string {
	return map[string]string{
		"customer_name":  "Asha <Rao>",
		"artist_name":    "Kabir Quartet",
		"booking_uuid":   "LB2405011000001234",
		"payable_amount": "17700.00",
	}
}

func TestEmailSenderRendersApprovalTemplate(t *testing.T) {
	var sent []sentMail
	s := newTestSender(&sent, nil)

	err := s.Send(context.Background(), []string{"asha@example.com"}, models.TemplateArtistBookingApproved, approvalVars())
	require.NoError(t, err)
	require.Len(t, sent, 1)

	mail := sent[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, "bookings@example.com", mail.from)
	assert.Equal(t, []string{"asha@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Payment Pending for your booking\r\n")
	assert.Contains(t, mail.msg, "LB2405011000001234")
	assert.Contains(t, mail.msg, "17700.00")
	// variables are HTML escaped
	assert.Contains(t, mail.msg, "Asha &lt;Rao&gt;")
}

func TestEmailSenderDialAddress(t *testing.T) {
	tests := []struct {
		host string
		port string
		want string
	}{
		{host: "mail.internal", port: "2525", want: "mail.internal:2525"},
		{host: "::1", port: "25", want: "[::1]:25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var addr string
			s := NewEmailSender(config.SMTPConfig{Host: tt.host, Port: tt.port, From: "bookings@example.com"}, testLogger())
			s.sendMail = func(a string, _ smtp.Auth, from string, to []string, msg []byte) error {
				addr = a
				return nil
			}

			require.NoError(t, s.Send(context.Background(), []string{"asha@example.com"}, models.TemplateArtistBookingApproved, approvalVars()))
			assert.Equal(t, tt.want, addr)
		})
	}
}

func TestEmailSenderErrors(t *testing.T) {
	var sent []sentMail

	err := newTestSender(&sent, nil).Send(context.Background(), []string{"a@example.com"}, "unknown", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	smtpErr := errors.New("421 service not available")
	err = newTestSender(&sent, smtpErr).Send(context.Background(), []string{"a@example.com"}, models.TemplateArtistBookingApproved, approvalVars())
	assert.ErrorIs(t, err, smtpErr)

	assert.NoError(t, newTestSender(&sent, nil).Send(context.Background(), nil, models.TemplateArtistBookingApproved, nil))
	assert.Empty(t, sent)
}

func TestEmailSenderHandleEvent(t *testing.T) {
	var sent []sentMail
	s := newTestSender(&sent, nil)

	err := s.HandleEvent(&models.NotificationEvent{
		ID:         "n-1",
		Recipients: []string{"asha@example.com"},
		Template:   models.TemplateArtistBookingApproved,
		Variables:  approvalVars(),
	})
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

type capturePublisher struct {
	events []*models.NotificationEvent
	err    error
}

func (p *capturePublisher) PublishNotification(event *models.NotificationEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func TestKafkaRelay(t *testing.T) {
	pub := &capturePublisher{}
	relay := NewKafkaRelay(pub)

	err := relay.Send(context.Background(), []string{"asha@example.com"}, models.TemplateArtistBookingApproved, approvalVars())
	require.NoError(t, err)
	require.Len(t, pub.events, 1)

	event := pub.events[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, models.TemplateArtistBookingApproved, event.Template)
	assert.Equal(t, []string{"asha@example.com"}, event.Recipients)
	assert.Equal(t, "Kabir Quartet", event.Variables["artist_name"])
	assert.False(t, event.Timestamp.IsZero())

	pub.err = errors.New("broker down")
	assert.Error(t, relay.Send(context.Background(), nil, models.TemplateArtistBookingApproved, nil))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(testLogger()).Send(context.Background(), []string{"a@example.com"}, "any", nil))
}
