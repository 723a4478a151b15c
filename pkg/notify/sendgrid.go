package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendFunc performs a SendGrid API request.
type SendFunc func(rest.Request) (*rest.Response, error)

// SendGridMessenger emails teacher messages through SendGrid.
type SendGridMessenger struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	send       SendFunc
	logger     *zap.Logger
}

// SendGridConfig configures the SendGrid messenger.
type SendGridConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
	Send      SendFunc
	Logger    *zap.Logger
}

// NewSendGridMessenger constructs a SendGrid backed messenger.
func NewSendGridMessenger(cfg SendGridConfig) *SendGridMessenger {
	send := cfg.Send
	if send == nil {
		send = sendgrid.API
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Head of Department"
	}
	return &SendGridMessenger{
		key:        cfg.APIKey,
		from:       sgmail.NewEmail(fromName, cfg.FromEmail),
		subjPrefix: "[" + fromName + "] ",
		send:       send,
		logger:     logger,
	}
}

// DeliverTeacherMessage emails msg to the teacher. Teachers without an address cannot be reached.
func (m *SendGridMessenger) DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) error {
	if strings.TrimSpace(msg.TeacherEmail) == "" {
		return fmt.Errorf("teacher %d has no email address", msg.TeacherID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := m.send(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	m.logger.Debug("teacher message emailed", zap.String("message_id", msg.ID), zap.Int("status", res.StatusCode))
	return nil
}

func (m *SendGridMessenger) prepare(msg models.TeacherMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + "Message for " + msg.TeacherName
	p.AddTos(sgmail.NewEmail(msg.TeacherName, msg.TeacherEmail))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(m.from)
	mail.AddPersonalizations(p)
	mail.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return mail
}
