// Package notify delivers teacher messages over the configured channel.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

// LogMessenger only writes messages to the log. Used when no channel is configured.
type LogMessenger struct {
	logger *zap.Logger
}

// NewLogMessenger constructs a LogMessenger.
func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMessenger{logger: logger}
}

// DeliverTeacherMessage logs the message.
func (m *LogMessenger) DeliverTeacherMessage(_ context.Context, msg models.TeacherMessage) error {
	m.logger.Info("teacher message",
		zap.String("message_id", msg.ID),
		zap.Int("teacher_id", msg.TeacherID),
		zap.String("teacher", msg.TeacherName),
		zap.Int("length", len(msg.Body)),
	)
	return nil
}
