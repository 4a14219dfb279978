package notify

import (
	"context"
	"fmt"
	"strings"

	"booking-service/internal/logger"
)

// LogSender only logs notifications. Used when SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, recipients []string, template string, vars map[string]string) error {
	s.log.Info("NOTIFY", fmt.Sprintf("%s -> %s %v", template, strings.Join(recipients, ", "), vars))
	return nil
}
