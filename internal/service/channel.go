package service

import (
	"context"
	"log/slog"
)

// LogChannel is the default external delivery surface: due-date changes
// land in the structured log. A chat webhook or email bridge can replace
// it without touching the recorder.
type LogChannel struct {
	Logger *slog.Logger
}

func (c LogChannel) Send(ctx context.Context, msg string) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "channel_delivery", "message", msg)
	return nil
}
