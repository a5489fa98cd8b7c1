package delivery

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/onboard/pkg/slogx"
)

// LogSender writes codes to the log. Only meant for local development.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) SendOTP(ctx context.Context, destination, code string) error {
	log := s.Logger
	if log == nil {
		log = slogx.FromContext(ctx)
	}
	log.InfoContext(ctx, "otp issued",
		slog.String("destination", destination),
		slog.String("code", code),
	)
	return nil
}
