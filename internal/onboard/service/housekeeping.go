package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/metrics"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
)

// DefaultOTPRetention is how long an expired OTP lingers before housekeeping
// clears it.
const DefaultOTPRetention = 24 * time.Hour

// HousekeepingService periodically clears expired OTP fingerprints so stale
// codes don't sit in the users table indefinitely.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Interval  time.Duration
	Retention time.Duration

	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention < 0 {
		retention = DefaultOTPRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("otp_retention", s.Retention),
	)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup clears every OTP that expired more than Retention ago and returns
// how many users were touched.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	cutoff := nowFrom(s.Now).Add(-s.Retention)

	n, err := s.Store.Users().ClearExpiredOTPs(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to clear expired otps", slog.Any("error", err))
		return 0
	}
	s.Metrics.OTPCleared(n)

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("otps_cleared", n),
		slog.Time("cutoff", cutoff),
	)
	return n
}
