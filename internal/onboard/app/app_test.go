package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/delivery"
	"github.com/aussiebroadwan/onboard/pkg/cryptox"
	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		Issuer:                "onboard-test",
		DatabaseDriver:        DriverSQLite,
		DatabaseFile:          filepath.Join(dir, "onboard.db"),
		PepperFile:            filepath.Join(dir, "pepper"),
		PasswordHashAlgorithm: cryptox.AlgorithmBcrypt,
		TicketKeyFile:         filepath.Join(dir, "ticket.pem"),
		OTPDigits:             4,
		OTPTTL:                5 * time.Minute,
		ResetTicketTTL:        10 * time.Minute,
		Delivery:              delivery.Config{Driver: delivery.DriverLog},
		Env:                   "test",
		LogLevel:              "error",
		LogFormat:             "text",
		ShutdownGracePeriod:   time.Second,
		HousekeepingInterval:  time.Hour,
		OTPRetention:          24 * time.Hour,
	}
}

func TestApplicationServesRoutes(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(cfg)
	require.NoError(t, err)
	app.housekeepingService.Start()

	srv := httptest.NewServer(app.Handler())
	client := onboardsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	reg, err := client.Register(ctx, onboardsdk.RegisterRequest{
		BusinessEmail: "owner@example.com",
		Phone:         "0400111222",
		Password:      "Sup3rSecret!",
		BusinessName:  "Corner Bistro",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.OwnerID)

	srv.Close()
	require.NoError(t, app.Shutdown())

	require.FileExists(t, cfg.PepperFile)
	require.FileExists(t, cfg.TicketKeyFile)
}

func TestApplicationKeepsTicketKeyAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	require.NoError(t, err)
	kid := first.signer.KID()
	require.NoError(t, first.db.Close())

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.db.Close() })
	require.Equal(t, kid, second.signer.KID())
}

func TestNewRejectsUnknownDeliveryDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Delivery.Driver = "carrier-pigeon"

	_, err := New(cfg)
	require.Error(t, err)
}
