package onboardsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stub serves a single canned response and records the request it got.
type stub struct {
	mu     sync.Mutex
	method string
	path   string
	body   map[string]any

	status   int
	response string
}

func (s *stub) server(t *testing.T) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.method = r.Method
		s.path = r.URL.Path
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &s.body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.response)
	}))
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/")
}

func (s *stub) last() (method, path string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method, s.path, s.body
}

func TestNewSDKClientTrimsSlash(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("https://onboard.example.com/")
	require.Equal(t, "https://onboard.example.com", c.BaseURL)
	require.NotNil(t, c.HTTPClient)
	require.Equal(t, "https://onboard.example.com/livez", c.url("/livez"))
}

func TestRegister(t *testing.T) {
	t.Parallel()

	s := &stub{status: http.StatusCreated, response: `{"user_id":"u1","owner_id":"o1"}`}
	client := s.server(t)

	res, err := client.Register(context.Background(), RegisterRequest{
		BusinessEmail: "owner@example.com",
		Phone:         "0400111222",
		Password:      "pw",
		BusinessName:  "Corner Bistro",
	})
	require.NoError(t, err)
	require.Equal(t, "u1", res.UserID)
	require.Equal(t, "o1", res.OwnerID)

	method, path, body := s.last()
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/v1/owners/register", path)
	require.Equal(t, "owner@example.com", body["business_email"])
	require.NotContains(t, body, "referral_code", "empty referral code is omitted")
}

func TestRequestPaths(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(c *SDKClient) error
		response string
		path     string
	}{
		{
			name: "verify otp",
			call: func(c *SDKClient) error {
				_, err := c.VerifyOTP(ctx, "owner@example.com", "1234")
				return err
			},
			response: `{"user_id":"u1","owner_id":"o1","message":"ok"}`,
			path:     "/v1/owners/verify-otp",
		},
		{
			name:     "resend otp",
			call:     func(c *SDKClient) error { return c.ResendOTP(ctx, "owner@example.com") },
			response: `{"message":"sent"}`,
			path:     "/v1/owners/resend-otp",
		},
		{
			name:     "forgot password",
			call:     func(c *SDKClient) error { return c.ForgotPassword(ctx, "owner@example.com") },
			response: `{"message":"sent"}`,
			path:     "/v1/password/forgot",
		},
		{
			name: "verify reset otp",
			call: func(c *SDKClient) error {
				_, err := c.VerifyResetOTP(ctx, "owner@example.com", "1234")
				return err
			},
			response: `{"reset_token":"t","expires_in":600}`,
			path:     "/v1/password/verify-otp",
		},
		{
			name:     "reset password",
			call:     func(c *SDKClient) error { return c.ResetPassword(ctx, "t", "new") },
			response: `{"message":"done"}`,
			path:     "/v1/password/reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &stub{status: http.StatusOK, response: tt.response}
			require.NoError(t, tt.call(s.server(t)))
			method, path, _ := s.last()
			require.Equal(t, http.MethodPost, method)
			require.Equal(t, tt.path, path)
		})
	}
}

func TestVerifyResetOTPDecodesTicket(t *testing.T) {
	t.Parallel()

	s := &stub{status: http.StatusOK, response: `{"reset_token":"abc","expires_in":600}`}
	ticket, err := s.server(t).VerifyResetOTP(context.Background(), "owner@example.com", "1234")
	require.NoError(t, err)
	require.Equal(t, "abc", ticket.ResetToken)
	require.Equal(t, 600, ticket.ExpiresIn)
	_, _, body := s.last()
	require.Equal(t, "owner@example.com", body["email"])
	require.Equal(t, "1234", body["otp"])
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	t.Run("structured error", func(t *testing.T) {
		t.Parallel()

		s := &stub{
			status:   http.StatusBadRequest,
			response: `{"error":"otp_expired","error_description":"Your OTP has expired. Please request a new one."}`,
		}
		_, err := s.server(t).VerifyOTP(context.Background(), "owner@example.com", "1234")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, ErrorCodeOTPExpired, apiErr.Code)
		require.Equal(t, "otp_expired: Your OTP has expired. Please request a new one.", apiErr.Error())
		require.True(t, IsCode(err, ErrorCodeOTPExpired))
		require.False(t, IsCode(err, ErrorCodeOTPMismatch))
	})

	t.Run("unstructured error", func(t *testing.T) {
		t.Parallel()

		s := &stub{status: http.StatusBadGateway, response: `<html>bad gateway</html>`}
		err := s.server(t).ResendOTP(context.Background(), "owner@example.com")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Equal(t, ErrorCodeServerError, apiErr.Code)
		require.Contains(t, apiErr.Description, "502")
	})

	t.Run("unexpected success status", func(t *testing.T) {
		t.Parallel()

		// Register expects 201 Created.
		s := &stub{status: http.StatusOK, response: `{"user_id":"u1","owner_id":"o1"}`}
		_, err := s.server(t).Register(context.Background(), RegisterRequest{})
		require.Error(t, err)
	})
}

func TestIsCodeIgnoresOtherErrors(t *testing.T) {
	t.Parallel()

	require.False(t, IsCode(nil, ErrorCodeServerError))
	require.False(t, IsCode(errors.New("boom"), ErrorCodeServerError))

	wrapped := fmt.Errorf("verify: %w", &APIError{Code: ErrorCodeOTPMismatch})
	require.True(t, IsCode(wrapped, ErrorCodeOTPMismatch))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := &stub{
		status:   http.StatusOK,
		response: `{"status":"ok","uptime":"1s","version":"v0.1.0","checks":{"database":"ok","signer":"ok"}}`,
	}
	client := s.server(t)

	health, err := client.GetReadiness(context.Background())
	require.NoError(t, err)
	method, path, _ := s.last()
	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "/readyz", path)
	require.Equal(t, "ok", health.Checks.Database)

	health, err = client.GetLiveness(context.Background())
	require.NoError(t, err)
	_, path, _ = s.last()
	require.Equal(t, "/livez", path)
	require.Equal(t, "v0.1.0", health.Version)
}
