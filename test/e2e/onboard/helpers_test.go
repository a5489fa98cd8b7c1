package onboard_test

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/onboard/pkg/onboardsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for onboard service end-to-end tests.
 * The service runs with the log delivery driver, so codes are read back from
 * the container logs.
 */

const (
	testImageName = "onboard-test:latest"

	ownerPassword = "Sup3rSecret!"
	ownerPhone    = "0400111222"
	businessName  = "Corner Bistro"
)

// TestMain builds the Docker image once before all tests and cleans it up
// after all tests complete.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stdout, "skipping onboard e2e tests in short mode")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building Onboard Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Onboard Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/onboard/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// onboardContainer is a running service plus access to its logs.
type onboardContainer struct {
	testcontainers.Container
	BaseURL string
}

// setupOnboardContainer starts the service with relaxed rate limits.
func setupOnboardContainer(t *testing.T) *onboardContainer {
	t.Helper()
	return startContainer(t, map[string]string{
		// Tests make many rapid requests which would otherwise hit the strict production limits
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	})
}

// setupOnboardContainerWithDefaultRateLimits starts the service with the
// production rate limits. Only the rate limit tests should use it.
func setupOnboardContainerWithDefaultRateLimits(t *testing.T) *onboardContainer {
	t.Helper()
	return startContainer(t, nil)
}

func startContainer(t *testing.T, extraEnv map[string]string) *onboardContainer {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"ONBOARD_ISSUER":     "onboard-e2e",
		"ONBOARD_OTP_DIGITS": "6",
		"DELIVERY_DRIVER":    "log",
		"ENV":                "test",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &onboardContainer{
		Container: container,
		BaseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
	}
}

// otpLogLine is the subset of the log sender's JSON record we need.
type otpLogLine struct {
	Msg         string `json:"msg"`
	Destination string `json:"destination"`
	Code        string `json:"code"`
}

// codesFor returns every code logged for destination, oldest first.
func (c *onboardContainer) codesFor(t *testing.T, destination string) []string {
	t.Helper()

	logs, err := c.Logs(context.Background())
	require.NoError(t, err)
	defer logs.Close()

	var codes []string
	scanner := bufio.NewScanner(logs)
	for scanner.Scan() {
		var line otpLogLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Msg == "otp issued" && line.Destination == destination {
			codes = append(codes, line.Code)
		}
	}
	return codes
}

// waitForCode waits until the n-th code (1-based) for destination has been
// logged and returns it.
func (c *onboardContainer) waitForCode(t *testing.T, destination string, n int) string {
	t.Helper()

	var code string
	require.Eventually(t, func() bool {
		codes := c.codesFor(t, destination)
		if len(codes) < n {
			return false
		}
		code = codes[n-1]
		return true
	}, 10*time.Second, 100*time.Millisecond, "code %d for %s was never logged", n, destination)
	return code
}

// registerOwner registers an owner and returns the response.
func registerOwner(t *testing.T, client *onboardsdk.SDKClient, email string) *onboardsdk.RegisterResponse {
	t.Helper()

	res, err := client.Register(t.Context(), onboardsdk.RegisterRequest{
		BusinessEmail: email,
		Phone:         ownerPhone,
		Password:      ownerPassword,
		BusinessName:  businessName,
	})
	require.NoError(t, err, "Registration should succeed")
	require.NotEmpty(t, res.UserID, "User ID should not be empty")
	require.NotEmpty(t, res.OwnerID, "Owner ID should not be empty")
	return res
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *onboardsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertAPIError verifies err is an API error with the given code.
func assertAPIError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, onboardsdk.IsCode(err, code), "expected %s, got: %v", code, err)
}
