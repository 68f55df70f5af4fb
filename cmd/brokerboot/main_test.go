package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/errors"
	"github.com/c360/brokerboot/health"
	"github.com/c360/brokerboot/testutil"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(newFlagSet(), []string{
		"-config", "base.properties, prod.yaml",
		"-log-level", "debug",
		"-http-port", "9090",
		"-ping",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"base.properties", "prod.yaml"}, cfg.ConfigPaths)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.True(t, cfg.Ping)
	assert.Equal(t, 10*time.Second, cfg.PingTimeout)
	assert.Equal(t, 3, cfg.PingAttempts)
}

func TestParseFlags_Env(t *testing.T) {
	t.Setenv("BROKERBOOT_CONFIG", "a.yaml")
	t.Setenv("BROKERBOOT_HTTP_PORT", "8081")
	t.Setenv("BROKERBOOT_PING", "true")

	cfg, err := parseFlags(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.yaml"}, cfg.ConfigPaths)
	assert.Equal(t, 8081, cfg.HTTPPort)
	assert.True(t, cfg.Ping)
}

func TestSplitConfigPaths(t *testing.T) {
	assert.Nil(t, splitConfigPaths(""))
	assert.Nil(t, splitConfigPaths(" , "))
	assert.Equal(t, []string{"a", "b"}, splitConfigPaths("a,,b "))
}

func TestValidateFlags(t *testing.T) {
	existing := writeConfig(t, "broker.properties", "")

	valid := func() *CLIConfig {
		return &CLIConfig{
			ConfigPaths:  []string{existing},
			LogLevel:     "info",
			LogFormat:    "json",
			PingTimeout:  time.Second,
			PingAttempts: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{"valid", func(*CLIConfig) {}, ""},
		{"missing file", func(c *CLIConfig) { c.ConfigPaths = []string{"/nonexistent/broker.yaml"} }, "config file not found"},
		{"bad level", func(c *CLIConfig) { c.LogLevel = "trace" }, "invalid log level"},
		{"bad format", func(c *CLIConfig) { c.LogFormat = "xml" }, "invalid log format"},
		{"bad port", func(c *CLIConfig) { c.HTTPPort = 70000 }, "invalid http port"},
		{"bad ping timeout", func(c *CLIConfig) { c.Ping = true; c.PingTimeout = 0 }, "invalid ping timeout"},
		{"bad ping attempts", func(c *CLIConfig) { c.Ping = true; c.PingAttempts = 0 }, "invalid ping attempts"},
		{"version skips checks", func(c *CLIConfig) { c.ShowVersion = true; c.LogLevel = "trace" }, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.mutate(cfg)
			err := validateFlags(cfg)
			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "service=brokerboot")
}

func TestRun_Validate(t *testing.T) {
	path := writeConfig(t, "broker.properties", "messaging.broker.host=broker1\nmessaging.broker.port=5673\n")
	assert.NoError(t, run([]string{"-config", path, "-validate", "-log-level", "error"}))
}

func TestRun_ValidateRejectsMalformedPort(t *testing.T) {
	path := writeConfig(t, "broker.yaml", "messaging:\n  broker:\n    port: abc\n")

	err := run([]string{"-config", path, "-validate", "-log-level", "error"})
	require.Error(t, err)

	ce, ok := errors.AsConfigurationError(err)
	require.True(t, ok)
	assert.Equal(t, config.KeyPort, ce.Key)
}

func TestRun_ProvisionsWithoutServing(t *testing.T) {
	path := writeConfig(t, "broker.json", `{"messaging": {"broker": {"dynamic": false}}}`)
	assert.NoError(t, run([]string{"-config", path, "-log-level", "error"}))
}

func TestRun_MalformedConfigFails(t *testing.T) {
	path := writeConfig(t, "broker.properties", "messaging.broker.dynamic=sometimes\n")

	err := run([]string{"-config", path, "-log-level", "error"})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.True(t, strings.Contains(err.Error(), config.KeyDynamic))
}

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run([]string{"-version"}))
}

func TestPingBroker_Unreachable(t *testing.T) {
	registry := component.NewRegistry()
	props := config.Properties{config.KeyHost: "127.0.0.1", config.KeyPort: "1"}

	_, err := provisionComponents(registry, props, nil, setupLogger(io.Discard, "error", "json"))
	require.NoError(t, err)

	status := pingBroker(context.Background(), registry, 2*time.Second, 2, setupLogger(io.Discard, "error", "json"))
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, health.CheckBroker, status.Component)
}

func TestPingBroker_NoFactory(t *testing.T) {
	status := pingBroker(context.Background(), component.NewRegistry(), time.Second, 1, setupLogger(io.Discard, "error", "json"))
	assert.True(t, status.IsUnhealthy())
}

func TestPingBroker_RetriesTransientFailures(t *testing.T) {
	registry := component.NewRegistry()
	refused := errors.WrapTransient(stderrors.New("connection refused"), "test", "Dial", "open connection")
	connector := testutil.FailingConnector("app", refused)
	require.NoError(t, registry.Register(component.RoleConnectionFactory, connector))

	status := pingBroker(context.Background(), registry, 5*time.Second, 3, setupLogger(io.Discard, "error", "json"))
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, 3, connector.DialCalls())
}

func TestPingBroker_DoesNotRetryInvalidFailures(t *testing.T) {
	registry := component.NewRegistry()
	refused := errors.WrapInvalid(stderrors.New("access refused"), "test", "Dial", "authenticate")
	connector := testutil.FailingConnector("app", refused)
	require.NoError(t, registry.Register(component.RoleConnectionFactory, connector))

	status := pingBroker(context.Background(), registry, 5*time.Second, 3, setupLogger(io.Discard, "error", "json"))
	assert.True(t, status.IsUnhealthy())
	assert.Equal(t, 1, connector.DialCalls())
}
