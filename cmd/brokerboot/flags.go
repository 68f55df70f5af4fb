package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPaths     []string
	LogLevel        string
	LogFormat       string
	HTTPPort        int
	Ping            bool
	PingTimeout     time.Duration
	PingAttempts    int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	var configPaths string

	fs.StringVar(&configPaths, "config",
		getEnv("BROKERBOOT_CONFIG", ""),
		"Comma-separated configuration files, later files override earlier ones (env: BROKERBOOT_CONFIG)")

	fs.StringVar(&configPaths, "c",
		getEnv("BROKERBOOT_CONFIG", ""),
		"Shorthand for -config")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("BROKERBOOT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: BROKERBOOT_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("BROKERBOOT_LOG_FORMAT", "json"),
		"Log format: json, text (env: BROKERBOOT_LOG_FORMAT)")

	fs.IntVar(&cfg.HTTPPort, "http-port",
		getEnvInt("BROKERBOOT_HTTP_PORT", 0),
		"Port for /metrics and /healthz, 0 to disable (env: BROKERBOOT_HTTP_PORT)")

	fs.BoolVar(&cfg.Ping, "ping",
		getEnvBool("BROKERBOOT_PING", false),
		"Open one connection through the registered factory after provisioning (env: BROKERBOOT_PING)")

	fs.DurationVar(&cfg.PingTimeout, "ping-timeout",
		getEnvDuration("BROKERBOOT_PING_TIMEOUT", 10*time.Second),
		"Broker connectivity check timeout (env: BROKERBOOT_PING_TIMEOUT)")

	fs.IntVar(&cfg.PingAttempts, "ping-attempts",
		getEnvInt("BROKERBOOT_PING_ATTEMPTS", 3),
		"Connection attempts for the broker check, retried only on transient failures (env: BROKERBOOT_PING_ATTEMPTS)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("BROKERBOOT_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: BROKERBOOT_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.ConfigPaths = splitConfigPaths(configPaths)
	return cfg, nil
}

func splitConfigPaths(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	for _, path := range cfg.ConfigPaths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file not found: %s", path)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", cfg.HTTPPort)
	}

	if cfg.Ping && cfg.PingTimeout <= 0 {
		return fmt.Errorf("invalid ping timeout: %v", cfg.PingTimeout)
	}

	if cfg.Ping && cfg.PingAttempts < 1 {
		return fmt.Errorf("invalid ping attempts: %d", cfg.PingAttempts)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet) {
	_, _ = fmt.Fprintf(fs.Output(), `%s - conditional AMQP component provisioning

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(fs.Output(), `
Configuration keys (files or MESSAGING_BROKER_* environment variables):
  messaging.broker.host      broker host (default localhost)
  messaging.broker.port      broker port (default 5672)
  messaging.broker.username  username (client default guest)
  messaging.broker.password  password (client default guest)
  messaging.broker.dynamic   create an admin handle (default true)

Examples:
  # Provision from a properties file and check the broker
  %s --config=broker.properties --ping

  # Layer an environment-specific YAML file over a base file
  %s --config=base.properties,prod.yaml

  # Serve metrics and health while running
  %s --config=broker.yaml --http-port=9090

  # Validate configuration only
  %s --config=broker.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
