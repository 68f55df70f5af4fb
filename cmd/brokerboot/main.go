// Package main implements the brokerboot command, which loads broker
// configuration, provisions the AMQP components that are not already
// supplied, and optionally checks connectivity and serves metrics and health.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/brokerboot/amqpclient"
	"github.com/c360/brokerboot/component"
	"github.com/c360/brokerboot/componentregistry"
	"github.com/c360/brokerboot/config"
	"github.com/c360/brokerboot/health"
	"github.com/c360/brokerboot/metric"
	"github.com/c360/brokerboot/pkg/retry"
	"github.com/c360/brokerboot/provision"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "brokerboot"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg, logger, shouldExit, err := initializeCLI(args)
	if shouldExit || err != nil {
		return err
	}

	props, err := loadProperties(cliCfg.ConfigPaths)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		return validateConfiguration(props, logger)
	}

	metricsRegistry := metric.NewMetricsRegistry()
	if err := registerBuildInfo(metricsRegistry); err != nil {
		return err
	}
	monitor := health.NewMonitor(appName, metricsRegistry.CoreMetrics())

	registry := component.NewRegistry()
	report, err := provisionComponents(registry, props, metricsRegistry, logger)
	monitor.Update(health.CheckProvisioning, health.FromReport(report, err))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cliCfg.Ping && !report.Bypassed {
		status := pingBroker(ctx, registry, cliCfg.PingTimeout, cliCfg.PingAttempts, logger)
		monitor.Update(health.CheckBroker, status)
		if status.IsUnhealthy() && cliCfg.HTTPPort == 0 {
			return fmt.Errorf("broker check failed: %s", status.Message)
		}
	}

	if cliCfg.HTTPPort == 0 {
		return nil
	}

	return serveUntilSignal(ctx, cliCfg, metricsRegistry, monitor, logger)
}

// initializeCLI parses flags and sets up logging
func initializeCLI(args []string) (*CLIConfig, *slog.Logger, bool, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	cliCfg, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, true, nil
		}
		return nil, nil, false, fmt.Errorf("parse flags: %w", err)
	}

	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp(fs)
		return nil, nil, true, nil
	}

	logger := setupLogger(os.Stdout, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting brokerboot",
		"version", Version,
		"build_time", BuildTime,
		"config_paths", cliCfg.ConfigPaths)

	return cliCfg, logger, false, nil
}

// loadProperties merges the configuration layers and environment overrides
func loadProperties(paths []string) (config.Properties, error) {
	loader := config.NewLoader()
	for _, path := range paths {
		loader.AddLayer(path)
	}

	props, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return props, nil
}

// validateConfiguration resolves the connection settings without provisioning
func validateConfiguration(props config.Properties, logger *slog.Logger) error {
	cfg, err := config.Resolve(props)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Configuration is valid",
		"host", cfg.Host,
		"port", cfg.Port,
		"username_set", cfg.Username.Valid,
		"password_set", cfg.Password.Valid,
		"dynamic", cfg.Dynamic)
	return nil
}

func registerBuildInfo(registry *metric.MetricsRegistry) error {
	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "brokerboot",
		Name:      "build_info",
		Help:      "Build information",
	}, []string{"version", "build_time"})
	buildInfo.WithLabelValues(Version, BuildTime).Set(1)

	return registry.Register(appName, "build_info", buildInfo)
}

func provisionComponents(
	registry *component.Registry,
	props config.Properties,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) (provision.Report, error) {
	provisioner, err := componentregistry.NewProvisioner(
		provision.WithLogger(logger),
		provision.WithMetrics(metricsRegistry),
	)
	if err != nil {
		return provision.Report{}, err
	}

	report, err := provisioner.Provision(registry, props)
	if err != nil {
		return report, fmt.Errorf("provision components: %w", err)
	}

	if report.Bypassed {
		logger.Warn("Broker components not provisioned", "reason", report.Reason)
	}
	return report, nil
}

// pingBroker opens and closes one connection through the registered factory.
// Transient dial failures are retried up to attempts times within timeout.
func pingBroker(
	ctx context.Context,
	registry *component.Registry,
	timeout time.Duration,
	attempts int,
	logger *slog.Logger,
) health.Status {
	connector, err := component.Resolve[amqpclient.Connector](registry, component.RoleConnectionFactory)
	if err != nil {
		return health.FromPing("", err)
	}

	address := "application-supplied connection factory"
	if factory, ok := connector.(*amqpclient.ConnectionFactory); ok {
		address = factory.Address()
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = attempts

	err = retry.Do(pingCtx, retryCfg, func(ctx context.Context) error {
		conn, err := connector.Dial(ctx)
		if err != nil {
			logger.Debug("Broker dial attempt failed", "address", address, "error", err)
			return err
		}
		return conn.Close()
	})
	if err != nil {
		logger.Error("Broker connectivity check failed", "address", address, "error", err)
		return health.FromPing(address, err)
	}

	logger.Info("Broker reachable", "address", address)
	return health.FromPing(address, nil)
}

// serveUntilSignal exposes /metrics and /healthz until SIGINT or SIGTERM
func serveUntilSignal(
	ctx context.Context,
	cliCfg *CLIConfig,
	metricsRegistry *metric.MetricsRegistry,
	monitor *health.Monitor,
	logger *slog.Logger,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	server := metric.NewServer(cliCfg.HTTPPort, "/metrics", metricsRegistry)
	server.Handle("/healthz", monitor.Handler())
	server.SetLogger(logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	logger.Info("Serving metrics and health", "address", server.Addr())

	<-signalCtx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("brokerboot shutdown complete")
	return nil
}
