package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/phobrla/openinsafari/internal/api"
	"github.com/phobrla/openinsafari/internal/auth"
	"github.com/phobrla/openinsafari/internal/config"
	"github.com/phobrla/openinsafari/internal/logging"
	"github.com/phobrla/openinsafari/internal/opener"
	"github.com/phobrla/openinsafari/internal/origin"
	"github.com/phobrla/openinsafari/internal/platform"
)

func main() {
	// A .env next to the binary is a dev convenience; the LaunchAgent
	// sets real environment variables.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using process environment")
	}

	filter, err := origin.NewFilter(cfg.AllowedSubnets)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid allowed subnets")
	}
	if len(filter.Ranges()) == 0 {
		logger.Warn().Msg("no allowed subnets configured, every request will be denied")
	}

	guard := auth.NewGuard(cfg.SharedToken)

	var op opener.Opener
	if cfg.DryRun {
		op = opener.NewNoop(logger)
	} else {
		op = opener.NewExec(logger, cfg.Browser, cfg.OpenTimeout)
	}

	srv := api.NewServer(logger, cfg, filter, guard, op)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Bind before announcing anything so a taken port fails fast; the
	// LaunchAgent sees the non-zero exit and restarts us.
	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", httpServer.Addr).Msg("failed to bind")
	}

	logger.Info().
		Str("version", api.Version).
		Str("addr", httpServer.Addr).
		Str("hostname", platform.Hostname()).
		Str("allowed_subnets", strings.Join(filter.Ranges(), ", ")).
		Str("token", cfg.RedactedToken()).
		Bool("dry_run", cfg.DryRun).
		Msg("relay listening")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Dur("grace", cfg.ShutdownGrace).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		// In-flight handlers get the grace period; any launch already
		// dispatched is outside this process and keeps going.
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("shutdown complete")
}
