// Copyright 2025, the DetectFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
DetectFE is a web frontend for a YOLO object detection and annotation backend.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/detectfe/detectfe/config"
	"codeberg.org/detectfe/detectfe/core"
	"codeberg.org/detectfe/detectfe/core/audit"
	"codeberg.org/detectfe/detectfe/core/requests"
	"codeberg.org/detectfe/detectfe/core/requests/lrucache"
	"codeberg.org/detectfe/detectfe/i18n"
	"codeberg.org/detectfe/detectfe/server/assets"
	"codeberg.org/detectfe/detectfe/server/pages"
	"codeberg.org/detectfe/detectfe/server/router"
	"codeberg.org/detectfe/detectfe/server/routes"
	"codeberg.org/detectfe/detectfe/server/utils"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 60 * time.Second
	idleTimeout       time.Duration = 30 * time.Second

	// writeSlack is added to the backend timeout so slow detections and
	// training calls can still be answered.
	writeSlack time.Duration = 10 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second
)

var errChmodSocket = errors.New("failed to change unix socket permissions")

// embeddedContent holds our static web server content.
//
//go:embed assets/css assets/robots.txt
//go:embed all:po
var embeddedContent embed.FS

// init assigns the embedded filesystem to the exported assets.FS variable.
//
//nolint:gochecknoinits // this is a good use of init()
func init() {
	assets.FS = embeddedContent
}

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := i18n.Setup(embeddedContent, config.Global.Internationalization.StrictMissingKeys); err != nil {
		return fmt.Errorf("failed to initialize i18n engine: %w", err)
	}

	log.Info().Msg("Initialized i18n engine")

	handler, err := newHandler(&config.Global)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      config.Global.Backend.Timeout + writeSlack,
		IdleTimeout:       idleTimeout,
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	go func() {
		listener, err := chooseListener()
		if err != nil {
			serverErrors <- fmt.Errorf("failed to create listener: %w", err)

			return
		}

		serverErrors <- server.Serve(listener)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until a shutdown signal or a server error is received
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case s := <-quit:
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)

		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

// newHandler wires the backend client, the route table and the router for cfg.
func newHandler(cfg *config.ServerConfig) (http.Handler, error) {
	opts := []requests.ClientOption{requests.WithHTTPClient(utils.HTTPClient)}

	if cfg.Cache.Enabled {
		cache, err := lrucache.New(cfg.Cache.Size, cfg.Cache.TTL, cfg.Cache.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}

		opts = append(opts, requests.WithCache(cache))
	}

	client, err := requests.NewClient(requests.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		RateBurst: cfg.Backend.RateBurst,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	table, err := pages.NewTable(routes.Loaders(core.NewAPI(client)))
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}

	r := router.NewRouter()
	r.DefineRoutes(table, client)
	r.RegisterMiddleware()

	return r, nil
}

func chooseListener() (net.Listener, error) {
	// Check if we should use a Unix domain socket
	if config.Global.Basic.UnixSocket != "" {
		unixAddr := config.Global.Basic.UnixSocket

		unixListener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", unixAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to start Unix socket listener on %v: %w", unixAddr, err)
		}

		if err := os.Chmod(unixAddr, config.Global.Basic.UnixSocketPermissions); err != nil {
			_ = unixListener.Close()

			return nil, fmt.Errorf("%w: %w", errChmodSocket, err)
		}

		log.Info().
			Str("address", unixAddr).
			Msg("Listening on Unix domain socket")

		return unixListener, nil
	}

	// Otherwise, fall back to TCP listener
	addr := net.JoinHostPort(config.Global.Basic.Host, config.Global.Basic.Port)

	tcpListener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	log.Info().
		Str("address", addr).
		Str("port", port).
		Str("url", fmt.Sprintf("http://localhost:%v/", port)).
		Str("backend", config.Global.Backend.BaseURL).
		Msg("Listening on address")

	return tcpListener, nil
}
