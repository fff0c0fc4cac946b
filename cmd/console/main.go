package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"

	"github.com/backdoor-game/client/internal/config"
	"github.com/backdoor-game/client/internal/connection"
	"github.com/backdoor-game/client/internal/console"
	"github.com/backdoor-game/client/internal/events"
	"github.com/backdoor-game/client/internal/telemetry"
	"github.com/backdoor-game/client/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/client.yaml", "path to config file")
	logPath := flag.String("log", "", "write logs to this file (default: discard)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal, env vars might be set directly
		_ = err
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	logOut := io.Writer(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting console",
		"version", version.Version,
		"commit", version.Commit,
		"ws_url", cfg.Server.WSURL,
	)

	ctx := context.Background()

	var tracer trace.Tracer
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			logger.Warn("telemetry setup failed, continuing without it", "error", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.Warn("telemetry shutdown failed", "error", err)
				}
			}()
			tracer = telemetry.Tracer("connection")
		}
	}

	bus := events.NewBus(logger)

	var opts []connection.Option
	if tracer != nil {
		opts = append(opts, connection.WithTracer(tracer))
	}
	manager := connection.NewManager(connection.Config{
		URL:                  cfg.Server.WSURL,
		MaxReconnectAttempts: cfg.Connection.MaxReconnectAttempts,
		HandshakeTimeout:     cfg.Connection.HandshakeTimeout,
		WriteTimeout:         cfg.Connection.WriteTimeout,
	}, bus, logger, opts...)

	p := tea.NewProgram(console.NewModel(manager), tea.WithAltScreen())
	console.Forward(bus, p.Send)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}

	manager.Disconnect("shutdown")
	logger.Info("console stopped")
}
