// probe connects to the game server and streams frames to the console.
// Useful for smoke-testing connectivity and reconnect behavior without
// the interactive client.
//
// Usage: go run ./cmd/probe --config configs/client.yaml --send "look door"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/backdoor-game/client/internal/config"
	"github.com/backdoor-game/client/internal/connection"
	"github.com/backdoor-game/client/internal/events"
	"github.com/backdoor-game/client/internal/protocol"
)

func main() {
	configPath := flag.String("config", "configs/client.yaml", "path to config file")
	wsURL := flag.String("url", "", "override the configured ws_url")
	send := flag.String("send", "", "command to send after connecting, e.g. \"LOOK door\"")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := godotenv.Load(); err != nil {
		_ = err
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *wsURL != "" {
		cfg.Server.WSURL = *wsURL
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	bus := events.NewBus(logger)

	bus.On(events.Connected, func(any) {
		logger.Info("connected")
	}, nil)
	bus.On(events.Disconnected, func(any) {
		logger.Info("disconnected")
	}, nil)
	bus.On(events.Error, func(payload any) {
		if p, ok := payload.(events.ErrorPayload); ok {
			logger.Error("connection error", "message", p.Message, "cause", p.Cause)
		}
	}, nil)
	bus.On(events.Message, func(payload any) {
		f, ok := payload.(protocol.Frame)
		if !ok {
			return
		}
		if *verbose {
			fmt.Printf("[%s] %s\n", f.Type, string(f.Payload))
		} else {
			fmt.Printf("[%s]\n", f.Type)
		}
	}, nil)

	manager := connection.NewManager(connection.Config{
		URL:                  cfg.Server.WSURL,
		MaxReconnectAttempts: cfg.Connection.MaxReconnectAttempts,
		HandshakeTimeout:     cfg.Connection.HandshakeTimeout,
		WriteTimeout:         cfg.Connection.WriteTimeout,
	}, bus, logger)

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	err = manager.Connect(connectCtx)
	connectCancel()
	if err != nil {
		logger.Error("initial connect failed, retrying in background", "error", err)
	}

	if *send != "" {
		command, payload, err := parseSendFlag(*send)
		if err != nil {
			logger.Error("invalid --send value", "error", err)
			os.Exit(1)
		}
		manager.SendCommand(ctx, command, payload)
	}

	<-ctx.Done()
	manager.Disconnect("shutdown")
	logger.Info("probe stopped")
}

// parseSendFlag maps "LOOK door", "USE_ITEM key door", "TALK_TO greg"
// onto typed command payloads.
func parseSendFlag(s string) (string, any, error) {
	var command, arg1, arg2 string
	n, _ := fmt.Sscanf(s, "%s %s %s", &command, &arg1, &arg2)
	if n == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	switch command {
	case protocol.CmdLook, "look":
		return protocol.CmdLook, protocol.LookPayload{Target: arg1}, nil
	case protocol.CmdUseItem, "use":
		return protocol.CmdUseItem, protocol.UseItemPayload{Item: arg1, Target: arg2}, nil
	case protocol.CmdTalkTo, "talk":
		return protocol.CmdTalkTo, protocol.TalkToPayload{NPCID: arg1}, nil
	default:
		return command, nil, nil
	}
}
