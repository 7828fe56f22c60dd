package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/NicolasHaas/telechat/pkg/credentials"
	"github.com/NicolasHaas/telechat/pkg/logging"
	"github.com/NicolasHaas/telechat/pkg/model"
	"github.com/NicolasHaas/telechat/pkg/server"
	"github.com/NicolasHaas/telechat/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()
	if err := server.LoadEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "TCP bind address for telnet clients")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP bind address for /metrics, /healthz and /channels (empty to disable)")
	flag.StringVar(&cfg.ChannelsFile, "channels-file", cfg.ChannelsFile, "YAML file defining channels (default: public, movies)")
	flag.StringVar(&cfg.Credentials, "credentials", cfg.Credentials, "Credential backend: memory or sqlite")
	flag.IntVar(&cfg.MaxLineLength, "max-line", cfg.MaxLineLength, "Longest accepted input line in bytes")
	flag.IntVar(&cfg.OutboxSize, "outbox-size", cfg.OutboxSize, "Frames queued per connection before dropping")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: "+logging.LevelNames())
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	flag.BoolVar(&cfg.ExportChannels, "export-channels", false, "Print the effective channels as YAML and exit")
	flag.BoolVarP(&cfg.ShowVersion, "version", "v", false, "Print version and exit")
	flag.Parse()

	if cfg.ShowVersion {
		fmt.Println(version.Name, version.Full())
		return
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	channels := model.DefaultChannels()
	if cfg.ChannelsFile != "" {
		loaded, err := server.LoadChannelsFile(cfg.ChannelsFile)
		if err != nil {
			slog.Error("load channels", "file", cfg.ChannelsFile, "err", err)
			os.Exit(1)
		}
		channels = loaded
	}

	// Handle export command (run and exit)
	if cfg.ExportChannels {
		data, err := server.ExportChannelsYAML(channels)
		if err != nil {
			slog.Error("export channels", "err", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	creds, err := credentials.Open(cfg.Credentials)
	if err != nil {
		slog.Error("open credentials", "err", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, server.Dependencies{Credentials: creds, Channels: channels})
	if err != nil {
		_ = creds.Close()
		slog.Error("create server", "err", err)
		os.Exit(1)
	}

	slog.Info("starting telechat", "version", version.Full())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
