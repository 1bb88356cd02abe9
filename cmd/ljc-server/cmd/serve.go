package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"
	"github.com/spf13/cobra"

	"github.com/snowcode-jp/ljc-server/internal/config"
	"github.com/snowcode-jp/ljc-server/internal/hub"
	"github.com/snowcode-jp/ljc-server/internal/httpserver"
	"github.com/snowcode-jp/ljc-server/internal/localip"
	"github.com/snowcode-jp/ljc-server/internal/mountctl"
	"github.com/snowcode-jp/ljc-server/internal/tlsmaterial"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	configureLogging(cfg)

	h := hub.New()

	localIP, err := localip.Detect()
	if err != nil {
		return fmt.Errorf("detect LAN IP: %w", err)
	}

	tlsConfig, err := tlsmaterial.Load(localIP)
	if err != nil {
		return fmt.Errorf("load TLS material: %w", err)
	}

	mounts := mountctl.NewHandlers(h, cfg)
	router := httpserver.NewRouter(h, mounts)
	server := httpserver.New(cfg.Bind, cfg.Port, cfg.TLSPort(), router, tlsConfig)

	printBanner(cfg, h.Token(), localIP)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return server.Run(ctx)
}

func configureLogging(cfg *config.Config) {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func printBanner(cfg *config.Config, token, localIP string) {
	allowedBase, err := cfg.ExpandedAllowedMountBase()
	if err != nil {
		allowedBase = cfg.AllowedMountBase
	}

	fmt.Printf(`ljc-server listening on %s
  WebSocket:     ws://%s:%d/ws  (wss://%s:%d/ws)
  API base:      http://%s:%d/api  (https://%s:%d/api)
  WebDAV base:   http://%s:%d/webdav/{client-id}
  Bearer token:  %s
  Allowed mount base: %s
`,
		cfg.Bind,
		localIP, cfg.Port, localIP, cfg.TLSPort(),
		localIP, cfg.Port, localIP, cfg.TLSPort(),
		localIP, cfg.Port,
		token,
		allowedBase,
	)
}
