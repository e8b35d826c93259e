package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quic-moq/moqt/internal/certs"
	"github.com/quic-moq/moqt/relay"
	"github.com/quic-moq/moqt/relaysrv"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("generating self-signed certificate")
	cert, err := certs.Generate(14 * 24 * time.Hour)
	if err != nil {
		slog.Error("failed to generate cert", "error", err)
		os.Exit(1)
	}
	slog.Info("certificate generated", "fingerprint", cert.FingerprintBase64())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	addr := envOr("MOQ_ADDR", ":4443")

	slog.Info("moq-relay starting", "version", version, "addr", addr)

	srv := relaysrv.NewServer(relaysrv.ServerConfig{
		Addr:   addr,
		Cert:   cert,
		Locals: relay.NewLocals(),
	})

	if err := srv.Start(ctx); err != nil {
		slog.Error("relay server error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
