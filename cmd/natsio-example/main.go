// natsio-example connects to a NATS server, relays a subject onto
// Kafka/Redpanda when configured, and exposes a read-only admin API.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumadb/natsio/internal/admin"
	"github.com/lumadb/natsio/internal/config"
	"github.com/lumadb/natsio/internal/kafkasink"
	"github.com/lumadb/natsio/pkg/client"
	"github.com/lumadb/natsio/pkg/natsio"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	serverAddr := flag.String("server-addr", "", "NATS server address")
	adminAddr := flag.String("admin-addr", "", "Admin API address")
	relaySubject := flag.String("relay-subject", "", "Subject to relay onto Kafka/Redpanda")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	}
	if *serverAddr != "" {
		cfg.ServerAddr = *serverAddr
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}
	if *relaySubject != "" {
		cfg.RelaySubject = *relaySubject
	}

	logger.Info("starting natsio-example",
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("admin_addr", cfg.AdminAddr),
	)

	conn, err := net.DialTimeout("tcp", cfg.ServerAddr, 5*time.Second)
	if err != nil {
		logger.Fatal("failed to dial NATS server", zap.Error(err))
	}

	errSink := make(chan string, 16)
	handle := client.Connect(conn,
		client.WithTimeouts(cfg.Timeouts()),
		client.WithLogger(logger),
		client.WithErrorSink(errSink),
	)

	go func() {
		for msg := range errSink {
			logger.Warn("server reported -ERR", zap.String("message", msg))
		}
	}()

	var relay *kafkasink.Relay
	if cfg.RelaySubject != "" && len(cfg.KafkaBrokers) > 0 {
		relay, err = kafkasink.NewRelay(logger, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Fatal("failed to create Kafka relay", zap.Error(err))
		}
		sub := handle.Subscribe(cfg.RelaySubject, natsio.SubscribeOptions{})
		go relay.Run(context.Background(), sub)
		logger.Info("relaying subject onto Kafka",
			zap.String("subject", cfg.RelaySubject),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	adminServer := admin.NewServer(handle, logger)
	httpServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminServer.Handler(),
	}
	go func() {
		logger.Info("admin server starting", zap.String("addr", cfg.AdminAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("admin server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)

	if relay != nil {
		relay.Close()
	}
	handle.Close()

	logger.Info("shutdown complete")
}
