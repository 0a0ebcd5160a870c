package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hubwatch/panelhost/internal/infrastructure/config"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/server"
)

func main() {
	port := flag.String("port", "", "Override server port")
	backendAddr := flag.String("backend", "", "Override monitored backend address")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *backendAddr != "" {
		cfg.Backend.Address = *backendAddr
	}

	var log *logging.Logger
	if cfg.Logging.Development {
		log = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			log = logging.NewDefault()
		} else {
			log = l
		}
	}
	defer log.Sync()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("shutting down gracefully")
		if err := srv.Close(); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		log.Fatal("server error", zap.Error(err))
	}
}
