package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/proctor/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	srv.infra.Logger.Info("signal received", "signal", sig.String())

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.infra.Logger.Error("shutdown incomplete", "error", err)
		os.Exit(1)
	}

	srv.infra.Logger.Info("proctor stopped")
}
