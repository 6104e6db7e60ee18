// Package main provides the entry point for the ReadMate server application.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/readmateapp/readmate-server/internal/config"
	"github.com/readmateapp/readmate-server/internal/di"
	"github.com/readmateapp/readmate-server/internal/di/providers"
	"github.com/readmateapp/readmate-server/internal/logger"
)

func parseFlags() config.Flags {
	var flags config.Flags
	flag.StringVar(&flags.Environment, "env", "", "Environment (development or production)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&flags.Port, "port", "", "HTTP server port")
	flag.StringVar(&flags.DataPath, "data", "", "Data directory path")
	flag.StringVar(&flags.EnvFile, "env-file", "", "Path to .env file")
	flag.Parse()
	return flags
}

func main() {
	// Create DI container
	injector := di.NewContainer(parseFlags())

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The store uses a wrapper type, close it explicitly
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		} else {
			log.Info("Database closed successfully")
		}
	}

	log.Info("Happy reading...")
}
