package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pricetags/internal/config"
	"pricetags/internal/logging"
	"pricetags/internal/storage"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	must(err)

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	var db *storage.DB
	if cfg.RunLogEnabled {
		db, err = storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newCLIApp(db, cfg, log)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		if db != nil {
			_ = db.Close()
		}
		os.Exit(1)
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
