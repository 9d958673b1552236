package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobmcallan/sipfolio/internal/app"
	"github.com/bobmcallan/sipfolio/internal/common"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: SIPFOLIO_CONFIG, then sipfolio.toml next to the binary)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		common.LoadVersionFromFile()
		fmt.Println(common.GetFullVersion())
		return
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	// Interrupt cancels the run; artifact writes are atomic, so a canceled
	// run never leaves a torn snapshot behind.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.Logger.Warn().Msg("Interrupt received, canceling run")
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Run failed")
		a.Close()
		os.Exit(1)
	}

	a.Close()
}
