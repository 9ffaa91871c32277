package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/basket/internal/app"
	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("basket-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to basket.toml (default: $BASKET_CONFIG, then next to the binary)")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		common.LoadVersionFromFile()
		info := common.GetVersionInfo()
		fmt.Fprintf(stdout, "basket-server %s (build %s, commit %s, %s)\n", info.Version, info.Build, info.GitCommit, info.GoVersion)
		return 0
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return 1
	}

	common.PrintBanner(a.Config, a.Logger)

	if err := a.StartPriceScheduler(); err != nil {
		a.Logger.Error().Err(err).Msg("Price scheduler not started")
	}

	srv := server.NewServer(a)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	a.Logger.Info().
		Str("url", fmt.Sprintf("http://%s", srv.Addr())).
		Str("mcp", fmt.Sprintf("http://%s/mcp", srv.Addr())).
		Str("feed", fmt.Sprintf("ws://%s/api/ws", srv.Addr())).
		Msg("Server ready")

	// Wait for interrupt signal or server failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		a.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-serverErr:
		a.Logger.Error().Err(err).Msg("HTTP server failed")
		exitCode = 1
	}

	common.PrintShutdownBanner(a.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	a.Logger.Info().Msg("Server stopped")
	return exitCode
}
