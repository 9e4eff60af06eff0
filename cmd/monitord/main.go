// Command monitord runs the MCP fleet health monitoring service: it ingests
// health reports over HTTP, keeps a rolling history of system-wide samples,
// and serves metrics snapshots and the event log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcpstack/monitord/config"
	"github.com/mcpstack/monitord/internal/app"
	"github.com/mcpstack/monitord/internal/monapi"
	"github.com/mcpstack/monitord/internal/webserver"
)

func main() {
	cfile := flag.String("c", "", "config file path (yaml)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init application: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	ws := webserver.Init(cfg, application.Store())
	monapi.InitRouter(application.Store(), application.Ingestor(), application.Sink())

	application.StartBackgroundJobs()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := ws.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.L().Info("received signal, shutting down", zap.String("signal", sig.String()))
			return ws.Shutdown()
		case <-ctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("monitord stopped", zap.Error(err))
	}
}
