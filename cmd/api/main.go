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
	"time"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/app"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/config"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", os.Getenv("VETSHEET_CONFIG"), "archivo YAML de configuración (opcional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: router.NewRouter(router.Options{
			Logger:    a.Log,
			Metrics:   a.Metrics,
			Documents: a.Documents,
			Records:   a.Records,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("starting server", map[string]any{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
