package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/budget-forecast/api"
)

var (
	flagPort            int
	flagMonitorSchedule string
	flagNoMonitor       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and shortfall monitor",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 8080, "HTTP server port")
	serveCmd.Flags().StringVar(&flagMonitorSchedule, "monitor-schedule", "", "Cron schedule for the shortfall monitor")
	serveCmd.Flags().BoolVar(&flagNoMonitor, "no-monitor", false, "Disable the shortfall monitor")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, logger, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	handler := api.NewHandler(store, store, logger)
	handler.HorizonMonths = cfg.Forecast.HorizonMonths

	monitor := api.NewShortfallMonitor(store, store, logger)
	monitor.Schedule = cfg.Monitor.Schedule
	monitor.HorizonMonths = cfg.Monitor.HorizonMonths
	monitor.Enabled = cfg.Monitor.Enabled
	handler.Monitor = monitor
	if err := monitor.Start(); err != nil {
		return err
	}
	defer monitor.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
