package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/controlplane"
	"github.com/vectorflow/vector/pkg/events"
	"github.com/vectorflow/vector/pkg/log"
	"github.com/vectorflow/vector/pkg/obs"
	"github.com/vectorflow/vector/pkg/reload"
	"github.com/vectorflow/vector/pkg/reloadlog"
	"github.com/vectorflow/vector/pkg/runtime"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine and run until shutdown",
	Long:  "run loads a config, starts its topology, and serves it until SIGINT/SIGTERM (graceful), SIGQUIT (immediate abort), or SIGHUP (reload from the original config path).",
	RunE:  runVector,
}

func init() {
	runCmd.Flags().String("config", "vector.yaml", "path to the configuration document")
	runCmd.Flags().String("data-dir", "./data", "directory disk buffers, the reload audit log, and the control socket are rooted under")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9598", "address the Prometheus and health endpoints listen on")
	runCmd.Flags().Duration("shutdown-deadline", 10*time.Second, "per-component drain deadline on graceful shutdown")
}

func runVector(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	shutdownDeadline, _ := cmd.Flags().GetDuration("shutdown-deadline")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("run: create data dir: %w", err)
	}

	doc, err := config.Load(configPath)
	if err != nil {
		return err
	}

	audit, err := reloadlog.Open(dataDir)
	if err != nil {
		return fmt.Errorf("run: open reload log: %w", err)
	}
	defer audit.Close()

	tap := events.NewBroker()
	tap.Start()
	defer tap.Stop()

	rt := runtime.New(context.Background())
	reloader := reload.New(rt.Context(), rt, dataDir, shutdownDeadline, tap, audit)
	if err := reloader.Bootstrap(doc); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.Handler())
	mux.Handle("/health", obs.HealthHandler())
	mux.Handle("/ready", obs.ReadyHandler())
	mux.Handle("/live", obs.LivenessHandler())
	metricsServer := &http.Server{Addr: metricsAddr, Handler: mux}
	rt.Go(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("run: metrics server: %w", err)
		}
		return nil
	})

	controlSocket := filepath.Join(dataDir, "control.sock")
	cpServer := controlplane.New(reloader, rt, tap)
	rt.Go(func(ctx context.Context) error {
		return cpServer.ListenAndServe(ctx, controlSocket)
	})

	log.WithComponent("vector").Info().
		Str("config", configPath).
		Str("metrics_addr", metricsAddr).
		Str("control_socket", controlSocket).
		Msg("vector started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.WithComponent("vector").Info().Msg("SIGHUP received, reloading")
				doc, err := config.Load(configPath)
				if err != nil {
					log.WithComponent("vector").Error().Err(err).Msg("reload: failed to read config, keeping previous topology")
					continue
				}
				if _, err := reloader.Apply(doc); err != nil {
					log.WithComponent("vector").Error().Err(err).Msg("reload rejected")
				}
			case syscall.SIGQUIT:
				log.WithComponent("vector").Warn().Msg("SIGQUIT received, aborting immediately")
				rt.Cancel()
				return rt.Wait()
			default:
				log.WithComponent("vector").Info().Msg("shutdown signal received, draining")
				reloader.Current().Shutdown(shutdownDeadline)
				rt.Cancel()
				return rt.Wait()
			}
		case <-rt.Done():
			return rt.Wait()
		}
	}
}
