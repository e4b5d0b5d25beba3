package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"market-resilience/config"
	"market-resilience/gateway"
	"market-resilience/infrastructure/logger"
	"market-resilience/infrastructure/monitor"
	"market-resilience/metrics"
	"market-resilience/sim"
)

type liveOptions struct {
	configPath string
	hotReload  bool
}

func newLiveCmd() *cobra.Command {
	opts := &liveOptions{}
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream Binance partial depth and score resilience per symbol",
		Long: `live subscribes feed.symbols on the Binance combined depth stream, runs one
indicator per symbol, and serves Prometheus metrics on metrics.addr.

Editing the config file while running rebuilds every indicator with the new
parameters and restarts them from a fresh state. Feed settings are read once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLive(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "configs/resilience.yaml", "配置文件路径")
	cmd.Flags().BoolVar(&opts.hotReload, "hot-reload", true, "配置文件变更时重建指标器")
	return cmd
}

func runLive(ctx context.Context, opts *liveOptions) error {
	cfg, err := config.LoadWithEnvOverrides(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Feed.Symbols) == 0 {
		return config.ErrInvalid("feed.symbols is required for live mode")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	mon := monitor.New(cfg.Metrics.Config)
	if cfg.Metrics.Addr != "" {
		srv := metrics.StartMetricsServer(cfg.Metrics.Addr, mon.Handler(), func(err error) {
			log.LogError(err, map[string]interface{}{"component": "metrics"})
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	router := sim.NewRouter(sim.Factory(cfg, log, mon), cfg.Feed.Symbols...)

	stream := gateway.NewDepthStream(cfg.Feed.Endpoint, cfg.Feed.Depth, cfg.Feed.Interval)
	for _, sym := range cfg.Feed.Symbols {
		if err := stream.SubscribeDepth(sym); err != nil {
			return err
		}
	}
	stream.OnReconnect = func(attempt int, lastErr error) {
		mon.RecordFeedReconnect("depth")
		log.Warn("depth stream reconnect", zap.Int("attempt", attempt), zap.Error(lastErr))
	}
	handler := &gateway.DepthHandler{
		Sink: router,
		OnError: func(symbol string, err error) {
			if symbol == "" {
				symbol = "unparsed"
			}
			mon.RecordFeedError(symbol)
			log.LogError(err, map[string]interface{}{"component": "depth", "symbol": symbol})
		},
	}

	if opts.hotReload {
		w := config.Watcher{Path: opts.configPath, Cooldown: time.Second}
		go func() {
			err := w.Start(ctx, func(next config.AppConfig) {
				if err := router.Reconfigure(sim.Factory(next, log, mon)); err != nil {
					log.LogError(err, map[string]interface{}{"component": "reload"})
					return
				}
				log.Info("indicator config reloaded", zap.Strings("symbols", router.Symbols()))
			}, func(err error) {
				log.LogError(err, map[string]interface{}{"component": "reload"})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.LogError(err, map[string]interface{}{"component": "reload"})
			}
		}()
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn("sd_notify failed", zap.Error(err))
	} else if sent {
		log.Info("notified systemd ready")
	}
	log.Info("resilience live started",
		zap.String("env", cfg.Env),
		zap.Strings("streams", stream.Streams()),
		zap.String("metrics", cfg.Metrics.Addr))

	err = stream.Run(ctx, handler.OnRawMessage)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if errors.Is(err, context.Canceled) {
		log.Info("resilience live stopped")
		return nil
	}
	return err
}
