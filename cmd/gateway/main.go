package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overload-gateway/internal/config"
	"overload-gateway/middleware/overload"
	"overload-gateway/middleware/overload/application"
	"overload-gateway/middleware/overload/infra"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := cfg.NewLogger()
	slog.SetDefault(log)

	if cfg.UpstreamURL == "" {
		return config.ErrNoUpstream
	}
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid UPSTREAM_URL: %w", err)
	}

	res, err := config.LoadResiliency(cfg.OverloadConfigFile)
	if err != nil {
		return err
	}
	snap, err := infra.NewSnapshot(res.Settings())
	if err != nil {
		return fmt.Errorf("overload config: %w", err)
	}
	protector := application.NewProtector(log, snap)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.OverloadConfigFile != "" {
		go func() {
			err := config.Follow(ctx, cfg.OverloadConfigFile, log, func(r config.Resiliency) error {
				next, err := infra.NewSnapshot(r.Settings())
				if err != nil {
					return err
				}
				protector.Swap(next)
				return nil
			})
			if err != nil {
				log.Error("overload config watch failed", slog.Any("error", err))
			}
		}()
	}

	memStats := infra.NewMemoryStatsStore(infra.WithTrackRoutes(cfg.Stats.TrackRoutes))
	stats := infra.MultiStats{memStats}

	if cfg.MetricsEnabled {
		promStats, err := infra.NewPrometheusStatsStore(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		stats = append(stats, promStats)
	}

	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			return fmt.Errorf("redis stats ping error: %w", err)
		}

		stats = append(stats, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackRoutes(cfg.Stats.TrackRoutes),
		))
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("proxy error", slog.String("path", r.URL.Path), slog.Any("error", err))
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	guard := overload.Middleware(overload.Options{
		Engine:             protector,
		Stats:              stats,
		SessionCookie:      cfg.SessionCookie,
		TrustXForwardedFor: cfg.TrustXFF,
		RejectStatus:       cfg.RejectStatus,
		RetryAfter:         cfg.RetryAfter,
		AddOverloadHeaders: cfg.AddOverloadHeaders,
		Logger:             log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(cfg, guard(proxy), memStats),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s := snap.Settings
	log.Info("gateway listening", slog.String("addr", cfg.ListenAddr), slog.String("upstream", target.String()))
	log.Info("overload protection",
		slog.Bool("enabled", s.EnableOverloadProtection),
		slog.Bool("forbid_new_guests_if_sub_request", s.ForbidNewGuestsIfSubRequest),
		slog.Duration("peak_window", s.PeakTimeWindow),
		slog.Duration("traffic_window", s.TrafficTimeWindow),
		slog.String("config_file", cfg.OverloadConfigFile),
	)
	log.Info("overload stats", slog.Bool("redis", cfg.Stats.Enabled), slog.Bool("metrics", cfg.MetricsEnabled))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newRouter expõe as rotas administrativas fora do middleware de proteção;
// todo o resto vai para o upstream.
func newRouter(cfg config.Config, protected http.Handler, memStats *infra.MemoryStatsStore) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/overload/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(memStats.Snapshot())
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Handle("/*", protected)

	return r
}
