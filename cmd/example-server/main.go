package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overload-gateway/middleware/overload"
	"overload-gateway/middleware/overload/application"
	"overload-gateway/middleware/overload/domain"
	"overload-gateway/middleware/overload/infra"
)

func intPtr(v int) *int { return &v }

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Exemplo: injetando o middleware diretamente no seu webserver (sem proxy)
	snap, err := infra.NewSnapshot(domain.Settings{
		EnableOverloadProtection:    true,
		ForbidNewGuestsIfSubRequest: true,
		PeakLimitGlobal:             intPtr(50),
		PeakLimitBot:                intPtr(5),
		PeakTimeWindow:              time.Second,
		TrafficLimitGuest:           intPtr(1200),
		TrafficLimitBot:             intPtr(60),
		TrafficTimeWindow:           time.Minute,
	})
	if err != nil {
		log.Error("overload config error", slog.Any("error", err))
		os.Exit(1)
	}
	protector := application.NewProtector(log, snap)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: time.Now().Format("150405.000000"), Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	h := overload.Middleware(overload.Options{
		Engine:             protector,
		SessionCookie:      "session",
		TrustXForwardedFor: true,
		AddOverloadHeaders: true,
		Authenticated:      func(r *http.Request) bool { return r.Header.Get("Authorization") != "" },
		Logger:             log,
	})(mux)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("example server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
