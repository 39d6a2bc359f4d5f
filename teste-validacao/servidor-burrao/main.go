package main

import (
	"log/slog"
	"net/http"
	"os"
)

// Upstream burro para validar o gateway na mão: uma página e um asset, para
// exercitar navegação principal e sub-request.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("/showTela", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: r.RemoteAddr, Path: "/"})
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<h1>Tela do Sistema</h1><script src="/static/app.js"></script>`))
		log.Info("page served", slog.String("path", r.URL.Path), slog.String("user_agent", r.UserAgent()))
	})
	mux.HandleFunc("/static/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte(`console.log("ok");`))
		log.Info("asset served", slog.String("path", r.URL.Path))
	})

	log.Info("upstream listening", slog.String("addr", "http://localhost:8081"))
	if err := http.ListenAndServe(":8081", mux); err != nil {
		log.Error("upstream error", slog.Any("error", err))
		os.Exit(1)
	}
}
