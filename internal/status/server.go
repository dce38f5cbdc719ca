package status

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaspardpetit/mcpipe/internal/metrics"
)

// Snapshot is the state reported on /status.
type Snapshot struct {
	ClientName         string `json:"client_name"`
	EndpointURL        string `json:"endpoint_url"`
	SessionEstablished bool   `json:"session_established"`
	Requests           uint64 `json:"requests"`
	Errors             uint64 `json:"errors"`
	UptimeSeconds      uint64 `json:"uptime_seconds"`
}

// Handler constructs the HTTP handler for the status listener.
func Handler(snapshot func() Snapshot, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	reg.MustRegister(collectors.NewGoCollector())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot())
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// Serve starts an HTTP server bound to addr and shuts it down when ctx is
// done. It returns the resolved listen address.
func Serve(ctx context.Context, addr string, handler http.Handler) (string, error) {
	srv := &http.Server{Handler: handler}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	actual := ln.Addr().String()
	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(c)
	}()
	go func() { _ = srv.Serve(ln) }()
	return actual, nil
}
