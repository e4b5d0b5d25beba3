// Package metrics exposes the Prometheus endpoint for the resilience runners.
package metrics

import (
	"net/http"
	"time"
)

// NewServer 构建暴露 /metrics 与 /healthz 的 HTTP 服务
func NewServer(addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer 启动Prometheus指标服务器，调用方负责 Shutdown
func StartMetricsServer(addr string, handler http.Handler, onErr func(error)) *http.Server {
	srv := NewServer(addr, handler)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && onErr != nil {
			onErr(err)
		}
	}()
	return srv
}
