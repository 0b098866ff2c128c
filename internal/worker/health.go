package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aescanero/dago-node-analyzer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// ComponentCheck reports the state of an optional collaborator. A non-nil
// error marks the worker as degraded, not unhealthy.
type ComponentCheck func(ctx context.Context) error

type dependency struct {
	name     string
	check    ComponentCheck
	critical bool
}

// HealthServer serves /health, /ready and /metrics for the worker. Redis is
// the only critical dependency; anything added with AddCheck can only degrade.
type HealthServer struct {
	addr         string
	timeout      time.Duration
	dependencies []dependency
	logger       *zap.Logger
	listener     net.Listener
	server       *http.Server
}

// NewHealthServer creates a health server on port. Port 0 picks a free port.
func NewHealthServer(port int, redisClient *redis.Client, logger *zap.Logger) *HealthServer {
	hs := &HealthServer{
		addr:    fmt.Sprintf(":%d", port),
		timeout: 2 * time.Second,
		logger:  logger,
	}
	hs.dependencies = append(hs.dependencies, dependency{
		name:     "redis",
		critical: true,
		check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	return hs
}

// AddCheck registers an optional collaborator check under name. Checks run in
// registration order.
func (hs *HealthServer) AddCheck(name string, check ComponentCheck) {
	hs.dependencies = append(hs.dependencies, dependency{name: name, check: check})
}

// Handler returns the HTTP routes
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start binds the listener before returning, so a busy port is reported to
// the caller instead of only being logged.
func (hs *HealthServer) Start() error {
	ln, err := net.Listen("tcp", hs.addr)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w", hs.addr, err)
	}
	hs.listener = ln
	hs.server = &http.Server{
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("health server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := hs.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (hs *HealthServer) Addr() string {
	if hs.listener == nil {
		return hs.addr
	}
	return hs.listener.Addr().String()
}

// Stop drains in-flight requests for up to five seconds.
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string             `json:"status"`
	Checks    map[string]string  `json:"checks,omitempty"`
	LatencyMS map[string]float64 `json:"latency_ms,omitempty"`
}

// report is the outcome of one pass over the dependencies.
type report struct {
	status  string
	checks  map[string]string
	latency map[string]float64
}

// evaluate runs the dependency checks under one shared deadline. With
// criticalOnly set, optional collaborators are skipped.
func (hs *HealthServer) evaluate(ctx context.Context, criticalOnly bool) report {
	ctx, cancel := context.WithTimeout(ctx, hs.timeout)
	defer cancel()

	rep := report{
		status:  statusHealthy,
		checks:  make(map[string]string, len(hs.dependencies)),
		latency: make(map[string]float64, len(hs.dependencies)),
	}

	for _, dep := range hs.dependencies {
		if criticalOnly && !dep.critical {
			continue
		}

		start := time.Now()
		err := dep.check(ctx)
		elapsed := time.Since(start)

		metrics.HealthCheckDuration.WithLabelValues(dep.name).Observe(elapsed.Seconds())
		rep.latency[dep.name] = float64(elapsed.Microseconds()) / 1000

		switch {
		case err == nil:
			rep.checks[dep.name] = statusHealthy
			metrics.HealthCheckResults.WithLabelValues(dep.name, "ok").Inc()
		case dep.critical:
			rep.checks[dep.name] = fmt.Sprintf("%s: %v", statusUnhealthy, err)
			rep.status = statusUnhealthy
			metrics.HealthCheckResults.WithLabelValues(dep.name, "failed").Inc()
			hs.logger.Warn("critical dependency check failed", zap.String("check", dep.name), zap.Error(err))
		default:
			rep.checks[dep.name] = fmt.Sprintf("%s: %v", statusDegraded, err)
			if rep.status == statusHealthy {
				rep.status = statusDegraded
			}
			metrics.HealthCheckResults.WithLabelValues(dep.name, "degraded").Inc()
		}
	}
	return rep
}

func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	rep := hs.evaluate(r.Context(), false)

	code := http.StatusOK
	if rep.status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	hs.respondJSON(w, code, HealthResponse{
		Status:    rep.status,
		Checks:    rep.checks,
		LatencyMS: rep.latency,
	})
}

// handleReady only looks at critical dependencies; a degraded worker still
// takes traffic.
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	rep := hs.evaluate(r.Context(), true)

	if rep.status == statusUnhealthy {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
			Checks: rep.checks,
		})
		return
	}
	hs.respondJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		hs.logger.Error("failed to encode health response", zap.Error(err))
	}
}
