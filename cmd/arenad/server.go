package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fencerfight/tourney/src/app/sync"
	"github.com/fencerfight/tourney/src/app/tournament"
)

type ServerConfig struct {
	Logger     *zap.Logger
	Tournament *tournament.Service
	Hub        *sync.Hub
	SyncToken  string
}

// Server wires HTTP endpoints to the tournament controller with observability
// instrumentation.
type Server struct {
	cfg            ServerConfig
	router         *mux.Router
	httpMetrics    *prometheus.HistogramVec
	requestCounter *prometheus.CounterVec
	syncMessages   *prometheus.CounterVec
}

func NewServer(cfg ServerConfig) *Server {
	srv := &Server{cfg: cfg}
	srv.initMetrics()
	srv.buildRouter()
	cfg.Hub.OnMessage(func(kind string, ok bool) {
		srv.syncMessages.WithLabelValues(kind, strconv.FormatBool(ok)).Inc()
	})
	return srv
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) initMetrics() {
	s.httpMetrics = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arenad",
		Subsystem: "http",
		Name:      "request_latency_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	s.requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arenad",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route",
	}, []string{"route", "method", "code"})
	s.syncMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arenad",
		Subsystem: "sync",
		Name:      "messages_total",
		Help:      "Processed sync envelopes by kind and outcome",
	}, []string{"kind", "ok"})
	prometheus.MustRegister(s.httpMetrics, s.requestCounter, s.syncMessages)
}

func (s *Server) buildRouter() {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/state", s.handleGetState).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handlePutState).Methods(http.MethodPut)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutSettings).Methods(http.MethodPut)

	api.HandleFunc("/pools", s.handleAddPool).Methods(http.MethodPost)
	api.HandleFunc("/pools/{index}", s.handleGetPool).Methods(http.MethodGet)
	api.HandleFunc("/pools/{index}", s.handleDeletePool).Methods(http.MethodDelete)
	api.HandleFunc("/pools/{index}/select", s.handleSelectPool).Methods(http.MethodPost)
	api.HandleFunc("/pools/{index}/fighters", s.handleAddFighter).Methods(http.MethodPost)
	api.HandleFunc("/pools/{index}/fighters/{id}", s.handleRemoveFighter).Methods(http.MethodDelete)
	api.HandleFunc("/pools/{index}/start", s.handleStartPool).Methods(http.MethodPost)
	api.HandleFunc("/pools/{index}/pairs/{pair}/select", s.handleSelectPair).Methods(http.MethodPost)
	api.HandleFunc("/pools/{index}/stage-end", s.handleEndStage).Methods(http.MethodPost)
	api.HandleFunc("/bouts", s.handleRecordBout).Methods(http.MethodPost)

	api.HandleFunc("/playoff", s.handleStartPlayoff).Methods(http.MethodPost)
	api.HandleFunc("/playoff", s.handleGetPlayoff).Methods(http.MethodGet)
	api.HandleFunc("/playoff/bouts", s.handlePlayoffBout).Methods(http.MethodPost)
	api.HandleFunc("/playoff/winner", s.handlePlayoffWinner).Methods(http.MethodPost)
	api.HandleFunc("/playoff/advance", s.handleAdvancePlayoff).Methods(http.MethodPost)
	api.HandleFunc("/podium", s.handlePodium).Methods(http.MethodGet)

	api.HandleFunc("/export/pools/{index}", s.handleExportPool).Methods(http.MethodGet)
	api.HandleFunc("/export/playoff", s.handleExportPlayoff).Methods(http.MethodGet)

	api.HandleFunc("/sync/ws", s.handleSyncWS).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.cfg.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestIDFrom(r.Context())),
		)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		route := mux.CurrentRoute(r)
		routeName := "unknown"
		if route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				routeName = tmpl
			}
		}
		codeLabel := strconv.Itoa(rw.status)
		labels := prometheus.Labels{"route": routeName, "method": r.Method, "code": codeLabel}
		s.httpMetrics.With(labels).Observe(time.Since(start).Seconds())
		s.requestCounter.With(labels).Inc()
	})
}

// responseWriter captures HTTP status codes for logging/metrics. It must
// stay hijackable or the sync websocket upgrade behind the middleware
// chain breaks.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer of type %T cannot hijack", rw.ResponseWriter)
	}
	return hj.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// requestIDMiddleware tags every request with an id for log correlation,
// honoring an id supplied by the caller.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
			w.Header().Set("X-Request-Id", id)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
