// Package api exposes the property data and the pricing model over HTTP.
// The handlers are thin wrappers: parsing, validation and status mapping
// only — all logic lives in the services, ml and storage packages.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"propiedades-api/ml"
	"propiedades-api/storage"
	"propiedades-api/utils"
)

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	store      storage.PropertyStore
	predictor  *ml.Predictor
	logger     *utils.Logger
	port       int
}

// NewServer wires the store and predictor into a Server.
func NewServer(store storage.PropertyStore, predictor *ml.Predictor, port int, logger *utils.Logger) *Server {
	return &Server{
		store:     store,
		predictor: predictor,
		logger:    logger,
		port:      port,
	}
}

// Routes builds the request multiplexer with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /predict/model-info", s.handleModelInfo)

	mux.HandleFunc("GET /propiedades", s.handleListPropiedades)
	mux.HandleFunc("POST /propiedades", s.handleCreatePropiedad)
	mux.HandleFunc("GET /propiedades/{id}", s.handleGetPropiedad)
	mux.HandleFunc("PUT /propiedades/{id}", s.handleUpdatePropiedad)
	mux.HandleFunc("DELETE /propiedades/{id}", s.handleDeletePropiedad)

	mux.HandleFunc("GET /estadisticas/precio-por-barrio", s.handleBarrioStats)
	mux.HandleFunc("GET /estadisticas/evolucion-mercado", s.handleMarketEvolution)

	return s.loggingMiddleware(mux)
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("[api] listening on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Info("[api] received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// statusRecorder captures the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags every request with a generated id and logs
// method, path, status and latency.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Debug("[api] %s %s %s → %d (%v)",
			requestID[:8], r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"model_available": s.predictor.Available(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
