// Package api serves the exploration dashboard over the integrated dataset.
// The server is stateless per interaction: every request refilters and
// recomputes from the dataset loaded at startup; nothing is cached between
// interactions and no external calls are made.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"electricity-atlas/dataset"
	"electricity-atlas/pkg/platform"
)

// Server is the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
	records    []dataset.ElectricityRecord
	countries  []string
	minYear    int
	maxYear    int
	logger     *slog.Logger
	config     *Config
}

// Config holds server configuration.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// DefaultConfig returns default server configuration, with env overrides for
// the settings that have no CLI flag.
func DefaultConfig() *Config {
	return &Config{
		Port:         platform.GetEnvInt("ATLAS_PORT", 8080),
		ReadTimeout:  time.Duration(platform.GetEnvInt("ATLAS_READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout: time.Duration(platform.GetEnvInt("ATLAS_WRITE_TIMEOUT_SECONDS", 60)) * time.Second,
		CORSOrigins:  strings.Split(platform.GetEnv("ATLAS_CORS_ORIGINS", "*"), ","),
	}
}

// NewServer creates a dashboard server over an already-loaded dataset.
func NewServer(records []dataset.ElectricityRecord, logger *slog.Logger, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	minYear, maxYear := dataset.YearBounds(records)
	return &Server{
		records:   records,
		countries: dataset.Countries(records),
		minYear:   minYear,
		maxYear:   maxYear,
		logger:    logger,
		config:    config,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/kpis", s.handleKPIs)
	mux.HandleFunc("/api/countries", s.handleCountries)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	// Wrap with middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("dashboard server starting",
		"port", s.config.Port,
		"records", len(s.records),
		"countries", len(s.countries),
	)
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts the server with graceful shutdown handling.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info("shutting down dashboard server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if len(s.records) == 0 {
		s.jsonError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// =============================================================================
// DATA ENDPOINTS
// =============================================================================

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sel, err := s.parseSelection(r)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	filtered := dataset.FilterCountryRange(s.records, sel.Country, sel.FromYear, sel.ToYear)
	if filtered == nil {
		filtered = []dataset.ElectricityRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"country": sel.Country,
		"from":    sel.FromYear,
		"to":      sel.ToYear,
		"records": filtered,
	})
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sel, err := s.parseSelection(r)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	filtered := dataset.FilterCountryRange(s.records, sel.Country, sel.FromYear, sel.ToYear)
	means, ok := dataset.ComputeMeans(filtered)
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"country": sel.Country,
		"from":    sel.FromYear,
		"to":      sel.ToYear,
		"rows":    len(filtered),
		"empty":   !ok,
		"means":   means,
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"countries": s.countries,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
