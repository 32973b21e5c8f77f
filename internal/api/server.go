// Package api provides the local HTTP server for Papaléguas.
// The driver UI polls GET /api/state and posts every user action; the
// response to a mutation is the refreshed state snapshot.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papaleguas-app/papaleguas/internal/app/identity"
	"github.com/papaleguas-app/papaleguas/internal/app/mission"
	"github.com/papaleguas-app/papaleguas/internal/app/notify"
	"github.com/papaleguas-app/papaleguas/internal/app/wallet"
	"github.com/papaleguas-app/papaleguas/internal/domain"
	"github.com/papaleguas-app/papaleguas/internal/infra/sqlite"
)

// Server is the Papaléguas HTTP API server.
type Server struct {
	ctrl           *mission.Controller
	wallet         *wallet.Wallet
	inbox          *notify.Service
	verify         *identity.Flow
	settings       *sqlite.DB
	validate       *validator.Validate
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(ctrl *mission.Controller, w *wallet.Wallet, inbox *notify.Service, verify *identity.Flow, settings *sqlite.DB) *Server {
	return &Server{
		ctrl:     ctrl,
		wallet:   w,
		inbox:    inbox,
		verify:   verify,
		settings: settings,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Route("/driver", func(r chi.Router) {
			r.Post("/location", s.handleLocation)
			r.Post("/online", s.handleOnline)
			r.Post("/offline", s.handleOffline)
		})

		r.Route("/mission", func(r chi.Router) {
			r.Post("/accept", s.handleAccept)
			r.Post("/reject", s.handleReject)
			r.Post("/advance", s.handleAdvance)
			r.Post("/code", s.handleDeliveryCode)
			r.Post("/code/resend", s.handleCodeResend)
			r.Post("/map-picker", s.handleMapPicker)
			r.Post("/summary/ack", s.handleSummaryAck)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Post("/filters", s.handleFilters)
			r.Post("/auto-accept", s.handleAutoAccept)
			r.Get("/theme", s.handleGetTheme)
			r.Put("/theme", s.handleSetTheme)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", s.handleWallet)
			r.Post("/anticipate", s.handleAnticipate)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleNotifications)
			r.Post("/{id}/read", s.handleNotificationRead)
		})

		r.Route("/verification", func(r chi.Router) {
			r.Get("/", s.handleVerificationStep)
			r.Post("/begin", s.handleVerificationBegin)
			r.Post("/capture", s.handleVerificationCapture)
			r.Post("/finish", s.handleVerificationFinish)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// decodeValid decodes the request body into v and runs struct validation.
func (s *Server) decodeValid(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLocationPermission):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrVerificationRequired):
		writeError(w, http.StatusPreconditionRequired, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrCameraUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrNoMission),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNotReady),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrResendCooldown),
		errors.Is(err, domain.ErrInvalidStep):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for the local UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
