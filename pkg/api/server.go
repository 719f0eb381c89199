package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wildpark/wildpark/pkg/imageproxy"
	"github.com/wildpark/wildpark/pkg/logging"
	"github.com/wildpark/wildpark/pkg/middleware"
	"github.com/wildpark/wildpark/pkg/observability"
	"github.com/wildpark/wildpark/pkg/park"
	"github.com/wildpark/wildpark/pkg/store"
)

// Stores bundles the repositories the API serves.
type Stores struct {
	Users              store.Users
	Tours              store.Documents[park.Tour]
	TourMaterials      store.Documents[park.TourMaterial]
	Activities         store.Documents[park.Activity]
	Events             store.Documents[park.Event]
	EventRegistrations store.Documents[park.EventRegistration]
	Donations          store.Documents[park.Donation]
	FuelClaims         store.Documents[park.FuelClaim]
	Applications       store.Documents[park.Application]
	EmergencyForms     store.Documents[park.EmergencyForm]
	EmergencyReports   store.Documents[park.EmergencyReport]
	Complaints         store.Documents[park.Complaint]
	Feedbacks          store.Documents[park.Feedback]
	Bookings           store.Documents[park.Booking]
}

// Options configures a Server. Logger, Bridge and Stores are required;
// everything else degrades gracefully when absent.
type Options struct {
	Logger         *logging.Service
	Bridge         middleware.BridgeFunc
	CodeFlow       CodeExchanger
	Stores         Stores
	ImageProxy     *imageproxy.Proxy
	RateLimiter    *middleware.RateLimiter
	Metrics        *observability.Metrics
	Registry       *prometheus.Registry
	Health         *observability.HealthChecker
	AllowedOrigins []string
	Development    bool
}

// Server is the wildpark HTTP API.
type Server struct {
	router *mux.Router
	opts   Options
}

// NewServer creates the API server and registers all routes.
func NewServer(opts Options) *Server {
	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery(s.opts.Logger, s.opts.Development))
	s.router.Use(middleware.CORS(s.opts.AllowedOrigins))
	if s.opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.opts.Metrics))
	}
	s.router.Use(middleware.APILogging(s.opts.Logger))
	s.router.Use(middleware.NewAuthMiddleware(s.opts.Bridge).Handler)
}

func (s *Server) setupRoutes() {
	if s.opts.Health != nil {
		s.router.HandleFunc("/healthz", s.opts.Health.Liveness).Methods("GET")
		s.router.HandleFunc("/readyz", s.opts.Health.Readiness).Methods("GET")
	}
	if s.opts.Registry != nil {
		s.router.Handle("/metrics", observability.Handler(s.opts.Registry)).Methods("GET")
	}

	NewAuthHandlers(s.opts.Bridge, s.opts.RateLimiter, s.opts.CodeFlow, s.opts.Logger).RegisterRoutes(s.router)
	NewDashboardHandlers(s.opts.Logger).RegisterRoutes(s.router)
	NewUserHandlers(s.opts.Stores.Users, s.opts.Logger, s.opts.Development).RegisterRoutes(s.router)
	NewLogHandlers(s.opts.Logger).RegisterRoutes(s.router)
	NewEmergencyHandlers(s.opts.Stores.EmergencyForms, s.opts.Stores.EmergencyReports, s.opts.Logger, s.opts.Development).RegisterRoutes(s.router)

	for _, register := range s.resourceRoutes() {
		register(s.router)
	}

	if s.opts.ImageProxy != nil {
		s.router.HandleFunc("/api/profile-image/proxy", s.opts.ImageProxy.ServeImage).Methods("GET")
		s.router.HandleFunc("/api/profile-image/cleanup", s.opts.ImageProxy.Cleanup).Methods("POST")
	}
}
