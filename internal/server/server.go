package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

type Options struct {
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	httpServer *http.Server
	handler    *Handler
	limiter    *RateLimiter
}

func NewServer(port string, attendant *parking.Attendant, opts Options) *Server {
	handler := NewHandler(attendant, opts.ServiceName)
	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      newRouter(handler, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		limiter:    limiter,
	}
}

func newRouter(handler *Handler, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Post("/tickets", handler.ParkVehicle)
		r.Get("/tickets", handler.ListTickets)
		r.Get("/tickets/{id}", handler.GetTicket)
		r.Post("/tickets/{id}/exit", handler.ExitVehicle)
		r.Get("/status", handler.GetStatus)
		r.Get("/find/{registration}", handler.FindByRegistration)
		r.Get("/stats", handler.GetStats)
	})

	return r
}

// Start blocks serving HTTP; idle rate-limit buckets are swept until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	s.limiter.StartJanitor(ctx, 2*time.Minute)
	logging.Info(ctx, "starting HTTP server", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info(ctx, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
