package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Domenick1991/airline-booking/api"
	"github.com/Domenick1991/airline-booking/config"
	"github.com/Domenick1991/airline-booking/internal/service/flights"
	"github.com/Domenick1991/airline-booking/internal/service/tickets"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, ticketSvc tickets.TicketUseCase) error {
	engine := NewRouter(cfg, flightSvc, ticketSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires middleware and handlers onto a gin engine.
func NewRouter(cfg *config.Config, flightSvc flights.FlightUseCase, ticketSvc tickets.TicketUseCase) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.CORS(), api.RateLimit())

	v1 := engine.Group("/api/v1")
	api.NewLocationHandler(flightSvc).Register(v1)
	api.NewFlightHandler(flightSvc).Register(v1)

	authed := v1.Group("/")
	authed.Use(api.Auth())
	api.NewTicketHandler(ticketSvc).Register(authed)

	if cfg.HTTP.SwaggerDir != "" {
		engine.Static("/swagger", cfg.HTTP.SwaggerDir)
		engine.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	return engine
}
