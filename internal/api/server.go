// Package api exposes the slot book over HTTP: display queries, booking,
// admin mutations, and the websocket upgrade for live updates.
package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"millbook/internal/cache"
	"millbook/internal/config"
	"millbook/internal/engine"
	"millbook/internal/ws"
)

// Server wires the HTTP boundary over the scheduling engine.
type Server struct {
	engine *engine.Engine
	hub    *ws.Hub
	cache  *cache.Cache // nil when Redis is not configured
	cfg    *config.Config
	logger zerolog.Logger
}

// New constructs the HTTP server. cache may be nil.
func New(eng *engine.Engine, hub *ws.Hub, overviewCache *cache.Cache, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		engine: eng,
		hub:    hub,
		cache:  overviewCache,
		cfg:    cfg,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the echo instance with all routes and middleware.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	if s.cfg.RateLimit.Enabled {
		e.Use(RateLimit(s.cfg.RateLimitRPS(), s.cfg.RateLimitBurst()))
	}

	e.GET("/slots", s.handleSlots)
	e.GET("/available-slots", s.handleAvailableSlots)
	e.POST("/book", s.handleBook)
	e.GET("/ws", echo.WrapHandler(s.hub.Handler()))

	e.POST("/admin/login", s.handleLogin)

	admin := e.Group("/admin", middleware.BasicAuth(func(username, password string, _ echo.Context) (bool, error) {
		return s.isAdmin(username, password), nil
	}))
	admin.GET("/bookings", s.handleAdminBookings)
	admin.GET("/closed-slots", s.handleClosedSlots)
	admin.POST("/close-slot", s.handleCloseSlot)
	admin.DELETE("/close-slot/:id", s.handleOpenSlot)
	admin.DELETE("/booking/:id", s.handleDeleteBooking)
	admin.GET("/export", s.handleExport)

	return e
}

// isAdmin is the shared-identity credential check.
func (s *Server) isAdmin(username, password string) bool {
	return username == s.cfg.Admin.Username && password == s.cfg.Admin.Password && password != ""
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			s.logger.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("took", time.Since(start)).
				Msg("request")
			return err
		}
	}
}
