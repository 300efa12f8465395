// Package api serves the read-only diagnostics HTTP API.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/satellite/domain/entities"
	"github.com/satriahrh/arunika/satellite/internal/auth"
	"github.com/satriahrh/arunika/satellite/internal/websocket"
)

// Satellite is the state exposed by the API.
type Satellite interface {
	State() entities.SatelliteState
	TimersSnapshot() []entities.VoiceTimer
}

// Deps are the collaborators of the API routes. Validator may be nil, in
// which case no token is required.
type Deps struct {
	Satellite Satellite
	Hub       *websocket.Hub
	Validator *auth.Validator
	Gatherer  prometheus.Gatherer
	Version   string
	Now       func() time.Time
	Logger    *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger.With(zap.String("component", "api"))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: "arunika-satellite",
			Version: deps.Version,
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	requireToken := jwtMiddleware(deps.Validator, logger)

	// API v1 routes
	v1 := e.Group("/api/v1", requireToken)
	v1.GET("/state", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StateResponse{
			State:     deps.Satellite.State().String(),
			Timestamp: deps.Now().UTC(),
		})
	})
	v1.GET("/timers", func(c echo.Context) error {
		return getTimers(c, deps)
	})

	// WebSocket endpoint with JWT validation
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(deps.Hub, c)
	}, requireToken)
}

func getTimers(c echo.Context, deps Deps) error {
	now := deps.Now()
	snapshot := websocket.CreateTimersMessage(deps.Satellite.TimersSnapshot(), now)
	return c.JSON(http.StatusOK, TimersResponse{
		Timers:    snapshot.Timers,
		Timestamp: now.UTC(),
	})
}

// jwtMiddleware checks the bearer token of a request. The token may also be
// passed in the token query parameter, which browsers need for websockets.
func jwtMiddleware(validator *auth.Validator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if validator == nil {
			return next
		}
		return func(c echo.Context) error {
			token := c.QueryParam("token")
			if authHeader := c.Request().Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				logger.Warn("Request rejected: missing token", zap.String("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "JWT token is required",
				})
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}

			if claims.Role != auth.RoleViewer {
				logger.Warn("Request rejected: invalid role", zap.String("role", claims.Role))
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "invalid_role",
					Message: "Token does not grant diagnostics access",
				})
			}

			c.Set("client_id", claims.ClientID)
			return next(c)
		}
	}
}
