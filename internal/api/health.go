package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Proton-105/dataeng-assistant/internal/health"
)

const serviceName = "Data Engineering Assistant API"

type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func (s *Server) health(c echo.Context) error {
	report := health.Report{Status: health.StatusOK, Checks: map[string]string{}}
	if s.deps.Health != nil {
		report = s.deps.Health.Check(c.Request().Context())
	}

	status := "healthy"
	code := http.StatusOK
	if !report.Healthy() {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	version := s.app.Version
	if version == "" {
		version = "dev"
	}

	return c.JSON(code, healthResponse{
		Status:  status,
		Service: serviceName,
		Version: version,
		Checks:  report.Checks,
	})
}

func (s *Server) liveness(c echo.Context) error {
	if s.deps.Probes != nil {
		if err := s.deps.Probes.Liveness(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
	}
	return c.String(http.StatusOK, "ok")
}

func (s *Server) readiness(c echo.Context) error {
	if s.deps.Probes != nil {
		if err := s.deps.Probes.Readiness(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
	}
	return c.String(http.StatusOK, "ready")
}
