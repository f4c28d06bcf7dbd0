package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/smartcity/trafficsim/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	trafficSvc    *service.TrafficService
	predictionSvc *service.PredictionService
	dashboardSvc  *service.DashboardService
	log           logrus.FieldLogger
}

// NewHandler creates a new handler
func NewHandler(
	trafficSvc *service.TrafficService,
	predictionSvc *service.PredictionService,
	dashboardSvc *service.DashboardService,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		trafficSvc:    trafficSvc,
		predictionSvc: predictionSvc,
		dashboardSvc:  dashboardSvc,
		log:           log,
	}
}

// queryHours parses a non-negative integer query parameter
func queryHours(c *fiber.Ctx, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a non-negative integer")
	}
	return hours, nil
}

// toHTTPError maps validation errors to 400 and everything else to 500
func (h *Handler) toHTTPError(err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidHoursAhead),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrMissingRouteEndpoint),
		errors.Is(err, domain.ErrUnknownLevel):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error(message)
		return fiber.NewError(fiber.StatusInternalServerError, message)
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.dashboardSvc.Health(c.UserContext()); err != nil {
		storage = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "trafficsim",
		"version": "1.0.0",
		"storage": storage,
	})
}

// GetDashboard returns the latest polled traffic state
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardSvc.GetDashboardData(c.UserContext())
	if err != nil {
		return h.toHTTPError(err, "Failed to fetch dashboard data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetCurrentTraffic returns a fresh snapshot with its stats.
// ?level= narrows the returned readings; stats always cover every road.
func (h *Handler) GetCurrentTraffic(c *fiber.Ctx) error {
	snap := h.trafficSvc.CurrentSnapshot()
	stats := snap.Stats()

	if raw := c.Query("level"); raw != "" {
		level, err := domain.ParseCongestionLevel(raw)
		if err != nil {
			return h.toHTTPError(err, "Failed to filter traffic")
		}
		snap = snap.WithLevel(level)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": domain.TrafficResponse{
			Snapshot: snap,
			Stats:    stats,
		},
	})
}

// GetTrafficStats returns aggregate stats over a fresh snapshot
func (h *Handler) GetTrafficStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.trafficSvc.CurrentSnapshot().Stats(),
	})
}

// GetTrafficHistory returns synthetic hourly snapshots with trend series
func (h *Handler) GetTrafficHistory(c *fiber.Ctx) error {
	hours, err := queryHours(c, "hours", 24)
	if err != nil {
		return err
	}
	step, err := queryHours(c, "step", 1)
	if err != nil {
		return err
	}

	snapshots, err := h.trafficSvc.HistoricalSnapshots(hours, step)
	if err != nil {
		return h.toHTTPError(err, "Failed to generate traffic history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"snapshots": snapshots,
			"trends":    service.TrendSeries(snapshots),
		},
		"count": len(snapshots),
	})
}

// GetRecordedTraffic returns snapshots persisted by the poller within a time range
func (h *Handler) GetRecordedTraffic(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > service.MaxHistoryHours {
		hours = 24
	}

	data, err := h.dashboardSvc.GetRecordedSnapshots(c.UserContext(), hours)
	if err != nil {
		return h.toHTTPError(err, "Failed to fetch recorded traffic")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetForecast returns a prediction for the monitored roads
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	hours, err := queryHours(c, "hours", 1)
	if err != nil {
		return err
	}

	summary, err := h.predictionSvc.PredictTraffic(c.UserContext(), hours)
	if err != nil {
		return h.toHTTPError(err, "Failed to get prediction")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// GetRoute returns a synthetic route prediction between two place names
func (h *Handler) GetRoute(c *fiber.Ctx) error {
	hours, err := queryHours(c, "hours", 0)
	if err != nil {
		return err
	}

	route, err := h.predictionSvc.PredictRoute(c.UserContext(), c.Query("source"), c.Query("destination"), hours)
	if err != nil {
		return h.toHTTPError(err, "Failed to get route prediction")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    route,
	})
}

// GetAccuracy returns the simulated historical prediction accuracy
func (h *Handler) GetAccuracy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"accuracy": h.predictionSvc.HistoricalAccuracy(),
		},
	})
}
