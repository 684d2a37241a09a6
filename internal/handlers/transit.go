package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/service"
)

// TransitService is what the map endpoints need from the service layer.
type TransitService interface {
	Destinations(ctx context.Context, q service.TransitQuery) ([]models.TransitOption, error)
	Segments(ctx context.Context, q service.TransitQuery) ([]models.TransitSegment, error)
	RoutePath(ctx context.Context, routeID string, seq1, seq2 int) ([]models.RouteStop, error)
}

type TransitHandler struct {
	svc TransitService
}

func NewTransitHandler(svc TransitService) *TransitHandler {
	return &TransitHandler{svc: svc}
}

// Destinations handles GET /maps/transit.
func (h *TransitHandler) Destinations(c *fiber.Ctx) error {
	q, err := transitQuery(c)
	if err != nil {
		return err
	}
	options, err := h.svc.Destinations(c.UserContext(), q)
	if err != nil {
		return err
	}
	return list(c, "transit options loaded", options)
}

// Segments handles GET /maps/transit/segments.
func (h *TransitHandler) Segments(c *fiber.Ctx) error {
	q, err := transitQuery(c)
	if err != nil {
		return err
	}
	segments, err := h.svc.Segments(c.UserContext(), q)
	if err != nil {
		return err
	}
	return list(c, "transit segments loaded", segments)
}

// RoutePath handles GET /maps/route?routeId&seq1&seq2.
func (h *TransitHandler) RoutePath(c *fiber.Ctx) error {
	routeID := strings.TrimSpace(c.Query("routeId"))
	if routeID == "" {
		return apperror.BadRequest("routeId is required")
	}
	seq1, err := queryInt(c, "seq1")
	if err != nil {
		return err
	}
	seq2, err := queryInt(c, "seq2")
	if err != nil {
		return err
	}
	stops, err := h.svc.RoutePath(c.UserContext(), routeID, seq1, seq2)
	if err != nil {
		return err
	}
	return list(c, "route loaded", stops)
}

func transitQuery(c *fiber.Ctx) (service.TransitQuery, error) {
	var q service.TransitQuery
	var err error
	if q.StartLat, err = queryFloat(c, "startLat"); err != nil {
		return q, err
	}
	if q.StartLon, err = queryFloat(c, "startLon"); err != nil {
		return q, err
	}
	if q.DestLat, err = queryFloat(c, "destLat"); err != nil {
		return q, err
	}
	if q.DestLon, err = queryFloat(c, "destLon"); err != nil {
		return q, err
	}
	q.Time = strings.TrimSpace(c.Query("time"))
	return q, nil
}
