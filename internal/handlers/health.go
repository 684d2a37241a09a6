package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/cache"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]string      `json:"services"`
	Transit   *TransitCounts         `json:"transit,omitempty"`
	Caches    map[string]cache.Stats `json:"caches,omitempty"`
}

// TransitCounts is the size of the imported GTFS data.
type TransitCounts struct {
	Stops     int64 `json:"stops"`
	Routes    int64 `json:"routes"`
	StopTimes int64 `json:"stopTimes"`
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type TransitCounter interface {
	Counts(ctx context.Context) (stops, routes, stopTimes int64, err error)
}

type CacheStatter interface {
	Stats() map[string]cache.Stats
}

type HealthHandler struct {
	db      Pinger
	transit TransitCounter
	caches  CacheStatter
}

// NewHealthHandler builds the health check. Any dependency may be nil.
func NewHealthHandler(db Pinger, transit TransitCounter, caches CacheStatter) *HealthHandler {
	return &HealthHandler{db: db, transit: transit, caches: caches}
}

// Health reports database reachability and the GTFS import size. A degraded
// state answers 503.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: database
	// ============================================================================
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: GTFS data
	// ============================================================================
	var counts *TransitCounts
	if h.transit != nil && overall == "healthy" {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		stops, routes, stopTimes, err := h.transit.Counts(ctx)
		switch {
		case err != nil:
			services["gtfs"] = "unhealthy: " + err.Error()
			overall = "degraded"
		case stops == 0:
			services["gtfs"] = "empty"
		default:
			services["gtfs"] = "healthy"
		}
		if err == nil {
			counts = &TransitCounts{Stops: stops, Routes: routes, StopTimes: stopTimes}
		}
	}

	resp := HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Transit:   counts,
	}
	if h.caches != nil {
		resp.Caches = h.caches.Stats()
	}

	status := fiber.StatusOK
	if overall != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
