package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/geometry"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/validation"
)

const (
	// NearbyRadiusMeters bounds how far a stop may be from the start or the
	// destination.
	NearbyRadiusMeters = 500.0
	transitCacheTTL    = 10 * time.Minute
)

// TransitStore reads the imported GTFS tables.
type TransitStore interface {
	StopTimesInBox(ctx context.Context, box geometry.Box, after string) ([]models.StopTimeRow, error)
	RoutePath(ctx context.Context, routeID string, seq1, seq2 int) ([]models.RouteStop, error)
}

// TransitQuery is a start point, a destination and the earliest departure.
type TransitQuery struct {
	StartLat float64
	StartLon float64
	DestLat  float64
	DestLon  float64
	Time     string
}

type TransitService struct {
	store TransitStore
	cache gcache.Cache
}

func NewTransitService(store TransitStore, cacheSize int) *TransitService {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	return &TransitService{
		store: store,
		cache: gcache.New(cacheSize).
			LRU().
			Expiration(transitCacheTTL).
			Build(),
	}
}

// Destinations lists rides from a stop within 500 m of the start to a stop
// within 500 m of the destination, nearest to the destination first.
func (s *TransitService) Destinations(ctx context.Context, q TransitQuery) ([]models.TransitOption, error) {
	after, err := checkTransitQuery(q)
	if err != nil {
		return nil, err
	}

	key := transitCacheKey(q, after)
	if cached, err := s.cache.Get(key); err == nil {
		if options, ok := cached.([]models.TransitOption); ok {
			return options, nil
		}
	}

	options, err := s.options(ctx, q, after)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Distance != options[j].Distance {
			return options[i].Distance < options[j].Distance
		}
		return options[i].Duration < options[j].Duration
	})

	_ = s.cache.Set(key, options)
	return options, nil
}

// Segments lists the same rides as Destinations, shortest first.
func (s *TransitService) Segments(ctx context.Context, q TransitQuery) ([]models.TransitSegment, error) {
	after, err := checkTransitQuery(q)
	if err != nil {
		return nil, err
	}

	options, err := s.options(ctx, q, after)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Duration != options[j].Duration {
			return options[i].Duration < options[j].Duration
		}
		return options[i].Distance < options[j].Distance
	})

	segments := make([]models.TransitSegment, 0, len(options))
	for _, o := range options {
		segments = append(segments, models.TransitSegment{
			Route:    o.Route,
			RouteID:  o.RouteID,
			Type:     o.Type,
			Start:    o.StartStop,
			End:      o.DestStop,
			Seq1:     o.Seq1,
			Seq2:     o.Seq2,
			Duration: o.Duration,
		})
	}
	return segments, nil
}

// RoutePath lists the stops travelled between two sequence numbers.
func (s *TransitService) RoutePath(ctx context.Context, routeID string, seq1, seq2 int) ([]models.RouteStop, error) {
	routeID = strings.TrimSpace(routeID)
	if routeID == "" {
		return nil, apperror.BadRequest("routeId is required")
	}
	if seq1 < 0 || seq2 < seq1 {
		return nil, apperror.BadRequest("seq1 must not be greater than seq2")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	stops, err := s.store.RoutePath(ctx, routeID, seq1, seq2)
	if err != nil {
		return nil, internal("failed to load route", err)
	}
	return stops, nil
}

type rideKey struct {
	routeID   string
	startStop string
	destStop  string
}

// options joins stop times near the start with later stop times of the same
// trip near the destination. For each (route, start stop, destination stop)
// the earliest departure wins.
func (s *TransitService) options(ctx context.Context, q TransitQuery, after string) ([]models.TransitOption, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	starts, err := s.nearby(ctx, q.StartLat, q.StartLon, after)
	if err != nil {
		return nil, err
	}
	if len(starts) == 0 {
		return []models.TransitOption{}, nil
	}
	dests, err := s.nearby(ctx, q.DestLat, q.DestLon, after)
	if err != nil {
		return nil, err
	}

	byTrip := make(map[string][]nearbyStopTime)
	for _, d := range dests {
		byTrip[d.TripID] = append(byTrip[d.TripID], d)
	}

	best := make(map[rideKey]models.TransitOption)
	bestDeparture := make(map[rideKey]int)
	// paired on trip id: a shared route id also matches the opposite direction
	for _, st := range starts {
		for _, d := range byTrip[st.TripID] {
			if d.StopSequence <= st.StopSequence {
				continue
			}
			key := rideKey{routeID: st.RouteID, startStop: st.StopID, destStop: d.StopID}
			dep := st.seconds
			if prev, ok := bestDeparture[key]; ok && prev <= dep {
				continue
			}
			bestDeparture[key] = dep
			best[key] = models.TransitOption{
				Route:         st.RouteName,
				RouteID:       st.RouteID,
				Type:          st.RouteType,
				StartStop:     st.StopName,
				StartLat:      st.Latitude,
				StartLon:      st.Longitude,
				StartDistance: st.distance,
				DestStop:      d.StopName,
				DestLat:       d.Latitude,
				DestLon:       d.Longitude,
				Distance:      d.distance,
				Duration:      (d.seconds - st.seconds) / 60,
				Seq1:          st.StopSequence,
				Seq2:          d.StopSequence,
			}
		}
	}

	out := make([]models.TransitOption, 0, len(best))
	for _, o := range best {
		out = append(out, o)
	}
	return out, nil
}

type nearbyStopTime struct {
	models.StopTimeRow
	distance float64
	seconds  int
}

func (s *TransitService) nearby(ctx context.Context, lat, lon float64, after string) ([]nearbyStopTime, error) {
	box := geometry.BoundingBox(lat, lon, NearbyRadiusMeters)
	rows, err := s.store.StopTimesInBox(ctx, box, after)
	if err != nil {
		return nil, internal("failed to query stop times", err)
	}

	out := make([]nearbyStopTime, 0, len(rows))
	for _, r := range rows {
		d := geometry.DistanceMeters(lat, lon, r.Latitude, r.Longitude)
		if d >= NearbyRadiusMeters {
			continue
		}
		secs, ok := gtfsSeconds(r.DepartureTime)
		if !ok {
			continue
		}
		out = append(out, nearbyStopTime{StopTimeRow: r, distance: d, seconds: secs})
	}
	return out, nil
}

func checkTransitQuery(q TransitQuery) (string, error) {
	if err := validation.ValidateCoordinatePair(q.StartLat, q.StartLon, "start"); err != nil {
		return "", apperror.BadRequest(err.Error())
	}
	if err := validation.ValidateCoordinatePair(q.DestLat, q.DestLon, "dest"); err != nil {
		return "", apperror.BadRequest(err.Error())
	}
	if validation.IsZeroCoordinate(q.StartLat, q.StartLon) || validation.IsZeroCoordinate(q.DestLat, q.DestLon) {
		return "", apperror.BadRequest("location is unavailable")
	}
	t := strings.TrimSpace(q.Time)
	if !validation.CheckClock(t) {
		return "", apperror.BadRequest("time must be HH:mm or HH:mm:ss")
	}
	if len(t) == len("15:04") {
		t += ":00"
	}
	return t, nil
}

// transitCacheKey keeps full coordinate precision; two nearby start points
// can see different stops inside the radius.
func transitCacheKey(q TransitQuery, after string) string {
	coord := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{coord(q.StartLat), coord(q.StartLon), coord(q.DestLat), coord(q.DestLon), after}, ",")
}

// gtfsSeconds parses "H:MM:SS" or "HH:MM:SS"; hours may exceed 23 for trips
// running past midnight.
func gtfsSeconds(v string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m > 59 || sec > 59 || h < 0 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
