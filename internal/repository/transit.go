package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourorg/imnotdurnk/internal/geometry"
	"github.com/yourorg/imnotdurnk/internal/models"
)

type TransitRepository struct {
	db *sql.DB
}

func NewTransitRepository(db *sql.DB) *TransitRepository {
	return &TransitRepository{db: db}
}

// StopTimesInBox returns stop times at stops inside box departing strictly
// after the given "HH:MM:SS" time. Exact distance filtering is left to the
// caller.
func (r *TransitRepository) StopTimesInBox(ctx context.Context, box geometry.Box, after string) ([]models.StopTimeRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT st.route_id, r.route_short_name, r.route_type, st.trip_id, s.stop_id,
			s.stop_name, s.stop_lat, s.stop_lon, st.departure_time, st.stop_sequence
		FROM stop s
		JOIN stop_time st ON st.stop_id = s.stop_id
		JOIN route r ON r.route_id = st.route_id
		WHERE s.stop_lat BETWEEN ? AND ? AND s.stop_lon BETWEEN ? AND ?
			AND st.departure_time > ?`,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, after)
	if err != nil {
		return nil, fmt.Errorf("query stop times: %w", err)
	}
	defer rows.Close()

	out := make([]models.StopTimeRow, 0)
	for rows.Next() {
		var st models.StopTimeRow
		if err := rows.Scan(&st.RouteID, &st.RouteName, &st.RouteType, &st.TripID, &st.StopID,
			&st.StopName, &st.Latitude, &st.Longitude, &st.DepartureTime, &st.StopSequence); err != nil {
			return nil, fmt.Errorf("scan stop time: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// RoutePath lists the stops of one representative trip of routeID whose
// sequence lies in [seq1, seq2], in travel order.
func (r *TransitRepository) RoutePath(ctx context.Context, routeID string, seq1, seq2 int) ([]models.RouteStop, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.stop_name, s.stop_lat, s.stop_lon, st.stop_sequence
		FROM stop_time st
		JOIN stop s ON s.stop_id = st.stop_id
		WHERE st.route_id = ?
			AND st.trip_id = (SELECT MIN(trip_id) FROM stop_time WHERE route_id = ?)
			AND st.stop_sequence BETWEEN ? AND ?
		ORDER BY st.stop_sequence ASC`, routeID, routeID, seq1, seq2)
	if err != nil {
		return nil, fmt.Errorf("query route path: %w", err)
	}
	defer rows.Close()

	out := make([]models.RouteStop, 0)
	for rows.Next() {
		var rs models.RouteStop
		if err := rows.Scan(&rs.StopName, &rs.Lat, &rs.Lon, &rs.Sequence); err != nil {
			return nil, fmt.Errorf("scan route stop: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Counts returns the number of imported stops, routes and stop times.
func (r *TransitRepository) Counts(ctx context.Context) (stops, routes, stopTimes int64, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM stop), (SELECT COUNT(*) FROM route), (SELECT COUNT(*) FROM stop_time)`).
		Scan(&stops, &routes, &stopTimes)
	if err != nil {
		err = fmt.Errorf("count transit rows: %w", err)
	}
	return
}
