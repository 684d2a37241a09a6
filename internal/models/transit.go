package models

// RouteType distinguishes transport modes in GTFS routes.txt.
type RouteType int

const (
	RouteTypeTram   RouteType = 0
	RouteTypeSubway RouteType = 1
	RouteTypeRail   RouteType = 2
	RouteTypeBus    RouteType = 3
)

// StopTimeRow is a stop_time joined with its stop and route, the unit the
// transit queries are computed from.
type StopTimeRow struct {
	RouteID       string
	RouteName     string
	RouteType     RouteType
	TripID        string
	StopID        string
	StopName      string
	Latitude      float64
	Longitude     float64
	DepartureTime string
	StopSequence  int
}

// TransitOption is a ride from a stop near the start to a stop near the
// destination on one route.
type TransitOption struct {
	Route         string    `json:"route"`
	RouteID       string    `json:"routeId"`
	Type          RouteType `json:"type"`
	StartStop     string    `json:"startStop"`
	StartLat      float64   `json:"startLat"`
	StartLon      float64   `json:"startLon"`
	StartDistance float64   `json:"startDistance"`
	DestStop      string    `json:"destStop"`
	DestLat       float64   `json:"destLat"`
	DestLon       float64   `json:"destLon"`
	Distance      float64   `json:"distance"`
	Duration      int       `json:"duration"`
	Seq1          int       `json:"seq1"`
	Seq2          int       `json:"seq2"`
}

// TransitSegment is the duration-ordered projection of a ride.
type TransitSegment struct {
	Route    string    `json:"route"`
	RouteID  string    `json:"routeId"`
	Type     RouteType `json:"type"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
	Seq1     int       `json:"seq1"`
	Seq2     int       `json:"seq2"`
	Duration int       `json:"duration"`
}

// RouteStop is one stop along a leg, used to draw the path.
type RouteStop struct {
	StopName string  `json:"stopName"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Sequence int     `json:"sequence"`
}
