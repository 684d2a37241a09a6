package gtfs

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Loader downloads a static GTFS feed and replaces the stop, route and
// stop_time tables with it.
type Loader struct {
	feedURL     string
	fallbackURL string
	httpClient  *http.Client
}

// Summary describes the result of a GTFS sync.
type Summary struct {
	FeedVersion       string    `json:"feed_version"`
	StopsImported     int       `json:"stops_imported"`
	RoutesImported    int       `json:"routes_imported"`
	StopTimesImported int       `json:"stop_times_imported"`
	Skipped           int       `json:"skipped"`
	DownloadedAt      time.Time `json:"downloaded_at"`
	SourceURL         string    `json:"source_url"`
}

// NewLoader builds a loader for feedURL. fallbackURL is tried when the
// primary download fails.
func NewLoader(feedURL, fallbackURL string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Loader{
		feedURL:     strings.TrimSpace(feedURL),
		fallbackURL: strings.TrimSpace(fallbackURL),
		httpClient:  client,
	}
}

// Sync downloads the feed and imports it.
func (l *Loader) Sync(ctx context.Context, db *sql.DB) (*Summary, error) {
	if l.feedURL == "" {
		return nil, errors.New("gtfs loader: feed url is empty")
	}
	data, sourceURL, err := l.obtainFeed(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := Import(ctx, db, data)
	if err != nil {
		return nil, err
	}
	summary.SourceURL = sourceURL
	return summary, nil
}

// Import loads a zipped feed in a single transaction: the previous data is
// only replaced when every file was read.
func Import(ctx context.Context, db *sql.DB, data []byte) (*Summary, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("gtfs loader: open zip: %w", err)
	}

	files := make(map[string]*zip.File, 4)
	for _, name := range []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"} {
		f, err := findFile(zr, name)
		if err != nil {
			return nil, err
		}
		files[name] = f
	}

	// stop_time rows carry their route directly, so trips are only a lookup.
	tripRoutes, err := readTrips(files["trips.txt"])
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("gtfs loader: begin tx: %w", err)
	}
	defer tx.Rollback()

	log.Println("🚌 gtfs loader: clearing old data...")
	for _, table := range []string{"stop_time", "route", "stop"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("gtfs loader: clear %s: %w", table, err)
		}
	}

	summary := &Summary{
		FeedVersion:  extractFeedVersion(zr),
		DownloadedAt: time.Now().UTC(),
	}

	var skipped int
	if summary.StopsImported, skipped, err = importStops(ctx, tx, files["stops.txt"]); err != nil {
		return nil, err
	}
	summary.Skipped += skipped
	if summary.RoutesImported, skipped, err = importRoutes(ctx, tx, files["routes.txt"]); err != nil {
		return nil, err
	}
	summary.Skipped += skipped
	if summary.StopTimesImported, skipped, err = importStopTimes(ctx, tx, files["stop_times.txt"], tripRoutes); err != nil {
		return nil, err
	}
	summary.Skipped += skipped

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("gtfs loader: commit: %w", err)
	}
	log.Printf("✅ gtfs loader: %d stops, %d routes, %d stop times (skipped %d)",
		summary.StopsImported, summary.RoutesImported, summary.StopTimesImported, summary.Skipped)
	return summary, nil
}

func (l *Loader) obtainFeed(ctx context.Context) ([]byte, string, error) {
	data, err := l.download(ctx, l.feedURL)
	if err == nil {
		return data, l.feedURL, nil
	}

	fallback := l.fallbackURL
	if fallback != "" && !strings.EqualFold(fallback, l.feedURL) {
		fbData, fbErr := l.download(ctx, fallback)
		if fbErr == nil {
			return fbData, fallback, nil
		}
		return nil, "", fmt.Errorf("%w; fallback %s failed: %v", err, fallback, fbErr)
	}
	return nil, "", err
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gtfs loader: build request for %s: %w", url, err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gtfs loader: download feed %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gtfs loader: download feed %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gtfs loader: read feed %s: %w", url, err)
	}
	return data, nil
}

func findFile(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("gtfs loader: file %s not found in archive", name)
}

func extractFeedVersion(zr *zip.Reader) string {
	file, err := findFile(zr, "feed_info.txt")
	if err != nil {
		return ""
	}
	var version string
	_, _ = eachRecord(file, nil, func(r record) error {
		if version == "" {
			version = r.get("feed_version")
		}
		return nil
	})
	return version
}

// record is one CSV row addressed by header name.
type record struct {
	fields []string
	idx    map[string]int
}

func (r record) get(key string) string {
	if pos, ok := r.idx[key]; ok && pos < len(r.fields) {
		return strings.TrimSpace(r.fields[pos])
	}
	return ""
}

// errSkip makes eachRecord count the row as skipped and keep going.
var errSkip = errors.New("skip")

// eachRecord calls fn for every row of file. Malformed rows are skipped;
// only header problems and errors other than errSkip abort.
func eachRecord(file *zip.File, required []string, fn func(record) error) (skipped int, err error) {
	rc, err := file.Open()
	if err != nil {
		return 0, fmt.Errorf("gtfs loader: open %s: %w", file.Name, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("gtfs loader: read %s header: %w", file.Name, err)
	}
	idx := headerIndex(header)
	for _, field := range required {
		if _, ok := idx[field]; !ok {
			return 0, fmt.Errorf("gtfs loader: missing column %s in %s", field, file.Name)
		}
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			skipped++
			continue
		}
		if err := fn(record{fields: fields, idx: idx}); err != nil {
			if errors.Is(err, errSkip) {
				skipped++
				continue
			}
			return skipped, err
		}
	}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, field := range header {
		// Some feeds start with a UTF-8 BOM.
		field = strings.TrimPrefix(field, "\ufeff")
		idx[strings.TrimSpace(strings.ToLower(field))] = i
	}
	return idx
}

func readTrips(file *zip.File) (map[string]string, error) {
	trips := make(map[string]string)
	_, err := eachRecord(file, []string{"trip_id", "route_id"}, func(r record) error {
		tripID, routeID := r.get("trip_id"), r.get("route_id")
		if tripID == "" || routeID == "" {
			return errSkip
		}
		trips[tripID] = routeID
		return nil
	})
	return trips, err
}

func importStops(ctx context.Context, tx *sql.Tx, file *zip.File) (int, int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stop (stop_id, stop_name, stop_lat, stop_lon) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("gtfs loader: prepare insert stop: %w", err)
	}
	defer stmt.Close()

	count := 0
	skipped, err := eachRecord(file, []string{"stop_id", "stop_name", "stop_lat", "stop_lon"}, func(r record) error {
		stopID := r.get("stop_id")
		lat, latErr := strconv.ParseFloat(r.get("stop_lat"), 64)
		lon, lonErr := strconv.ParseFloat(r.get("stop_lon"), 64)
		if stopID == "" || latErr != nil || lonErr != nil {
			return errSkip
		}
		if _, err := stmt.ExecContext(ctx, stopID, r.get("stop_name"), lat, lon); err != nil {
			return fmt.Errorf("gtfs loader: insert stop %s: %w", stopID, err)
		}
		count++
		return nil
	})
	return count, skipped, err
}

func importRoutes(ctx context.Context, tx *sql.Tx, file *zip.File) (int, int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO route (route_id, route_short_name, route_type) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("gtfs loader: prepare insert route: %w", err)
	}
	defer stmt.Close()

	count := 0
	skipped, err := eachRecord(file, []string{"route_id"}, func(r record) error {
		routeID := r.get("route_id")
		if routeID == "" {
			return errSkip
		}
		name := r.get("route_short_name")
		if name == "" {
			name = r.get("route_long_name")
		}
		routeType := 3
		if v, err := strconv.Atoi(r.get("route_type")); err == nil {
			routeType = v
		}
		if _, err := stmt.ExecContext(ctx, routeID, name, routeType); err != nil {
			return fmt.Errorf("gtfs loader: insert route %s: %w", routeID, err)
		}
		count++
		return nil
	})
	return count, skipped, err
}

func importStopTimes(ctx context.Context, tx *sql.Tx, file *zip.File, tripRoutes map[string]string) (int, int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stop_time
		(route_id, trip_id, stop_id, departure_time, stop_sequence)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("gtfs loader: prepare insert stop_time: %w", err)
	}
	defer stmt.Close()

	count := 0
	skipped, err := eachRecord(file, []string{"trip_id", "stop_id", "stop_sequence"}, func(r record) error {
		tripID, stopID := r.get("trip_id"), r.get("stop_id")
		routeID, ok := tripRoutes[tripID]
		if !ok || stopID == "" {
			return errSkip
		}
		departure, ok := NormalizeTime(r.get("departure_time"))
		if !ok {
			departure, ok = NormalizeTime(r.get("arrival_time"))
		}
		seq, err := strconv.Atoi(r.get("stop_sequence"))
		if !ok || err != nil {
			return errSkip
		}
		if _, err := stmt.ExecContext(ctx, routeID, tripID, stopID, departure, seq); err != nil {
			return fmt.Errorf("gtfs loader: insert stop_time %s/%d: %w", tripID, seq, err)
		}
		count++
		if count%100000 == 0 {
			log.Printf("   imported %d stop times...", count)
		}
		return nil
	})
	return count, skipped, err
}

// NormalizeTime zero-pads a GTFS H:MM:SS time to HH:MM:SS so departure
// times compare correctly as strings. Hours past 24 are kept.
func NormalizeTime(v string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", false
		}
		nums[i] = n
	}
	if nums[1] > 59 || nums[2] > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d:%02d", nums[0], nums[1], nums[2]), true
}
