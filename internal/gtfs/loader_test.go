package gtfs

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var testSchema = []string{
	`CREATE TABLE stop (
		stop_id TEXT PRIMARY KEY,
		stop_name TEXT NOT NULL,
		stop_lat REAL NOT NULL,
		stop_lon REAL NOT NULL
	)`,
	`CREATE TABLE route (
		route_id TEXT PRIMARY KEY,
		route_short_name TEXT NOT NULL,
		route_type INTEGER NOT NULL DEFAULT 3
	)`,
	`CREATE TABLE stop_time (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id TEXT NOT NULL,
		trip_id TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		departure_time TEXT NOT NULL,
		stop_sequence INTEGER NOT NULL
	)`,
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func buildFeed(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sampleFeed() map[string]string {
	return map[string]string{
		"feed_info.txt": "feed_publisher_name,feed_version\nSeoul,2024.05\n",
		"stops.txt": "\ufeffstop_id,stop_name,stop_lat,stop_lon\n" +
			"S1,City Hall,37.5658,126.9772\n" +
			"S2,Gangnam,37.4979,127.0276\n" +
			"BAD,Broken,north,126.0\n",
		"routes.txt": "route_id,route_short_name,route_long_name,route_type\n" +
			"R472,472,,3\n" +
			"L2,,Line 2,1\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R472,WD,T1\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,7:05:00,7:05:00,S1,1\n" +
			"T1,25:40:00,25:40:00,S2,9\n" +
			"UNKNOWN,08:00:00,08:00:00,S1,1\n",
	}
}

func TestImport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	summary, err := Import(ctx, db, buildFeed(t, sampleFeed()))
	require.NoError(t, err)
	assert.Equal(t, "2024.05", summary.FeedVersion)
	assert.Equal(t, 2, summary.StopsImported)
	assert.Equal(t, 2, summary.RoutesImported)
	assert.Equal(t, 2, summary.StopTimesImported)
	assert.Equal(t, 2, summary.Skipped)

	var name string
	require.NoError(t, db.QueryRow(`SELECT route_short_name FROM route WHERE route_id = 'L2'`).Scan(&name))
	assert.Equal(t, "Line 2", name)

	rows, err := db.Query(`SELECT route_id, departure_time FROM stop_time ORDER BY stop_sequence`)
	require.NoError(t, err)
	defer rows.Close()
	var got []string
	for rows.Next() {
		var routeID, dep string
		require.NoError(t, rows.Scan(&routeID, &dep))
		got = append(got, routeID+" "+dep)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"R472 07:05:00", "R472 25:40:00"}, got)
}

func TestImportReplacesPreviousData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := Import(ctx, db, buildFeed(t, sampleFeed()))
	require.NoError(t, err)
	_, err = Import(ctx, db, buildFeed(t, sampleFeed()))
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM stop`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestImportRollsBackOnBadFile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := Import(ctx, db, buildFeed(t, sampleFeed()))
	require.NoError(t, err)

	broken := sampleFeed()
	broken["stop_times.txt"] = "trip_id,departure_time\nT1,07:00:00\n"
	_, err = Import(ctx, db, buildFeed(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column stop_id")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM stop_time`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestImportMissingFile(t *testing.T) {
	files := sampleFeed()
	delete(files, "trips.txt")
	_, err := Import(context.Background(), setupTestDB(t), buildFeed(t, files))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trips.txt")
}

func TestSyncUsesFallback(t *testing.T) {
	feed := buildFeed(t, sampleFeed())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(feed)
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL+"/missing.zip", srv.URL+"/gtfs.zip", srv.Client())
	summary, err := loader.Sync(context.Background(), setupTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/gtfs.zip", summary.SourceURL)
	assert.Equal(t, 2, summary.StopsImported)
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7:05:00", "07:05:00", true},
		{"23:59:59", "23:59:59", true},
		{"25:10:00", "25:10:00", true},
		{"07:60:00", "", false},
		{"07:05", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeTime(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
