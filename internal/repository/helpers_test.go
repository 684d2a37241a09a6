package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/yourorg/imnotdurnk/internal/models"
)

var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		nickname TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		detailed_address TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		emergency_call TEXT NOT NULL DEFAULT '',
		soju_unit INTEGER NOT NULL DEFAULT 0,
		soju_amount REAL NOT NULL DEFAULT 0,
		beer_unit INTEGER NOT NULL DEFAULT 0,
		beer_amount REAL NOT NULL DEFAULT 0,
		verified INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		memo TEXT NULL,
		date_time DATETIME NOT NULL,
		arrival_time TEXT NULL,
		alcohol_level INTEGER NULL,
		soju_amount INTEGER NULL,
		beer_amount INTEGER NULL
	)`,
	`CREATE TABLE game_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		game_type TEXT NOT NULL,
		score INTEGER NOT NULL
	)`,
	`CREATE TABLE voices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_id INTEGER NOT NULL UNIQUE REFERENCES game_logs(id) ON DELETE CASCADE,
		file_name TEXT NOT NULL,
		file_url TEXT NOT NULL
	)`,
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
	// a single connection keeps every query on the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func mustCreateUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	id, err := NewUserRepository(db).Create(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "tester",
	})
	require.NoError(t, err)
	return id
}

func mustCreatePlan(t *testing.T, db *sql.DB, userID int64, title string, at time.Time) int64 {
	t.Helper()
	id, err := NewPlanRepository(db).Create(context.Background(), &models.Plan{
		UserID:   userID,
		Title:    title,
		DateTime: at,
	})
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }
