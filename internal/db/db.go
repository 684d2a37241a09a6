package db

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Connect opens the MySQL pool described by dsn and sets conservative pool
// limits.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// IsDuplicateEntry reports whether err is a MySQL unique-key violation.
func IsDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

// EnsureSchema creates required tables if they do not exist.
func EnsureSchema(db *sql.DB, skip bool) error {
	if skip {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA)")
		return nil
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			errMsg := strings.ToLower(err.Error())
			if strings.Contains(errMsg, "duplicate") {
				// index already exists, nothing to do
				continue
			}
			if strings.Contains(errMsg, "permission denied") {
				log.Printf("EnsureSchema: unable to create index (permission denied): %v", err)
				continue
			}
			return err
		}
	}
	return nil
}

var schema = []string{`
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		name VARCHAR(100) NOT NULL,
		nickname VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(30) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		detailed_address VARCHAR(255) NOT NULL DEFAULT '',
		postal_code VARCHAR(10) NOT NULL DEFAULT '',
		emergency_call VARCHAR(30) NOT NULL DEFAULT '',
		soju_unit INT NOT NULL DEFAULT 0,
		soju_amount DOUBLE NOT NULL DEFAULT 0,
		beer_unit INT NOT NULL DEFAULT 0,
		beer_amount DOUBLE NOT NULL DEFAULT 0,
		verified TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS plans (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title VARCHAR(30) NOT NULL,
		memo VARCHAR(200) NULL,
		date_time DATETIME NOT NULL,
		arrival_time CHAR(5) NULL,
		alcohol_level TINYINT NULL,
		soju_amount INT NULL,
		beer_amount INT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS game_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		plan_id BIGINT NOT NULL,
		game_type VARCHAR(20) NOT NULL,
		score INT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS voices (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		log_id BIGINT NOT NULL UNIQUE,
		file_name VARCHAR(100) NOT NULL,
		file_url TEXT NOT NULL,
		FOREIGN KEY (log_id) REFERENCES game_logs(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS stop (
		stop_id VARCHAR(64) PRIMARY KEY,
		stop_name VARCHAR(255) NOT NULL,
		stop_lat DOUBLE NOT NULL,
		stop_lon DOUBLE NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS route (
		route_id VARCHAR(64) PRIMARY KEY,
		route_short_name VARCHAR(100) NOT NULL,
		route_type INT NOT NULL DEFAULT 3
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`, `
	CREATE TABLE IF NOT EXISTS stop_time (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		route_id VARCHAR(64) NOT NULL,
		trip_id VARCHAR(128) NOT NULL,
		stop_id VARCHAR(64) NOT NULL,
		departure_time CHAR(8) NOT NULL,
		stop_sequence INT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`}

var indexes = []string{
	`CREATE INDEX idx_plans_user_date ON plans(user_id, date_time);`,
	`CREATE INDEX idx_stop_latlon ON stop(stop_lat, stop_lon);`,
	`CREATE INDEX idx_stop_time_stop ON stop_time(stop_id, departure_time);`,
	`CREATE INDEX idx_stop_time_route ON stop_time(route_id, stop_sequence);`,
}
