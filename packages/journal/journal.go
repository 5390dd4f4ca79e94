// Package journal keeps a local SQLite record of position reports and the
// commands the server answered with.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id    INTEGER NOT NULL,
	latitude    REAL    NOT NULL,
	longitude   REAL    NOT NULL,
	altitude    INTEGER NOT NULL,
	bearing     INTEGER NOT NULL,
	fix         INTEGER NOT NULL,
	command     TEXT    NOT NULL,
	reported_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_asset ON reports (asset_id, reported_at);
`

// Report is one journal entry.
type Report struct {
	ID         int64
	AssetID    int64
	Latitude   float64
	Longitude  float64
	Altitude   uint
	Bearing    uint16
	Fix        uint8
	Command    string
	ReportedAt time.Time
}

// Journal is a handle on the report database.
type Journal struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens or creates the journal at connectionString, which is either
// sqlite://path or sqlite:path.
func Open(connectionString string) (*Journal, error) {
	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise journal: %w", err)
	}

	return &Journal{db: db, queryTimeout: 30 * time.Second}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends r. A zero ReportedAt is set to now.
func (j *Journal) Record(r Report) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), j.queryTimeout)
	defer cancel()

	if r.ReportedAt.IsZero() {
		r.ReportedAt = time.Now()
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO reports (asset_id, latitude, longitude, altitude, bearing, fix, command, reported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AssetID, r.Latitude, r.Longitude, r.Altitude, r.Bearing, r.Fix, r.Command, r.ReportedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("record report: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit reports for assetID, newest first.
func (j *Journal) Recent(assetID int64, limit int) ([]Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), j.queryTimeout)
	defer cancel()

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, asset_id, latitude, longitude, altitude, bearing, fix, command, reported_at
		 FROM reports WHERE asset_id = ? ORDER BY reported_at DESC, id DESC LIMIT ?`,
		assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	reports := make([]Report, 0)
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.AssetID, &r.Latitude, &r.Longitude, &r.Altitude,
			&r.Bearing, &r.Fix, &r.Command, &r.ReportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return reports, nil
}

// parseConnectionString strips the sqlite scheme from connStr.
// Supported formats:
// - sqlite://path/to/journal.db
// - sqlite:./journal.db
func parseConnectionString(connStr string) (string, error) {
	connStr = strings.TrimSpace(connStr)

	if strings.HasPrefix(connStr, "sqlite://") {
		return strings.TrimPrefix(connStr, "sqlite://"), nil
	}
	if strings.HasPrefix(connStr, "sqlite:") {
		return strings.TrimPrefix(connStr, "sqlite:"), nil
	}
	return "", fmt.Errorf("unsupported journal connection string: %s", connStr)
}
