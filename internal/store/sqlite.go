package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no record exists for an identifier.
	ErrNotFound = errors.New("record not found")

	// ErrNoValidFields is returned when an update patch carries nothing to
	// apply.
	ErrNoValidFields = errors.New("no valid fields to update")
)

// Record is a persisted weather lookup.
type Record struct {
	ID           int64           `json:"id"`
	LocationName string          `json:"location_name"`
	Lat          float64         `json:"lat"`
	Lon          float64         `json:"lon"`
	StartDate    *string         `json:"start_date"`
	EndDate      *string         `json:"end_date"`
	WeatherData  json.RawMessage `json:"weather_data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Patch is a partial record update. Nil fields are left untouched; the set
// of patchable fields is fixed by this struct, so unknown request keys
// never reach the store.
type Patch struct {
	LocationName *string         `json:"location_name"`
	Lat          *float64        `json:"lat"`
	Lon          *float64        `json:"lon"`
	StartDate    *string         `json:"start_date"`
	EndDate      *string         `json:"end_date"`
	WeatherData  json.RawMessage `json:"weather_data"`
}

// IsEmpty reports whether the patch carries no fields to apply.
func (p Patch) IsEmpty() bool {
	return p.LocationName == nil && p.Lat == nil && p.Lon == nil &&
		p.StartDate == nil && p.EndDate == nil && p.WeatherData == nil
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location_name TEXT NOT NULL,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	start_date TEXT,
	end_date TEXT,
	weather_data TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_location_name ON records(location_name);
`

// SQLiteStore persists records in a single sqlite table, created at open.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new record and returns it with its assigned identifier
// and server timestamp. The weather document is stored as its serialized
// JSON text.
func (s *SQLiteStore) Create(ctx context.Context, locationName string, lat, lon float64, startDate, endDate *string, weatherData json.RawMessage) (Record, error) {
	createdAt := time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records(location_name, lat, lon, start_date, end_date, weather_data, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		locationName, lat, lon, startDate, endDate, weatherText(weatherData), createdAt.Format(time.RFC3339))
	if err != nil {
		return Record{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, err
	}
	return s.Get(ctx, id)
}

// Get returns the record with the given identifier, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location_name, lat, lon, start_date, end_date, weather_data, created_at
		 FROM records WHERE id = ?`, id)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns records in insertion order, paginated by skip/limit.
func (s *SQLiteStore) List(ctx context.Context, skip, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location_name, lat, lon, start_date, end_date, weather_data, created_at
		 FROM records ORDER BY id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update applies the non-nil patch fields to the record and returns the
// updated row. An empty patch returns ErrNoValidFields; an unknown
// identifier returns ErrNotFound.
func (s *SQLiteStore) Update(ctx context.Context, id int64, patch Patch) (Record, error) {
	if patch.IsEmpty() {
		return Record{}, ErrNoValidFields
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if patch.LocationName != nil {
		sets = append(sets, "location_name = ?")
		args = append(args, *patch.LocationName)
	}
	if patch.Lat != nil {
		sets = append(sets, "lat = ?")
		args = append(args, *patch.Lat)
	}
	if patch.Lon != nil {
		sets = append(sets, "lon = ?")
		args = append(args, *patch.Lon)
	}
	if patch.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, *patch.StartDate)
	}
	if patch.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, *patch.EndDate)
	}
	if patch.WeatherData != nil {
		sets = append(sets, "weather_data = ?")
		args = append(args, string(patch.WeatherData))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE records SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return Record{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, err
	}
	if n == 0 {
		return Record{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the record with the given identifier, or returns
// ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes records created before the cutoff and returns the
// number deleted. RFC3339 UTC timestamps compare lexicographically, so this
// is a plain string comparison in sqlite.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE created_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var startDate, endDate, weatherData sql.NullString
	var createdAt string

	if err := scan(&rec.ID, &rec.LocationName, &rec.Lat, &rec.Lon, &startDate, &endDate, &weatherData, &createdAt); err != nil {
		return Record{}, err
	}

	if startDate.Valid {
		rec.StartDate = &startDate.String
	}
	if endDate.Valid {
		rec.EndDate = &endDate.String
	}
	if weatherData.Valid {
		rec.WeatherData = json.RawMessage(weatherData.String)
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt = ts
	return rec, nil
}

func weatherText(data json.RawMessage) any {
	if data == nil {
		return nil
	}
	return string(data)
}
