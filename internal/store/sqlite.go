package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/reach-cli/internal/geo"
	"github.com/sells-group/reach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	origin_lat      REAL NOT NULL,
	origin_lon      REAL NOT NULL,
	mode            TEXT NOT NULL,
	minutes         INTEGER NOT NULL,
	state           TEXT NOT NULL DEFAULT 'idle',
	isochrone       TEXT,
	isochrone_stale INTEGER NOT NULL DEFAULT 0,
	batch_id        TEXT NOT NULL DEFAULT '',
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS address_records (
	session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	input          TEXT NOT NULL,
	label          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	lat            REAL,
	lon            REAL,
	in_zone        INTEGER,
	travel_minutes REAL,
	PRIMARY KEY (session_id, position)
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession upserts the session and replaces its records in one
// transaction.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *model.Session) error {
	var isoJSON sql.NullString
	if raw := sess.Isochrone.Raw(); raw != nil {
		isoJSON = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save session")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, origin_lat, origin_lon, mode, minutes, state, isochrone, isochrone_stale, batch_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			origin_lat = excluded.origin_lat,
			origin_lon = excluded.origin_lon,
			mode = excluded.mode,
			minutes = excluded.minutes,
			state = excluded.state,
			isochrone = excluded.isochrone,
			isochrone_stale = excluded.isochrone_stale,
			batch_id = excluded.batch_id,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Origin.Lat, sess.Origin.Lon, string(sess.Mode), sess.Minutes,
		string(sess.State), isoJSON, sess.IsochroneStale, sess.BatchID, sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert session %s", sess.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM address_records WHERE session_id = ?`, sess.ID); err != nil {
		return eris.Wrapf(err, "sqlite: clear records of session %s", sess.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO address_records (session_id, position, input, label, status, error, lat, lon, in_zone, travel_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare record insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, r := range sess.Records {
		var lat, lon sql.NullFloat64
		if r.Coordinate != nil {
			lat = sql.NullFloat64{Float64: r.Coordinate.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: r.Coordinate.Lon, Valid: true}
		}
		var travel sql.NullFloat64
		if r.TravelMinutes != nil {
			travel = sql.NullFloat64{Float64: *r.TravelMinutes, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			sess.ID, i, r.Input, r.Label, string(r.Status), r.Error,
			lat, lon, containmentToDB(r.InZone), travel,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert record %d of session %s", i, sess.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save session")
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, origin_lat, origin_lon, mode, minutes, state, isochrone, isochrone_stale, batch_id, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrSessionNotFound, "sqlite: get session %s", id)
	}
	if err != nil {
		return nil, err
	}
	return sess, s.loadRecords(ctx, sess)
}

func (s *SQLiteStore) LatestSession(ctx context.Context) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, origin_lat, origin_lon, mode, minutes, state, isochrone, isochrone_stale, batch_id, updated_at
		 FROM sessions ORDER BY updated_at DESC LIMIT 1`,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, s.loadRecords(ctx, sess)
}

func (s *SQLiteStore) loadRecords(ctx context.Context, sess *model.Session) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input, label, status, error, lat, lon, in_zone, travel_minutes
		 FROM address_records WHERE session_id = ? ORDER BY position`,
		sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: load records of session %s", sess.ID)
	}
	defer rows.Close() //nolint:errcheck

	sess.Records = []model.AddressRecord{}
	for rows.Next() {
		var (
			r        model.AddressRecord
			status   string
			lat, lon sql.NullFloat64
			inZone   sql.NullInt64
			travel   sql.NullFloat64
		)
		if err := rows.Scan(&r.Input, &r.Label, &status, &r.Error, &lat, &lon, &inZone, &travel); err != nil {
			return eris.Wrap(err, "sqlite: scan record")
		}
		r.Status = model.GeocodeStatus(status)
		if lat.Valid && lon.Valid {
			r.Coordinate = &geo.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
		}
		r.InZone = containmentFromDB(inZone)
		if travel.Valid {
			m := travel.Float64
			r.TravelMinutes = &m
		}
		sess.Records = append(sess.Records, r)
	}
	return eris.Wrap(rows.Err(), "sqlite: load records iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

// scanSession returns sql.ErrNoRows unwrapped so callers can tell a missing
// row from a failure.
func scanSession(row scannable) (*model.Session, error) {
	var (
		sess    model.Session
		mode    string
		state   string
		isoJSON sql.NullString
	)
	err := row.Scan(&sess.ID, &sess.Origin.Lat, &sess.Origin.Lon, &mode, &sess.Minutes,
		&state, &isoJSON, &sess.IsochroneStale, &sess.BatchID, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan session")
	}

	sess.Mode, err = geo.ParseTravelMode(mode)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: session %s", sess.ID)
	}
	sess.State = model.State(state)
	if !sess.State.Valid() {
		return nil, eris.Errorf("sqlite: session %s has unknown state %q", sess.ID, state)
	}
	if isoJSON.Valid {
		iso, err := geo.ParseIsochrone([]byte(isoJSON.String))
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse isochrone of session %s", sess.ID)
		}
		sess.Isochrone = iso
	}
	sess.UpdatedAt = sess.UpdatedAt.UTC()
	return &sess, nil
}

func containmentToDB(c geo.Containment) sql.NullInt64 {
	switch c {
	case geo.Inside:
		return sql.NullInt64{Int64: 1, Valid: true}
	case geo.Outside:
		return sql.NullInt64{Int64: 0, Valid: true}
	default:
		return sql.NullInt64{}
	}
}

func containmentFromDB(v sql.NullInt64) geo.Containment {
	if !v.Valid {
		return geo.Unknown
	}
	return geo.ContainmentOf(v.Int64 != 0)
}
