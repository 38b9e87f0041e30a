package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/safezones/internal/model"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = eris.New("run not found")

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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	city       TEXT NOT NULL,
	method     TEXT NOT NULL,
	crs        TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'queued',
	phases     TEXT NOT NULL DEFAULT '[]',
	stats      TEXT,
	files      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_city ON runs(city);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.Run, stats any, files map[string]string) error {
	if run.ID == "" {
		return eris.New("sqlite: run has no id")
	}
	phases := run.Phases
	if phases == nil {
		phases = []model.PhaseResult{}
	}
	phasesJSON, err := json.Marshal(phases)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal phases")
	}
	statsJSON, err := nullJSON(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}
	var filesJSON sql.NullString
	if len(files) > 0 {
		if filesJSON, err = nullJSON(files); err != nil {
			return eris.Wrap(err, "sqlite: marshal files")
		}
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, city, method, crs, status, phases, stats, files, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			city = excluded.city,
			method = excluded.method,
			crs = excluded.crs,
			status = excluded.status,
			phases = excluded.phases,
			stats = excluded.stats,
			files = excluded.files,
			updated_at = excluded.updated_at`,
		run.ID, run.City, string(run.Method), run.CRS, string(run.Status),
		string(phasesJSON), statsJSON, filesJSON, createdAt, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save run %s", run.ID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, city, method, crs, status, phases, stats, files, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRecord(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Record, error) {
	query := `SELECT id, city, method, crs, status, phases, stats, files, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.Method != "" {
		query += ` AND method = ?`
		args = append(args, string(filter.Method))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: delete run %s", runID)
	}
	return nil
}

func nullJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var (
		r          Record
		method     string
		status     string
		phasesJSON string
		statsJSON  sql.NullString
		filesJSON  sql.NullString
	)
	err := row.Scan(&r.Run.ID, &r.Run.City, &method, &r.Run.CRS, &status,
		&phasesJSON, &statsJSON, &filesJSON, &r.Run.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Run.Method = model.ZoneMethod(method)
	r.Run.Status = model.RunStatus(status)

	if err := json.Unmarshal([]byte(phasesJSON), &r.Run.Phases); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal phases")
	}
	if statsJSON.Valid {
		r.Stats = json.RawMessage(statsJSON.String)
	}
	if filesJSON.Valid {
		if err := json.Unmarshal([]byte(filesJSON.String), &r.Files); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal files")
		}
	}
	return &r, nil
}
