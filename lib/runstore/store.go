// Package runstore keeps a history of completed scrapes in sqlite.
package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Run struct {
	EmployerId  string
	StartDate   string
	EndDate     string
	FinishedAt  time.Time
	RecordCount int
	RawPath     string
	// empty when no jobs table was written
	CsvPath string
}

type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path,
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// a single connection keeps ":memory:" databases from being per-connection
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into runs(employer_id, start_date, end_date, finished_at, record_count, raw_path, csv_path)
		values (?, ?, ?, ?, ?, ?, ?)`,
		run.EmployerId,
		run.StartDate,
		run.EndDate,
		run.FinishedAt.Unix(),
		run.RecordCount,
		run.RawPath,
		run.CsvPath,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs of the employer, newest first.
func (s *Store) Recent(ctx context.Context, employerId string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select employer_id, start_date, end_date, finished_at, record_count, raw_path, csv_path
		from runs where employer_id = ?
		order by finished_at desc, id desc
		limit ?`,
		employerId, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var finishedAt int64
		err := rows.Scan(
			&run.EmployerId,
			&run.StartDate,
			&run.EndDate,
			&finishedAt,
			&run.RecordCount,
			&run.RawPath,
			&run.CsvPath,
		)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = time.Unix(finishedAt, 0)
		out = append(out, run)
	}
	return out, rows.Err()
}
