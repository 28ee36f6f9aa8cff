// Package sqlite persists processing runs in a SQLite database. Status
// details and solutions are stored as JSON blobs: they are read back for
// audit, never queried field-by-field.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/supplymatch/orderassign/pkg/domain/entities"
	"github.com/supplymatch/orderassign/pkg/domain/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS processing_runs (
	run_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	success BOOLEAN NOT NULL,
	error_kind TEXT,
	order_status TEXT NOT NULL,
	status_details TEXT,
	solution TEXT
);

CREATE INDEX IF NOT EXISTS idx_processing_runs_order_id
	ON processing_runs(order_id);
`

// RunRepository provides SQLite-backed processing-run storage.
type RunRepository struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// Open opens (creating if needed) the database at databasePath.
func Open(databasePath string) (*RunRepository, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &RunRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *RunRepository) Close() error {
	return r.db.Close()
}

// SaveRun persists one processing run.
func (r *RunRepository) SaveRun(run *entities.ProcessingRun) error {
	if run.RunID == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	details, err := marshalNullable(run.StatusDetails)
	if err != nil {
		return fmt.Errorf("failed to encode status details: %w", err)
	}
	solution, err := marshalNullable(run.Solution)
	if err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO processing_runs
			(run_id, order_id, created_at, success, error_kind, order_status, status_details, solution)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.OrderID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Success,
		run.ErrorKind,
		string(run.OrderStatus),
		details,
		solution,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// GetRun returns a run by its identifier.
func (r *RunRepository) GetRun(runID string) (*entities.ProcessingRun, error) {
	row := r.db.QueryRow(
		`SELECT run_id, order_id, created_at, success, error_kind, order_status, status_details, solution
		 FROM processing_runs WHERE run_id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return run, err
}

// ListRuns returns all runs for an order, oldest first.
func (r *RunRepository) ListRuns(orderID string) ([]*entities.ProcessingRun, error) {
	rows, err := r.db.Query(
		`SELECT run_id, order_id, created_at, success, error_kind, order_status, status_details, solution
		 FROM processing_runs WHERE order_id = ? ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var runs []*entities.ProcessingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*entities.ProcessingRun, error) {
	var (
		run       entities.ProcessingRun
		createdAt string
		status    string
		details   sql.NullString
		solution  sql.NullString
	)
	err := row.Scan(
		&run.RunID,
		&run.OrderID,
		&createdAt,
		&run.Success,
		&run.ErrorKind,
		&status,
		&details,
		&solution,
	)
	if err != nil {
		return nil, err
	}

	run.OrderStatus = entities.OrderStatus(status)
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	if details.Valid && details.String != "" {
		run.StatusDetails = &entities.StatusDetails{}
		if err := json.Unmarshal([]byte(details.String), run.StatusDetails); err != nil {
			return nil, fmt.Errorf("failed to decode status details: %w", err)
		}
	}
	if solution.Valid && solution.String != "" {
		run.Solution = &entities.Solution{}
		if err := json.Unmarshal([]byte(solution.String), run.Solution); err != nil {
			return nil, fmt.Errorf("failed to decode solution: %w", err)
		}
	}
	return &run, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case *entities.StatusDetails:
		if x == nil {
			return sql.NullString{}, nil
		}
	case *entities.Solution:
		if x == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
