package sqlite

import (
	"database/sql"
	"time"

	"autoassign/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// RunRecord is one stored assignment run.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Resources  int       `json:"resources"`
	Assigned   int       `json:"assigned"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// AssignmentRecord is one dispatched assignment of a stored run.
type AssignmentRecord struct {
	RunID          string    `json:"run_id"`
	Region         string    `json:"region"`
	ComplaintID    string    `json:"complaint_id"`
	IncrementalID  string    `json:"incremental_id"`
	InspectorID    string    `json:"inspector_id"`
	InspectorLogin string    `json:"inspector_login"`
	Reassignment   bool      `json:"reassignment"`
	Error          string    `json:"error,omitempty"`
	AssignedAt     time.Time `json:"assigned_at"`
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id      TEXT PRIMARY KEY,
		started_at  DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		resources   INTEGER NOT NULL DEFAULT 0,
		assigned    INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		error       TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS assignments (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id          TEXT NOT NULL,
		region          TEXT NOT NULL,
		complaint_id    TEXT NOT NULL,
		incremental_id  TEXT DEFAULT '',
		inspector_id    TEXT NOT NULL,
		inspector_login TEXT NOT NULL,
		reassignment    BOOLEAN NOT NULL DEFAULT 0,
		error           TEXT DEFAULT '',
		assigned_at     DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_run ON assignments(run_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_complaint ON assignments(complaint_id);
	`
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SaveRun stores a run and its assignments in one transaction. runErr is the
// error Run returned, if any.
func SaveRun(db *sql.DB, report domain.RunReport, runErr error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err = tx.Exec(
		`INSERT INTO runs (run_id, started_at, finished_at, resources, assigned, failed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt, report.FinishedAt, len(report.Resources),
		report.TotalAssigned(), report.TotalFailed(), errText,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO assignments (run_id, region, complaint_id, incremental_id, inspector_id, inspector_login, reassignment, error, assigned_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, res := range report.Resources {
		for _, a := range res.Assignments {
			dispatchErr := ""
			if a.Err != nil {
				dispatchErr = a.Err.Error()
			}
			_, err := stmt.Exec(
				report.RunID, res.Region, a.ComplaintID, a.IncrementalID, a.InspectorID,
				a.InspectorLogin, a.Reassignment, dispatchErr, a.AssignedAt,
			)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func RecentRuns(db *sql.DB, limit int) ([]RunRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, started_at, finished_at, resources, assigned, failed, error
		 FROM runs ORDER BY started_at DESC, run_id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Resources, &r.Assigned, &r.Failed, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func AssignmentsForRun(db *sql.DB, runID string) ([]AssignmentRecord, error) {
	rows, err := db.Query(
		`SELECT run_id, region, complaint_id, incremental_id, inspector_id, inspector_login, reassignment, error, assigned_at
		 FROM assignments WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssignmentRecord
	for rows.Next() {
		var a AssignmentRecord
		err := rows.Scan(
			&a.RunID, &a.Region, &a.ComplaintID, &a.IncrementalID, &a.InspectorID,
			&a.InspectorLogin, &a.Reassignment, &a.Error, &a.AssignedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
