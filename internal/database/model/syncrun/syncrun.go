package syncrun

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const layout = "2006-01-02 15:04:05"

// SyncRun is the stored summary of one reconciliation run.
type SyncRun struct {
	ID        string         `db:"ID"`
	Sheet     string         `db:"Sheet"`
	State     string         `db:"State"`
	Started   string         `db:"Started"`
	Finished  sql.NullString `db:"Finished"`
	Processed int            `db:"Processed"`
	Created   int            `db:"Created"`
	Updated   int            `db:"Updated"`
	Skipped   int            `db:"Skipped"`
	Errors    int            `db:"Errors"`
}

// Start inserts a running record with a fresh id.
func Start(db *sqlx.DB, sheet string, at time.Time) (*SyncRun, error) {
	r := &SyncRun{
		ID:      uuid.NewString(),
		Sheet:   sheet,
		State:   "Running",
		Started: at.Format(layout),
	}
	_, err := db.NamedExec(`INSERT INTO SyncRun (ID, Sheet, State, Started, Processed, Created, Updated, Skipped, Errors)
		VALUES (:ID, :Sheet, :State, :Started, 0, 0, 0, 0, 0);`, r)
	if err != nil {
		return nil, errors.Wrap(err, "failed in insert SyncRun")
	}
	return r, nil
}

// Finish stores the final counters and state.
func (r *SyncRun) Finish(db *sqlx.DB, at time.Time) error {
	r.Finished = sql.NullString{String: at.Format(layout), Valid: true}
	_, err := db.NamedExec(`UPDATE SyncRun SET State=:State, Finished=:Finished, Processed=:Processed,
		Created=:Created, Updated=:Updated, Skipped=:Skipped, Errors=:Errors WHERE ID=:ID;`, r)
	if err != nil {
		return errors.Wrapf(err, "failed in update SyncRun %s", r.ID)
	}
	return nil
}

// SelectLast returns up to n runs, newest first.
func SelectLast(db *sqlx.DB, n int) ([]*SyncRun, error) {
	var runs []*SyncRun
	if err := db.Select(&runs, "SELECT * FROM SyncRun ORDER BY Started DESC LIMIT $1;", n); err != nil {
		return nil, errors.Wrap(err, "failed in select SyncRun")
	}
	return runs, nil
}
