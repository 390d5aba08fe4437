package property

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooFeedSync/pkg/logging"
)

// StopSync is set by the stop command and polled between rows.
const StopSync = "STOP_SYNC"

type Property struct {
	Name  string         `db:"Name"`
	Value sql.NullString `db:"Value"`
}

// Get returns the value of name, "" when unset.
func Get(db *sqlx.DB, name string) (string, error) {
	var p Property
	err := db.Get(&p, "SELECT Name, Value FROM Property WHERE Name=$1;", name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed in select Property %s", name)
	}
	return p.Value.String, nil
}

func Set(db *sqlx.DB, name, value string) error {
	logger := logging.GetLogger()
	logger.Debugf("Property %s=%s", name, value)
	_, err := db.Exec(`INSERT INTO Property (Name, Value) VALUES ($1, $2)
		ON CONFLICT(Name) DO UPDATE SET Value=excluded.Value;`, name, value)
	if err != nil {
		return errors.Wrapf(err, "failed in upsert Property %s", name)
	}
	return nil
}

func Delete(db *sqlx.DB, name string) error {
	if _, err := db.Exec("DELETE FROM Property WHERE Name=$1;", name); err != nil {
		return errors.Wrapf(err, "failed in delete Property %s", name)
	}
	return nil
}
