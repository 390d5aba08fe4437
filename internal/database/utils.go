package database

import (
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"WooFeedSync/pkg/logging"
)

func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

func CreateDB(dbname string) error {
	logger := logging.GetLogger()
	logger.Info("CreateDB:>Start")
	defer logger.Info("CreateDB:>End")

	logger.Info("CreateDB:>Creating ", dbname)

	db, err := sqlx.Open("sqlite3", dbname)
	if err != nil {
		return errors.Wrapf(err, "failed in sqlx.Open(%s)", dbname)
	}
	defer func(db *sqlx.DB) {
		if err := db.Close(); err != nil {
			logger.Error(err)
		}
	}(db)

	if _, err := db.Exec(DB_SCHEMA); err != nil {
		return errors.Wrap(err, "failed in create schema")
	}
	if _, err := db.Exec("INSERT INTO Version (Name, Version) VALUES ($1, $2)", "schema", DB_VERSION); err != nil {
		return errors.Wrap(err, "failed in insert Version")
	}
	logger.Info(dbname, " created")
	return nil
}

// Open creates the database on first use and connects to it.
func Open(dbname string) (*sqlx.DB, error) {
	if !Exists(dbname) {
		if err := CreateDB(dbname); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Connect("sqlite3", dbname)
	if err != nil {
		return nil, errors.Wrapf(err, "failed in sqlx.Connect(%s)", dbname)
	}
	// one writer: the CLI stop command and a running sync share the file
	db.SetMaxOpenConns(1)
	return db, nil
}
