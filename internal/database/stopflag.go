package database

import (
	"github.com/jmoiron/sqlx"

	"WooFeedSync/internal/database/model/property"
)

// StopFlag is the cancellation request persisted outside the sync process.
type StopFlag struct {
	db *sqlx.DB
}

func NewStopFlag(db *sqlx.DB) *StopFlag {
	return &StopFlag{db: db}
}

func (s *StopFlag) Set() error {
	return property.Set(s.db, property.StopSync, "1")
}

func (s *StopFlag) Clear() error {
	return property.Delete(s.db, property.StopSync)
}

func (s *StopFlag) IsSet() (bool, error) {
	v, err := property.Get(s.db, property.StopSync)
	return v == "1", err
}
