/*
Package store keeps a local sqlite history of completed analyses.
*/
package store

import (
	"fmt"

	"gorm.io/gorm"
)

const DefaultListLimit = 20

type Store struct {
	db *gorm.DB
}

// Open the history database at path, creating it (and its parent directory) as needed. An empty path opens a
// throwaway in-memory database.
func Open(path string) (*Store, error) {
	db, err := open(path, false)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Add records an analysis, filling in the ID and creation time.
func (s *Store) Add(record *AnalysisRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("unable to record analysis: %w", err)
	}
	return nil
}

// List returns the most recent analyses first. A limit of zero or less selects DefaultListLimit.
func (s *Store) List(limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var records []AnalysisRecord
	if err := s.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("unable to list analyses: %w", err)
	}
	return records, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
