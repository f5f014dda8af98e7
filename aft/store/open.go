package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

var statements = []string{
	`PRAGMA journal_mode = WAL`, // the CLI may be run concurrently, readers should not block the writer
	`PRAGMA busy_timeout = 5000`,
}

// open a connection to the sqlite3 history database (in memory for an empty path), migrating the schema
func open(path string, debug bool) (*gorm.DB, error) {
	conn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("unable to create parent directory for history DB: %w", err)
		}
		conn = fmt.Sprintf("file:%s", path)
	}

	dbObj, err := gorm.Open(sqlite.Open(conn), &gorm.Config{Logger: &logAdapter{
		debug:         debug,
		slowThreshold: 400 * time.Millisecond,
	}})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to history DB: %w", err)
	}

	sqlDB, err := dbObj.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to access history DB connection: %w", err)
	}
	// a single connection keeps in-memory databases alive and serializes writes
	sqlDB.SetMaxOpenConns(1)

	if path != "" {
		if err := applyStatements(dbObj, statements); err != nil {
			return nil, err
		}
	}

	log.Trace("applying history DB migrations")
	if err := dbObj.AutoMigrate(&AnalysisRecord{}); err != nil {
		return nil, fmt.Errorf("unable to migrate history DB: %w", err)
	}
	return dbObj, nil
}

func applyStatements(db *gorm.DB, stmts []string) error {
	for _, sqlStmt := range stmts {
		if err := db.Exec(sqlStmt).Error; err != nil {
			return fmt.Errorf("unable to execute (%s): %w", strings.TrimSpace(sqlStmt), err)
		}
	}
	return nil
}
