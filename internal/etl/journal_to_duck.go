// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package etl exports the worker activity journal into a DuckDB file for
// offline analysis (fetch success rates, lock contention, submission volume
// per block).
package etl

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/marcboeker/go-duckdb"

	"github.com/Greenetwork/offchain-worker/internal/journal"
)

const journalTableSchema = `CREATE TABLE IF NOT EXISTS worker_journal (
	id VARCHAR PRIMARY KEY,
	timestamp VARCHAR NOT NULL,
	kind VARCHAR NOT NULL,
	entity VARCHAR NOT NULL,
	block BIGINT NOT NULL,
	message VARCHAR NOT NULL
)`

// DuckDB wraps a DuckDB connection with mutex protection.
type DuckDB struct {
	db     *sql.DB
	conn   driver.Conn
	mu     sync.Mutex
	dbPath string
}

// OpenDuckDB opens or creates a DuckDB database, keeping a dedicated driver
// connection around for the Appender API.
func OpenDuckDB(dbPath string) (*DuckDB, error) {
	sqlDB, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	conn, err := connector.Connect(context.Background())
	if err != nil {
		connector.Close()
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to DuckDB: %w", err)
	}

	return &DuckDB{db: sqlDB, conn: conn, dbPath: dbPath}, nil
}

// Close closes the DuckDB connection.
func (d *DuckDB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		d.conn = nil
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			errs = append(errs, err)
		}
		d.db = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing DuckDB: %v", errs)
	}
	return nil
}

// ExportJournal copies every journal entry into the worker_journal table of a
// DuckDB file at duckPath. Returns the number of exported entries.
func ExportJournal(j *journal.Journal, duckPath string) (int64, error) {
	duck, err := OpenDuckDB(duckPath)
	if err != nil {
		return 0, err
	}
	defer duck.Close()

	if _, err := duck.db.Exec(journalTableSchema); err != nil {
		return 0, fmt.Errorf("failed to create worker_journal table: %w", err)
	}

	appender, err := duckdb.NewAppenderFromConn(duck.conn, "", "worker_journal")
	if err != nil {
		return 0, fmt.Errorf("failed to create appender: %w", err)
	}

	var exported int64
	err = j.Iterate(journal.IterOptions{}, func(entry journal.Entry) error {
		if err := appender.AppendRow(
			entry.ID,
			entry.Timestamp,
			entry.Kind,
			entry.Entity,
			int64(entry.Block),
			entry.Message,
		); err != nil {
			return fmt.Errorf("failed to append journal entry %s: %w", entry.ID, err)
		}
		exported++
		return nil
	})
	if err != nil {
		appender.Close()
		return exported, err
	}

	if err := appender.Close(); err != nil {
		return exported, fmt.Errorf("failed to flush appender: %w", err)
	}
	return exported, nil
}
