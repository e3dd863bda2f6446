// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package ledger

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// TableDef is implemented by every table definition struct in tables.go.
type TableDef interface {
	Name() string
	Schema() string
}

// DB acts as the root database manager and table registry for the ledger state.
type DB struct {
	conn   *sql.DB
	ctx    context.Context
	mu     sync.Mutex
	tables map[string]TableDef
}

// OpenDB opens the ledger state database and prepares the registry.
// The connection pool is pinned to a single connection: the ledger execution
// domain is strictly sequential and the database must mirror that.
func OpenDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite WAL mode configuration for concurrent reads + writes
	conn.Exec("PRAGMA journal_mode = WAL;")
	conn.Exec("PRAGMA synchronous = NORMAL;")
	conn.Exec("PRAGMA temp_store = MEMORY;")
	conn.Exec("PRAGMA foreign_keys = ON;")

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return &DB{
		conn:   conn,
		ctx:    context.Background(),
		tables: make(map[string]TableDef),
	}, nil
}

// RegisterTable registers a schema object and creates the table if needed.
func (db *DB) RegisterTable(def TableDef) error {
	if err := db.CreateTable(def.Name(), def.Schema()); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.tables[def.Name()] = def
	return nil
}

// CreateTable ensures a table exists.
func (db *DB) CreateTable(name, schema string) error {
	query := "CREATE TABLE IF NOT EXISTS " + name + " (" + schema + ")"
	_, err := db.conn.ExecContext(db.ctx, query)
	return err
}

// Query executes a SQL query and returns rows.
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(db.ctx, query, args...)
}

// QueryRow executes a SQL query expected to return at most one row.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(db.ctx, query, args...)
}

// Exec executes a SQL statement.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(db.ctx, query, args...)
}

// Close gracefully closes the DB connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}
