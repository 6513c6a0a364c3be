/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package database

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gilneto8/peggit/config"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite3 driver
)

//go:embed schema.sqlite.sql
var sqliteSchema string

//go:embed schema.postgres.sql
var postgresSchema string

// DB holds the database connection
type DB struct {
	*sqlx.DB
	driver string // Database driver name (sqlite3 or pgx)
}

// Driver returns the underlying database driver name
func (db *DB) Driver() string {
	return db.driver
}

// NewConnection creates a new database connection using configuration
func NewConnection(cfg *config.Database) (*DB, error) {
	var db *sqlx.DB
	var err error
	driver := cfg.Driver

	switch cfg.Driver {
	case "sqlite3":
		// Ensure the directory exists for SQLite
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		db, err = OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
	case "postgres", "postgresql", "pgx":
		driver = "pgx"
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		)

		db, err = sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}

		// Set connection pool settings
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// OpenSQLite opens a SQLite database at path with WAL and foreign keys enabled
func OpenSQLite(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Prevents "database is locked" errors with concurrent access
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteDB wraps an already opened SQLite handle
func NewSQLiteDB(db *sqlx.DB) *DB {
	return &DB{DB: db, driver: "sqlite3"}
}

// InitSchema creates the tables for the current driver if they do not exist
func (db *DB) InitSchema() error {
	switch db.driver {
	case "sqlite3":
		// SQLite handles multi-statement Exec
		if _, err := db.Exec(sqliteSchema); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		return nil
	case "pgx":
		return db.initSchemaPostgres(postgresSchema)
	default:
		return fmt.Errorf("unsupported database driver for schema initialization: %s", db.driver)
	}
}

// initSchemaPostgres splits SQL statements and executes them individually within a transaction
func (db *DB) initSchemaPostgres(schemaSQL string) error {
	statements := splitSQLStatements(schemaSQL)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			firstLine, _, _ := strings.Cut(stmt, "\n")
			return fmt.Errorf("failed to execute schema statement %d/%d (%s): %w", i+1, len(statements), firstLine, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

var blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)

// splitSQLStatements splits SQL by semicolons outside string literals and drops comment lines
func splitSQLStatements(sql string) []string {
	sql = removeCommentLines(blockCommentRe.ReplaceAllString(sql, "\n"))

	var statements []string
	current := strings.Builder{}
	inString := false

	flush := func() {
		if stmt := removeCommentLines(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, r := range sql {
		if r == '\'' {
			inString = !inString
		}
		if !inString && r == ';' {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return statements
}

// removeCommentLines removes "--" comment lines and blank lines from a statement
func removeCommentLines(stmt string) string {
	var lines []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
