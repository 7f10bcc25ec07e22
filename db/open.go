// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database for the dialect and verifies the connection.
func Open(dialect Dialect, url string) (*sql.DB, error) {
	switch dialect {
	case Postgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(5)
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return conn, nil

	case SQLite:
		conn, err := sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// One connection makes every transaction a serialized writer.
		conn.SetMaxOpenConns(1)
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dialect)
}

// sqliteDSN turns on foreign keys (needed for ON DELETE CASCADE) and a busy
// timeout unless the caller already set pragmas, and stores times in the
// sortable sqlite text format.
func sqliteDSN(url string) string {
	var params []string
	if !strings.Contains(url, "_pragma=") {
		params = append(params, "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(url, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(params, "&")
}
