// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"

	"golang.org/x/net/context"
)

// Merge copies the tables of the SQLite databases in the files paths
// into db. Tables missing from db are created with their original
// definition; rows whose primary key is already present are skipped.
func (db *DB) Merge(ctx context.Context, paths ...string) error {
	if db.driver != "sqlite3" {
		return fmt.Errorf("merge: unsupported driver %s", db.driver)
	}
	// ATTACH is per connection.
	conn, err := db.sql.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, path := range paths {
		if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS tomerge", path); err != nil {
			return fmt.Errorf("attach %s: %v", path, err)
		}
		err := func() error {
			rows, err := conn.QueryContext(ctx, `SELECT name, sql FROM tomerge.sqlite_master
				WHERE type = 'table' AND name NOT LIKE 'sqlite%' AND name NOT IN (SELECT name FROM main.sqlite_master WHERE type = 'table')`)
			if err != nil {
				return err
			}
			var creates []string
			for rows.Next() {
				var name, q string
				if err := rows.Scan(&name, &q); err != nil {
					rows.Close()
					return err
				}
				creates = append(creates, q)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
			for _, q := range creates {
				if _, err := conn.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("create table: %v", err)
				}
			}

			rows, err = conn.QueryContext(ctx, "SELECT name FROM tomerge.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite%'")
			if err != nil {
				return err
			}
			var tables []string
			for rows.Next() {
				var name string
				if err := rows.Scan(&name); err != nil {
					rows.Close()
					return err
				}
				tables = append(tables, name)
			}
			rows.Close()
			if err := rows.Err(); err != nil {
				return err
			}
			for _, t := range tables {
				q := fmt.Sprintf("INSERT OR IGNORE INTO main.%s SELECT * FROM tomerge.%s", db.quote(t), db.quote(t))
				if _, err := conn.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("copy %s: %v", t, err)
				}
			}
			return nil
		}()
		if _, derr := conn.ExecContext(ctx, "DETACH DATABASE tomerge"); err == nil && derr != nil {
			err = derr
		}
		if err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
	}
	return nil
}
