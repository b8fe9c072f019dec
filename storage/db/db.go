// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db provides access to a cbenchsuite result database.
//
// The database holds one row per benchmark run in unique_run, the
// systems and plugin groups the runs used, and one results table per
// plugin version. Option and component version values live in per
// plugin tables named by the plugin row.
package db

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"text/template"

	sq "github.com/Masterminds/squirrel"
)

// DB is a high-level interface to a cbenchsuite database. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql    *sql.DB // underlying database connection
	driver string
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only sqlite3 and mysql are
// explicitly supported; other database engines will receive SQLite
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &DB{sql: db, driver: driverName}, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to set a busy timeout on every
// connection. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the fixed part of the schema. It is evaluated with . as a map
// containing one entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
{{- $text := "TEXT"}}{{if not .sqlite3}}{{$text = "VARCHAR(255)"}}{{end -}}
CREATE TABLE IF NOT EXISTS plugin (
	plugin_sha {{$text}} PRIMARY KEY,
	module {{$text}},
	name {{$text}},
	description {{$text}},
	version {{$text}},
	plugin_table {{$text}},
	plugin_opt_table {{$text}},
	plugin_comp_vers_table {{$text}}
);
CREATE TABLE IF NOT EXISTS plugin_group (
	sha {{$text}} PRIMARY KEY,
	plugin_group_sha {{$text}},
	plugin_sha {{$text}},
	plugin_opts_sha {{$text}},
	plugin_comp_vers_sha {{$text}}
);
CREATE TABLE IF NOT EXISTS unique_run (
	run_uuid {{$text}} PRIMARY KEY,
	plugin_group_sha {{$text}},
	prev_runs INTEGER,
	system_sha {{$text}}
);
CREATE TABLE IF NOT EXISTS plugin_option_meta (
	plugin_option_meta_sha {{$text}} PRIMARY KEY,
	plugin_sha {{$text}},
	name {{$text}},
	description {{$text}},
	unit {{$text}}
);
CREATE TABLE IF NOT EXISTS plugin_data_meta (
	plugin_data_meta_sha {{$text}} PRIMARY KEY,
	plugin_sha {{$text}},
	name {{$text}},
	description {{$text}},
	unit {{$text}}
);
CREATE TABLE IF NOT EXISTS {{if .sqlite3}}system{{else}}` + "`system`" + `{{end}} (
	system_sha {{$text}} PRIMARY KEY,
	cpus_sha {{$text}},
	custom_info {{$text}},
	nr_cpus INTEGER,
	nr_cpus_on INTEGER,
	mem_total BIGINT,
	kernel {{$text}},
	machine {{$text}}
);
CREATE TABLE IF NOT EXISTS system_cpu (
	sha {{$text}} PRIMARY KEY,
	cpus_sha {{$text}},
	cpu_type_sha {{$text}}
);
CREATE TABLE IF NOT EXISTS cpu_type (
	cpu_type_sha {{$text}} PRIMARY KEY,
	model_name {{$text}}
);
`))

// CreateTables creates any missing tables of the fixed schema. The
// per plugin tables are created by InsertPlugin.
func (db *DB) CreateTables() error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{db.driver: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// quote returns name quoted as an identifier.
func (db *DB) quote(name string) string {
	if db.driver == "mysql" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// stmt returns a statement builder running on the database.
func (db *DB) stmt() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(db.sql)
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	return db.sql.Close()
}
