// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/net/context"
)

// TableNames returns the names of the results, option and version
// tables of a plugin version.
func TableNames(module, name, version string) (results, options, versions string) {
	suffix := module + "__" + name + "__" + version
	return "plugin_" + suffix, "plugin_opts_" + suffix, "plugin_comp_vers_" + suffix
}

// Hash returns the hex SHA-256 of the concatenation of parts.
func Hash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// insert returns an insert statement that skips rows whose primary key
// already exists.
func (db *DB) insert(table string) sq.InsertBuilder {
	opt := "OR IGNORE"
	if db.driver == "mysql" {
		opt = "IGNORE"
	}
	return db.stmt().Insert(db.quote(table)).Options(opt)
}

// InsertSystem records a system with NrCPUs CPUs of type CPUModel.
func (db *DB) InsertSystem(ctx context.Context, s *System) error {
	_, err := db.insert("system").
		Columns("system_sha", "cpus_sha", "custom_info", "nr_cpus", "nr_cpus_on", "mem_total", "kernel", "machine").
		Values(s.SHA, s.CPUsSHA, s.CustomInfo, s.NrCPUs, s.NrCPUsOn, s.MemTotal, s.Kernel, s.Machine).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert system %s: %w", s.SHA, err)
	}
	typ := Hash(s.CPUModel)
	_, err = db.insert("cpu_type").Columns("cpu_type_sha", "model_name").Values(typ, s.CPUModel).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert cpu type %s: %w", s.CPUModel, err)
	}
	for i := 0; i < s.NrCPUs; i++ {
		_, err := db.insert("system_cpu").
			Columns("sha", "cpus_sha", "cpu_type_sha").
			Values(Hash(s.CPUsSHA, typ, fmt.Sprint(i)), s.CPUsSHA, typ).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert cpu %d of %s: %w", i, s.SHA, err)
		}
	}
	return nil
}

// InsertPlugin records a plugin and creates its tables: a results
// table with one column per data field, unless data is empty, and
// option and version tables with one column per name in options and
// versions, unless those are empty. The table fields of p are set
// accordingly.
func (db *DB) InsertPlugin(ctx context.Context, p *Plugin, options, versions []string, data []DataField) error {
	results, opts, vers := TableNames(p.Module, p.Name, p.Version)
	text, num := "TEXT", "REAL"
	if db.driver == "mysql" {
		text, num = "VARCHAR(255)", "DOUBLE"
	}
	p.Table, p.OptionTable, p.VersionTable = "", "", ""
	if len(data) > 0 {
		p.Table = results
		defs := []string{"run_uuid " + text, "type_monitor INTEGER"}
		for _, f := range data {
			defs = append(defs, db.quote(f.Name)+" "+num)
		}
		if err := db.createTable(ctx, results, defs); err != nil {
			return err
		}
	}
	for _, t := range []struct {
		name, key string
		cols      []string
		field     *string
	}{
		{opts, "plugin_opts_sha", options, &p.OptionTable},
		{vers, "plugin_comp_vers_sha", versions, &p.VersionTable},
	} {
		if len(t.cols) == 0 {
			continue
		}
		*t.field = t.name
		defs := []string{t.key + " " + text + " PRIMARY KEY"}
		for _, c := range t.cols {
			defs = append(defs, db.quote(c)+" "+text)
		}
		if err := db.createTable(ctx, t.name, defs); err != nil {
			return err
		}
	}
	_, err := db.insert("plugin").
		Columns("plugin_sha", "module", "name", "description", "version",
			"plugin_table", "plugin_opt_table", "plugin_comp_vers_table").
		Values(p.SHA, p.Module, p.Name, p.Description, p.Version, p.Table, p.OptionTable, p.VersionTable).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert plugin %s: %w", p.FullName(), err)
	}
	for _, f := range data {
		_, err := db.insert("plugin_data_meta").
			Columns("plugin_data_meta_sha", "plugin_sha", "name", "description", "unit").
			Values(Hash(p.SHA, f.Name, f.Description, f.Unit), p.SHA, f.Name, f.Description, f.Unit).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert data field %s of %s: %w", f.Name, p.FullName(), err)
		}
	}
	return nil
}

// createTable creates table with the given column definitions.
func (db *DB) createTable(ctx context.Context, table string, defs []string) error {
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", db.quote(table), strings.Join(defs, ", "))
	if _, err := db.sql.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %v", table, err)
	}
	return nil
}

// InsertFields records one set of option or version values in the
// option or version table table and returns its SHA.
func (db *DB) InsertFields(ctx context.Context, table string, fields map[string]string) (string, error) {
	key := "plugin_opts_sha"
	if strings.HasPrefix(table, "plugin_comp_vers_") {
		key = "plugin_comp_vers_sha"
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := []string{table}
	cols := []string{key}
	for _, k := range names {
		parts = append(parts, k, fields[k])
		cols = append(cols, db.quote(k))
	}
	sha := Hash(parts...)
	vals := []interface{}{sha}
	for _, k := range names {
		vals = append(vals, fields[k])
	}
	if _, err := db.insert(table).Columns(cols...).Values(vals...).ExecContext(ctx); err != nil {
		return "", fmt.Errorf("insert into %s: %w", table, err)
	}
	return sha, nil
}

// A Member is one plugin of a plugin group with its configuration.
type Member struct {
	PluginSHA   string
	OptionsSHA  string
	VersionsSHA string
}

// InsertGroup records the plugin group groupSHA.
func (db *DB) InsertGroup(ctx context.Context, groupSHA string, members ...Member) error {
	for _, m := range members {
		_, err := db.insert("plugin_group").
			Columns("sha", "plugin_group_sha", "plugin_sha", "plugin_opts_sha", "plugin_comp_vers_sha").
			Values(Hash(m.OptionsSHA, m.VersionsSHA, groupSHA, m.PluginSHA), groupSHA, m.PluginSHA, m.OptionsSHA, m.VersionsSHA).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("insert plugin group %s: %w", groupSHA, err)
		}
	}
	return nil
}

// InsertRun records a run of a plugin group on a system.
func (db *DB) InsertRun(ctx context.Context, uuid, groupSHA, systemSHA string) error {
	_, err := db.insert("unique_run").
		Columns("run_uuid", "plugin_group_sha", "prev_runs", "system_sha").
		Values(uuid, groupSHA, 0, systemSHA).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", uuid, err)
	}
	return nil
}

// InsertResults appends result rows of a run to the results table
// table. Each row maps data field names to values.
func (db *DB) InsertResults(ctx context.Context, table, uuid string, rows ...map[string]float64) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, r := range rows {
		names := make([]string, 0, len(r))
		for k := range r {
			names = append(names, k)
		}
		sort.Strings(names)
		cols := []string{"run_uuid", "type_monitor"}
		vals := []interface{}{uuid, 0}
		for _, k := range names {
			cols = append(cols, db.quote(k))
			vals = append(vals, r[k])
		}
		ib := sq.Insert(db.quote(table)).Columns(cols...).Values(vals...).RunWith(tx)
		if _, err = ib.ExecContext(ctx); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}
