// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/net/context"
)

// A Filter restricts the runs considered by a query. Condition is a
// SQL expression over the columns of Table, written with full column
// names such as "system.kernel".
type Filter struct {
	Table     string
	Condition string
	Desc      string // optional
}

// Name returns a human-readable description of f.
func (f Filter) Name() string {
	q := f.Table + ": " + f.Condition
	if f.Desc != "" {
		return f.Desc + " (" + q + ")"
	}
	return q
}

// runTables are the tables joined into every run query.
var runTables = []string{"unique_run", "system", "system_cpu", "cpu_type", "plugin_group", "plugin"}

// where adds the conditions of the filters on any of tables to sb.
func where(sb sq.SelectBuilder, filters []Filter, tables []string) sq.SelectBuilder {
	for _, t := range tables {
		for _, f := range filters {
			if f.Table == t {
				sb = sb.Where("(" + f.Condition + ")")
			}
		}
	}
	return sb
}

// runs returns a query over all runs passing filters, joined with their
// system, plugin group and plugin rows and the option and version
// tables of the plugins involved. The query selects cols followed by
// the number of distinct runs as number_runs.
func (db *DB) runs(ctx context.Context, filters []Filter, cols ...string) (sq.SelectBuilder, error) {
	pq := db.stmt().Select("plugin_opt_table", "plugin_comp_vers_table").
		From("unique_run").
		Join("plugin_group USING(plugin_group_sha)").
		Join("plugin USING(plugin_sha)").
		GroupBy("plugin_sha", "plugin_opt_table", "plugin_comp_vers_table")
	rows, err := where(pq, filters, []string{"unique_run", "plugin_group", "plugin"}).QueryContext(ctx)
	if err != nil {
		return sq.SelectBuilder{}, fmt.Errorf("plugin tables: %w", err)
	}
	defer rows.Close()

	tables := append([]string(nil), runTables...)
	type join struct{ table, key string }
	var joins []join
	for rows.Next() {
		var opt, vers sql.NullString
		if err := rows.Scan(&opt, &vers); err != nil {
			return sq.SelectBuilder{}, err
		}
		if opt.String != "" {
			joins = append(joins, join{opt.String, "plugin_opts_sha"})
		}
		if vers.String != "" {
			joins = append(joins, join{vers.String, "plugin_comp_vers_sha"})
		}
	}
	if err := rows.Err(); err != nil {
		return sq.SelectBuilder{}, err
	}

	sb := db.stmt().Select(cols...).
		Column("COUNT(DISTINCT run_uuid) AS number_runs").
		From("unique_run").
		Join(db.quote("system") + " USING(system_sha)").
		Join("system_cpu USING(cpus_sha)").
		Join("cpu_type USING(cpu_type_sha)").
		Join("plugin_group USING(plugin_group_sha)").
		Join("plugin USING(plugin_sha)")
	seen := make(map[string]bool)
	for _, j := range joins {
		if seen[j.table] {
			continue
		}
		seen[j.table] = true
		t := db.quote(j.table)
		sb = sb.LeftJoin(fmt.Sprintf("%s ON plugin_group.%s = %s.%s", t, j.key, t, j.key))
		tables = append(tables, j.table)
	}
	return where(sb, filters, tables), nil
}

// CountRuns returns the number of distinct runs passing filters.
func (db *DB) CountRuns(ctx context.Context, filters []Filter) (int, error) {
	sb, err := db.runs(ctx, filters)
	if err != nil {
		return 0, err
	}
	var n int
	if err := sb.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// A System is one machine configuration benchmarks ran on.
type System struct {
	SHA        string
	CPUsSHA    string
	CustomInfo string
	NrCPUs     int
	NrCPUsOn   int
	MemTotal   int64
	Kernel     string
	Machine    string
	CPUModel   string

	// Runs is the number of runs on the system passing the filters.
	Runs int
}

// Description returns the label used for the system in reports.
func (s *System) Description() string {
	return s.CustomInfo + " " + strconv.Itoa(s.NrCPUsOn) + " CPUs Kernel " + s.Kernel
}

// Systems returns the systems of the runs passing filters.
func (db *DB) Systems(ctx context.Context, filters []Filter) ([]*System, error) {
	sys := db.quote("system") + "."
	sb, err := db.runs(ctx, filters, "system_sha", sys+"cpus_sha", sys+"custom_info",
		sys+"nr_cpus", sys+"nr_cpus_on", sys+"mem_total", sys+"kernel", sys+"machine")
	if err != nil {
		return nil, err
	}
	rows, err := sb.GroupBy("system_sha").OrderBy("system_sha").QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("systems: %w", err)
	}
	defer rows.Close()
	var systems []*System
	for rows.Next() {
		var s System
		var info, kernel, machine, cpus sql.NullString
		var nr, on, mem sql.NullInt64
		if err := rows.Scan(&s.SHA, &cpus, &info, &nr, &on, &mem, &kernel, &machine, &s.Runs); err != nil {
			return nil, err
		}
		s.CPUsSHA, s.CustomInfo, s.Kernel, s.Machine = cpus.String, info.String, kernel.String, machine.String
		s.NrCPUs, s.NrCPUsOn, s.MemTotal = int(nr.Int64), int(on.Int64), mem.Int64
		systems = append(systems, &s)
	}
	return systems, rows.Err()
}

// An Instance is one plugin of a plugin group that ran on one system.
type Instance struct {
	GroupSHA    string
	PluginSHA   string
	SystemSHA   string
	OptionsSHA  string
	VersionsSHA string
	Module      string
	Name        string
	Version     string

	// System is the system the instance ran on.
	System *System
	// Runs is the number of runs of the instance passing the filters.
	Runs int
}

// PluginGroups returns every plugin of every plugin group with runs
// passing filters, once per system, ordered by plugin group, plugin
// and system.
func (db *DB) PluginGroups(ctx context.Context, filters []Filter) ([]*Instance, error) {
	sys := db.quote("system") + "."
	sb, err := db.runs(ctx, filters, "plugin_group.plugin_group_sha", "plugin_group.plugin_sha",
		"system_sha", "plugin_group.plugin_opts_sha", "plugin_group.plugin_comp_vers_sha",
		"plugin.module", "plugin.name", "plugin.version",
		sys+"custom_info", sys+"nr_cpus_on", sys+"kernel")
	if err != nil {
		return nil, err
	}
	rows, err := sb.GroupBy("plugin_group.plugin_group_sha", "plugin_group.plugin_sha", "system_sha").
		OrderBy("plugin_group.plugin_group_sha", "plugin_group.plugin_sha", "system_sha").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin groups: %w", err)
	}
	defer rows.Close()
	var insts []*Instance
	for rows.Next() {
		inst := &Instance{System: new(System)}
		var opts, vers, mod, name, version, info, kernel sql.NullString
		var on sql.NullInt64
		if err := rows.Scan(&inst.GroupSHA, &inst.PluginSHA, &inst.SystemSHA, &opts, &vers,
			&mod, &name, &version, &info, &on, &kernel, &inst.Runs); err != nil {
			return nil, err
		}
		inst.OptionsSHA, inst.VersionsSHA = opts.String, vers.String
		inst.Module, inst.Name, inst.Version = mod.String, name.String, version.String
		inst.System.SHA = inst.SystemSHA
		inst.System.CustomInfo, inst.System.NrCPUsOn, inst.System.Kernel = info.String, int(on.Int64), kernel.String
		insts = append(insts, inst)
	}
	return insts, rows.Err()
}

// A Plugin describes a benchmark plugin and where its data is stored.
type Plugin struct {
	SHA          string
	Module       string
	Name         string
	Description  string
	Version      string
	Table        string // results; empty for plugins without data
	OptionTable  string // empty if the plugin has no options
	VersionTable string // empty if the plugin has no component versions
}

// FullName returns the plugin name qualified by its module.
func (p *Plugin) FullName() string {
	return p.Module + "." + p.Name
}

// ErrNotFound is returned for lookups of rows that do not exist.
var ErrNotFound = errors.New("not found")

// Plugin returns the plugin with the given SHA.
func (db *DB) Plugin(ctx context.Context, sha string) (*Plugin, error) {
	p := &Plugin{SHA: sha}
	var desc, table, opt, vers sql.NullString
	err := db.stmt().Select("module", "name", "description", "version",
		"plugin_table", "plugin_opt_table", "plugin_comp_vers_table").
		From("plugin").
		Where(sq.Eq{"plugin_sha": sha}).
		QueryRowContext(ctx).
		Scan(&p.Module, &p.Name, &desc, &p.Version, &table, &opt, &vers)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plugin %s: %w", sha, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", sha, err)
	}
	p.Description, p.Table, p.OptionTable, p.VersionTable = desc.String, table.String, opt.String, vers.String
	return p, nil
}

// OptionFields returns the option values with the given SHA stored in
// the option table table, keyed by option name.
func (db *DB) OptionFields(ctx context.Context, table, sha string) (map[string]string, error) {
	return db.fields(ctx, table, "plugin_opts_sha", sha)
}

// VersionFields returns the component versions with the given SHA
// stored in the version table table, keyed by component name.
func (db *DB) VersionFields(ctx context.Context, table, sha string) (map[string]string, error) {
	return db.fields(ctx, table, "plugin_comp_vers_sha", sha)
}

func (db *DB) fields(ctx context.Context, table, key, sha string) (map[string]string, error) {
	rows, err := db.stmt().Select("*").From(db.quote(table)).Where(sq.Eq{key: sha}).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	defer rows.Close()
	ms, err := scanMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table, err)
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, sha, ErrNotFound)
	}
	m := ms[0]
	delete(m, key)
	return m, nil
}

// A DataField describes one column of a plugin's results table.
type DataField struct {
	Name        string
	Description string
	Unit        string
}

// Label returns the axis label for the field: its capitalized name
// followed by the unit in parentheses, if any.
func (f DataField) Label() string {
	l := capitalize(f.Name)
	if f.Unit != "" {
		l += " (" + f.Unit + ")"
	}
	return l
}

// DataMeta returns the data fields recorded by the plugin with the
// given SHA, ordered by name.
func (db *DB) DataMeta(ctx context.Context, pluginSHA string) ([]DataField, error) {
	rows, err := db.stmt().Select("name", "description", "unit").
		From("plugin_data_meta").
		Where(sq.Eq{"plugin_sha": pluginSHA}).
		OrderBy("name").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("data meta: %w", err)
	}
	defer rows.Close()
	var fields []DataField
	for rows.Next() {
		var f DataField
		var desc, unit sql.NullString
		if err := rows.Scan(&f.Name, &desc, &unit); err != nil {
			return nil, err
		}
		f.Description, f.Unit = desc.String, unit.String
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ResultsPerRun returns the largest number of rows a single run stored
// in the results table table, or 0 if the table is empty.
func (db *DB) ResultsPerRun(ctx context.Context, table string) (int, error) {
	var n int
	err := db.stmt().Select("COUNT(run_uuid) AS n").
		From(db.quote(table)).
		GroupBy("run_uuid").
		OrderBy("n DESC").
		Limit(1).
		QueryRowContext(ctx).
		Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("%s: %w", table, err)
	}
	return n, nil
}

// Results returns the values of field in the results table table for
// all runs of the plugin group on the system, one slice per run in the
// order rows were stored. NULL values are skipped.
func (db *DB) Results(ctx context.Context, table, field, systemSHA, groupSHA string) ([][]float64, error) {
	t := db.quote(table)
	rows, err := db.stmt().Select("run_uuid", t+"."+db.quote(field)).
		From("unique_run").
		Join(t+" USING(run_uuid)").
		Where(sq.Eq{"system_sha": systemSHA, "plugin_group_sha": groupSHA}).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("results %s.%s: %w", table, field, err)
	}
	defer rows.Close()
	var runs [][]float64
	index := make(map[string]int)
	for rows.Next() {
		var uuid string
		var v sql.NullFloat64
		if err := rows.Scan(&uuid, &v); err != nil {
			return nil, fmt.Errorf("results %s.%s: %w", table, field, err)
		}
		i, ok := index[uuid]
		if !ok {
			i = len(runs)
			index[uuid] = i
			runs = append(runs, nil)
		}
		if v.Valid {
			runs[i] = append(runs[i], v.Float64)
		}
	}
	return runs, rows.Err()
}

// scanMaps reads all rows as column name to value maps.
func scanMaps(rows *sql.Rows) ([]map[string]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]string
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]string, len(cols))
		for i, c := range cols {
			switch v := vals[i].(type) {
			case nil:
				m[c] = ""
			case []byte:
				m[c] = string(v)
			default:
				m[c] = fmt.Sprint(v)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
