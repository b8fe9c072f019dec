// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest provides cbenchsuite databases for tests.
package dbtest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	"golang.org/x/benchplot/storage/db"
	_ "golang.org/x/benchplot/storage/db/sqlite3"
)

var cloud = flag.Bool("cloud", false, "connect to Cloud SQL database instead of a temporary SQLite file")
var cloudsql = flag.String("cloudsql", "golang-org:us-central1:golang-org", "name of Cloud SQL instance to run tests on")

// createEmptyCloudDB makes a new, empty database for the test.
func createEmptyCloudDB(t *testing.T) (dsn string, cleanup func()) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}

	name := "benchplot-test-" + base64.RawURLEncoding.EncodeToString(buf)

	prefix := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	db, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

// NewDB makes a connection to an empty testing database with the
// cbenchsuite schema, either sqlite3 or Cloud SQL depending on the
// -cloud flag. The database is closed when the test finishes.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	// Every connection of the pool must see the same database, so use
	// a file rather than :memory:.
	driverName := "sqlite3"
	dataSourceName := filepath.Join(t.TempDir(), "db.sqlite")
	var cloudCleanup func()
	if *cloud {
		driverName = "mysql"
		dataSourceName, cloudCleanup = createEmptyCloudDB(t)
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	if err != nil {
		if cloudCleanup != nil {
			cloudCleanup()
		}
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
		if cloudCleanup != nil {
			cloudCleanup()
		}
	})
	if err := d.CreateTables(); err != nil {
		t.Fatal(err)
	}
	// Make sure the database really is empty.
	runs, err := d.CountRuns(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if runs != 0 {
		t.Fatalf("found %d run(s), want 0", runs)
	}
	return d
}

// Plugin SHAs of the fixture database.
const (
	Build   = "p1" // kernel.build: one result per run, with options and versions
	Memory  = "p2" // sys.memory: several results per run
	Monitor = "p3" // cbench.monitor: no results table
)

// Systems and plugin groups of the fixture database.
const (
	SystemA = "sysA"
	SystemB = "sysB"
	Group1  = "g1" // kernel.build threads=1, cbench.monitor
	Group2  = "g2" // kernel.build threads=2, cbench.monitor
	Group3  = "g3" // sys.memory
)

// NewFixture returns a testing database holding a small set of runs:
//
//	run  group system results
//	r1   g1    sysA   kernel.build time=10
//	r2   g1    sysA   kernel.build time=12
//	r3   g1    sysB   kernel.build time=20
//	r4   g2    sysA   kernel.build time=6
//	r5   g3    sysA   sys.memory used=100,200,300
//	r6   g3    sysA   sys.memory used=110,210,310
//
// kernel.build ran with gcc=9 in both groups.
func NewFixture(t *testing.T) *db.DB {
	t.Helper()
	d := NewDB(t)
	ctx := context.Background()
	check := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("populating fixture: %v", err)
		}
	}

	check(d.InsertSystem(ctx, &db.System{SHA: SystemA, CPUsSHA: "c4", CustomInfo: "alpha", NrCPUs: 4, NrCPUsOn: 4, MemTotal: 8 << 30, Kernel: "5.10", Machine: "x86_64", CPUModel: "Generic CPU"}))
	check(d.InsertSystem(ctx, &db.System{SHA: SystemB, CPUsSHA: "c8", CustomInfo: "beta", NrCPUs: 8, NrCPUsOn: 8, MemTotal: 16 << 30, Kernel: "6.1", Machine: "x86_64", CPUModel: "Generic CPU"}))

	build := &db.Plugin{SHA: Build, Module: "kernel", Name: "build", Version: "0.1"}
	check(d.InsertPlugin(ctx, build, []string{"threads"}, []string{"gcc"}, []db.DataField{{Name: "time", Unit: "s"}}))
	memory := &db.Plugin{SHA: Memory, Module: "sys", Name: "memory", Version: "0.2"}
	check(d.InsertPlugin(ctx, memory, nil, nil, []db.DataField{{Name: "used", Unit: "kB"}}))
	monitor := &db.Plugin{SHA: Monitor, Module: "cbench", Name: "monitor", Version: "0.1"}
	check(d.InsertPlugin(ctx, monitor, nil, nil, nil))

	vers, err := d.InsertFields(ctx, build.VersionTable, map[string]string{"gcc": "9"})
	check(err)
	for i, group := range []string{Group1, Group2} {
		opts, err := d.InsertFields(ctx, build.OptionTable, map[string]string{"threads": fmt.Sprint(i + 1)})
		check(err)
		check(d.InsertGroup(ctx, group,
			db.Member{PluginSHA: Build, OptionsSHA: opts, VersionsSHA: vers},
			db.Member{PluginSHA: Monitor}))
	}
	check(d.InsertGroup(ctx, Group3, db.Member{PluginSHA: Memory}))

	for _, r := range []struct {
		uuid, group, system string
		time                float64
	}{
		{"r1", Group1, SystemA, 10},
		{"r2", Group1, SystemA, 12},
		{"r3", Group1, SystemB, 20},
		{"r4", Group2, SystemA, 6},
	} {
		check(d.InsertRun(ctx, r.uuid, r.group, r.system))
		check(d.InsertResults(ctx, build.Table, r.uuid, map[string]float64{"time": r.time}))
	}
	for i, uuid := range []string{"r5", "r6"} {
		check(d.InsertRun(ctx, uuid, Group3, SystemA))
		var rows []map[string]float64
		for j := 1; j <= 3; j++ {
			rows = append(rows, map[string]float64{"used": float64(100*j + 10*i)})
		}
		check(d.InsertResults(ctx, memory.Table, uuid, rows...))
	}
	return d
}
