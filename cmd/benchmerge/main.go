// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchmerge merges cbenchsuite SQLite databases.
//
// Usage:
//
//	benchmerge [-f] out.sqlite in.sqlite...
//
// The runs, systems and plugins of every input database are copied
// into out.sqlite, which is created if necessary. Rows already present
// in out.sqlite are kept. With -f, an existing out.sqlite is replaced.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/benchplot/storage/db"
	_ "golang.org/x/benchplot/storage/db/sqlite3"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: benchmerge [-f] out.sqlite in.sqlite...\n")
	flag.PrintDefaults()
	os.Exit(2)
}

var flagForce = flag.Bool("f", false, "replace the output database if it exists")

func main() {
	log.SetPrefix("benchmerge: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
	}
	out, in := flag.Arg(0), flag.Args()[1:]

	if *flagForce {
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			log.Fatal(err)
		}
	}
	d, err := db.OpenSQL("sqlite3", out)
	if err != nil {
		log.Fatal(err)
	}
	if err := d.CreateTables(); err != nil {
		log.Fatal(err)
	}
	if err := d.Merge(context.Background(), in...); err != nil {
		log.Fatal(err)
	}
	n, err := d.CountRuns(context.Background(), nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := d.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("%s: %d runs", out, n)
}
