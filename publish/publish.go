// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package publish copies generated reports to Google Cloud Storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Dest is a location in Cloud Storage.
type Dest struct {
	Bucket string
	Prefix string
}

// ParseDest parses a gs://bucket/prefix URL.
func ParseDest(s string) (Dest, error) {
	if !strings.HasPrefix(s, "gs://") {
		return Dest{}, fmt.Errorf("publish destination %q: want gs://bucket/prefix", s)
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(s, "gs://"), "/")
	if bucket == "" {
		return Dest{}, fmt.Errorf("publish destination %q: missing bucket", s)
	}
	return Dest{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// Object returns the object name for the file rel, a slash-separated
// path relative to the published directory.
func (d Dest) Object(rel string) string {
	if d.Prefix == "" {
		return rel
	}
	return path.Join(d.Prefix, rel)
}

// Upload copies every regular file below dir to dest. Without client
// options it authenticates with the default Google credentials.
func Upload(ctx context.Context, dir, dest string, opts ...option.ClientOption) error {
	d, err := ParseDest(dest)
	if err != nil {
		return err
	}
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer client.Close()

	bucket := client.Bucket(d.Bucket)
	return filepath.WalkDir(dir, func(p string, e fs.DirEntry, err error) error {
		if err != nil || !e.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return upload(ctx, bucket.Object(d.Object(filepath.ToSlash(rel))), p)
	})
}

func upload(ctx context.Context, obj *storage.ObjectHandle, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	w := obj.NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(filepath.Ext(file))
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", file, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", file, err)
	}
	return nil
}
