// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package difftree represents the configuration space of a set of
// benchmark runs as a tree of parameter levels.
//
// Each level of the tree splits the runs on one axis: the system the
// benchmark ran on, a tunable option of the benchmark, a version of a
// component, or the measured data field. Walking from the root to a
// leaf selects one value per axis; the leaf holds the configuration
// records (Combos) that produced that path.
//
// A Tree is built once with Build and then reshaped in place before it
// is turned into charts:
//
//   - Autoremove drops levels that have a single value across the whole
//     tree and records them as constants.
//   - Promote moves an axis to the top of the tree by transposing levels.
//   - Squash merges several axes into a single level whose values are
//     the concatenated tuples of the original values.
//   - AutoSquash squashes the levels nearest to the leaves so that each
//     resulting level stays within a budget of distinct values.
//
// All transformations rewrite the tree functionally and only replace
// Tree.Root once the rewrite succeeded, so a failed transformation
// leaves the tree as it was.
package difftree
