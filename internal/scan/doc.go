// Package scan enumerates the regular files beneath a set of root
// directories.
//
// Roots are walked concurrently and independently: a root that cannot be
// read yields a single PathError and no files, and a nested directory that
// cannot be read is skipped and reported without stopping the walk. Symlinks
// to regular files are reported under the link's path; symlinked
// directories are never descended, which keeps traversal finite on
// filesystems with link cycles. Results are deduplicated by absolute path
// and sorted, so a scan of an unchanged tree is reproducible.
package scan
