// Package preflight provides readiness checks for the filesystem paths
// autolink depends on.
//
// These checks run in two contexts:
//   - The CLI "autolink roots check" command reports every root directory
//     and the library directory.
//   - The link command checks the roots before scanning and warns about
//     directories that will only produce scan errors.
package preflight
