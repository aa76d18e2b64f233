// Package main hosts the autolink CLI entrypoint and command graph.
//
// The Cobra command tree manages a bibliography library (entries, attachment
// directories, file types) and runs the auto-linker against it. Linking runs
// are journaled in the library so they can be listed and reverted.
//
// Keep this package lean: behaviour lives in the internal packages and the
// commands here only resolve configuration, open the library and render
// results.
package main
