// Package build runs a full build of a site: every content file is processed once and
// anything left in the dist dir that no source produced is removed.
//
// Full builds and the watch loop share the processor package, so a full build after any
// sequence of watch events yields the same dist tree as the watch loop would.
package build
