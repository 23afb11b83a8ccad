// Package manifest reads and rewrites the version recorded in a Cargo-style
// TOML manifest.
//
// Reading goes through a TOML decoder. Writing never re-encodes the file:
// RewriteVersion scans the text line by line, tracking only whether the
// current line is inside the [package] table, and replaces the quoted value
// of the first version key found there. Comments, formatting and other
// tables are left untouched.
//
// File wraps the manifest on disk with its lock file (refreshed by an
// external command after every write) and secondary files, such as a
// frontend package.json, whose version is kept in step.
package manifest
