// Package sqlite provides a SQLite-backed problem repository with FTS5
// full-text candidate retrieval. It is the default local storage backend;
// deployments with a shared database use the postgres package instead.
package sqlite
