// Package sqlite provides a SQLite-backed profile store and chat log.
//
// The database runs in WAL mode and is migrated from embedded SQL files
// on open. It is the default storage driver.
package sqlite
