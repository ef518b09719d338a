// Package history persists a summary of every verification run.
//
// Two backends implement Store:
//
//   - SQLite: durable, file backed. Either the pure-Go "sqlite" driver
//     (modernc.org/sqlite, the default) or the cgo "sqlite3" driver
//     (github.com/mattn/go-sqlite3).
//   - Memory: process local, for tests and for watch sessions that only need
//     history while running.
//
// Records are summaries: counts plus the messages of failed experiments, not
// the experiment configurations themselves.
package history
