// Package attempts persists upload credentials that were negotiated but
// have not reached a terminal state, so a later run can cancel them.
//
// A SQLite-backed implementation (SQLiteRepository) works over a dbx.DBTX
// (*sql.DB or *sql.Tx). Timestamps are stored as Unix milliseconds.
package attempts
