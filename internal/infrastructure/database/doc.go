// Package database manages the SQLite connection for jidcore.
//
// It wraps database/sql with connection setup (WAL mode, busy timeout,
// foreign keys), embedded schema migrations, and health checks. The
// config table, credential tables, and audit trail all live in the
// single database file this package opens.
//
// SQLite is deliberate: the registration service is a single-writer
// workload and ships as one binary plus one data file.
package database
