// Package database provides the PostgreSQL connection pool used by the
// postgres store backend.
package database
