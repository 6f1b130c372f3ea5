// Package repository is the data access layer over PostgreSQL.
//
// Queries are hand-maintained in a uniform shape: one method per named query,
// Params/Row structs for multi-value inputs and outputs, and WithTx for
// transactional composition. All methods accept a context and return
// sql.ErrNoRows untouched so callers can map it to domain errors.
package repository

import (
	"context"
	"database/sql"
)

// DBTX abstracts *sql.DB and *sql.Tx so queries can run either standalone
// or inside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds all database query methods.
type Queries struct {
	db DBTX
}

// WithTx returns a Queries instance that runs all queries inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
