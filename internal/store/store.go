// Package store is the catalog & sales data layer: four relational tables
// (categories, products, sales, sale_items) plus the aggregate report queries
// the screens consume. Every operation is a self-contained unit of work; the
// store assumes a single local writer and does no cross-call coordination.
package store

import "database/sql"

// Store owns the database handle. Construct one in main (or per test) and
// pass it to callers; there is no package-level connection.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
