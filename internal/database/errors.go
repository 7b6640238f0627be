package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ConstraintKind names the class of schema rule a statement violated.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
)

// ConstraintError reports a storage-level constraint violation (duplicate
// category name or product code, deleting a referenced category, a failed
// CHECK). Callers match it with errors.As instead of inspecting message text.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated: %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ClassifyConstraint returns a *ConstraintError if err is a pq constraint
// violation, nil otherwise. Anything it does not recognize is a storage fault
// the caller should wrap and propagate unchanged.
func ClassifyConstraint(err error) *ConstraintError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case "23505":
		return &ConstraintError{Kind: ConstraintUnique, Constraint: pqErr.Constraint, Err: err}
	case "23503":
		return &ConstraintError{Kind: ConstraintForeignKey, Constraint: pqErr.Constraint, Err: err}
	case "23502", "23514":
		return &ConstraintError{Kind: ConstraintCheck, Constraint: pqErr.Constraint, Err: err}
	}

	return nil
}

var (
	// ErrProductHasSales blocks deleting a product referenced by sale line
	// items; raised by the explicit pre-check, never by the foreign key.
	ErrProductHasSales = errors.New("product has associated sales")

	// ErrSaleFinalized rejects line-item mutation or a second finalize once a
	// sale has been finalized.
	ErrSaleFinalized = errors.New("sale already finalized")

	// ErrSaleNotFound is returned by operations that must act on an existing
	// sale (adding items, finalizing).
	ErrSaleNotFound = errors.New("sale not found")
)
