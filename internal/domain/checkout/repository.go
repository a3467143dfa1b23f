package checkout

import (
	"context"
)

// CheckoutRepository defines data access methods for check-out records.
// Every read and write takes a Scope so row visibility is enforced in the query.
type CheckoutRepository interface {
	// Create inserts a record and returns it with generated fields set
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record visible under scope, soft-deleted rows included
	GetByID(ctx context.Context, id string, scope Scope) (Record, error)

	// Update writes the editable fields of a record visible under scope
	Update(ctx context.Context, record Record, scope Scope) error

	// List retrieves a page of records with filters applied
	List(ctx context.Context, filter CheckoutFilter, scope Scope) ([]Record, int64, error)

	// ListAll retrieves every record matching the filter, ignoring pagination
	ListAll(ctx context.Context, filter CheckoutFilter, scope Scope) ([]Record, error)

	// SoftDelete marks records as deleted and returns the affected row count
	SoftDelete(ctx context.Context, ids []string, scope Scope) (int64, error)

	// WithinTransaction runs fn in one transaction. Calls made with the ctx
	// passed to fn join it, and GetByID locks the row it reads.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
