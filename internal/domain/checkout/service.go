package checkout

import (
	"context"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
)

// CheckoutService defines business logic for check-out records.
// The current user is always passed explicitly; a nil user yields ErrUnauthorized.
type CheckoutService interface {
	// Create stores a new check-out for the current user
	Create(ctx context.Context, current *user.User, req CreateCheckoutRequest) (CheckoutResponse, error)

	// Get retrieves a single record visible to the current user
	Get(ctx context.Context, current *user.User, id string) (CheckoutResponse, error)

	// List retrieves visible records with date range, search and pagination
	List(ctx context.Context, current *user.User, filter CheckoutFilter) (ListCheckoutResponse, error)

	// Update edits a visible record
	Update(ctx context.Context, current *user.User, req UpdateCheckoutRequest) (CheckoutResponse, error)

	// BulkDelete soft deletes visible records
	BulkDelete(ctx context.Context, current *user.User, req BulkDeleteRequest) (BulkDeleteResponse, error)

	// Export writes the filtered records to the public disk (administrators only)
	Export(ctx context.Context, current *user.User, req ExportRequest) (ExportResponse, error)

	// FormDefaults returns the pre-filled values of the create form
	FormDefaults(ctx context.Context, current *user.User, latitude, longitude string) (FormDefaultsResponse, error)
}
