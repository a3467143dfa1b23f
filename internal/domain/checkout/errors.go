package checkout

import "errors"

// Check-out domain errors
var (
	ErrUnauthorized    = errors.New("authentication required to access check-out records")
	ErrRecordNotFound  = errors.New("check-out record not found")
	ErrExportForbidden = errors.New("only administrators may export check-out records")
	ErrNothingDeleted  = errors.New("no matching check-out records to delete")
)
