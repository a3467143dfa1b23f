package checkout

import (
	"time"
)

// Record is one attendance check-out submission.
type Record struct {
	ID             string
	UserID         string
	Latitude       string
	Longitude      string
	PhotoPath      string
	Description    string
	AttendanceTime time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time

	// DTO / Join
	UserName *string
}

// IsDeleted reports whether the record carries a soft-delete marker.
func (r Record) IsDeleted() bool {
	return r.DeletedAt != nil
}
