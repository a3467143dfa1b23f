package checkout

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

const (
	DateLayout     = "2006-01-02"
	DisplayDate    = "02 Jan 2006"
	DisplayTime    = "15:04:05"
	TimestampValue = "2006-01-02 15:04:05"

	MaxPhotoSize = 10 << 20 // 10MB
)

var allowedPhotoExts = []string{".jpg", ".jpeg", ".png"}

// ========================================
// CHECK-OUT DTOs
// ========================================

type CreateCheckoutRequest struct {
	Latitude    string                `json:"latitude"`
	Longitude   string                `json:"longitude"`
	Description string                `json:"desc"`
	File        multipart.File        `json:"-"`
	FileHeader  *multipart.FileHeader `json:"-"`
}

func (r *CreateCheckoutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	}

	if validator.IsEmpty(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	}

	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "desc",
			Message: "desc is required",
		})
	}

	if r.FileHeader == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "check-out photo is required",
		})
	} else if err := validatePhoto(r.FileHeader); err != nil {
		errs = append(errs, *err)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateCheckoutRequest struct {
	ID          string                `json:"-"`
	Latitude    *string               `json:"latitude,omitempty"`
	Longitude   *string               `json:"longitude,omitempty"`
	Description *string               `json:"desc,omitempty"`
	File        multipart.File        `json:"-"`
	FileHeader  *multipart.FileHeader `json:"-"`
}

func (r *UpdateCheckoutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	} else if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.Latitude != nil && validator.IsEmpty(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must not be empty",
		})
	}

	if r.Longitude != nil && validator.IsEmpty(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must not be empty",
		})
	}

	if r.Description != nil && validator.IsEmpty(*r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "desc",
			Message: "desc must not be empty",
		})
	}

	if r.FileHeader != nil {
		if err := validatePhoto(r.FileHeader); err != nil {
			errs = append(errs, *err)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validatePhoto(fh *multipart.FileHeader) *validator.ValidationError {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !validator.IsInSlice(ext, allowedPhotoExts) {
		return &validator.ValidationError{
			Field:   "photo",
			Message: "invalid file type: only jpg, jpeg, png allowed",
		}
	}
	if fh.Size > MaxPhotoSize {
		return &validator.ValidationError{
			Field:   "photo",
			Message: "check-out photo size must not exceed 10MB",
		}
	}
	return nil
}

type CheckoutFilter struct {
	// Search & Filter
	From     *string `json:"from,omitempty"` // YYYY-MM-DD
	To       *string `json:"to,omitempty"`   // YYYY-MM-DD
	UserName *string `json:"user_name,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // attendance_time, date, user_name
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *CheckoutFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	errs = append(errs, validateDateBounds(f.From, f.To)...)

	if f.SortBy != "" {
		validSortFields := []string{"attendance_time", "date", "user_name"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: attendance_time, date, user_name",
			})
		}
	} else {
		f.SortBy = "attendance_time"
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DateRange converts the from/to query values into a DateRange.
func (f CheckoutFilter) DateRange() (DateRange, error) {
	return ParseDateRange(deref(f.From), deref(f.To))
}

func validateDateBounds(from, to *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if from != nil && *from != "" {
		if _, valid := validator.IsValidDate(*from); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	if to != nil && *to != "" {
		if _, valid := validator.IsValidDate(*to); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	return errs
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (r *BulkDeleteRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.IDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "ids",
			Message: "ids must contain at least one id",
		})
	} else if len(r.IDs) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "ids",
			Message: "ids must not contain more than 100 entries",
		})
	} else {
		for _, id := range r.IDs {
			if !validator.IsValidUUID(id) {
				errs = append(errs, validator.ValidationError{
					Field:   "ids",
					Message: "ids must be valid UUIDs",
				})
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	Format   ExportFormat `json:"format"`
	From     *string      `json:"from,omitempty"`
	To       *string      `json:"to,omitempty"`
	UserName *string      `json:"user_name,omitempty"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Format == "" {
		r.Format = ExportXLSX
	}
	r.Format = ExportFormat(strings.ToLower(string(r.Format)))
	if r.Format != ExportCSV && r.Format != ExportXLSX {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be one of: csv, xlsx",
		})
	}

	errs = append(errs, validateDateBounds(r.From, r.To)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Filter returns the listing filter matching the export request, sorted oldest first.
func (r ExportRequest) Filter() CheckoutFilter {
	return CheckoutFilter{
		From:      r.From,
		To:        r.To,
		UserName:  r.UserName,
		SortBy:    "attendance_time",
		SortOrder: "asc",
	}
}

type CheckoutResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	Location       string `json:"location"`
	LocationURL    string `json:"location_url"`
	LocationHint   string `json:"location_tooltip"`
	PhotoPath      string `json:"photo_path"`
	PhotoURL       string `json:"photo_url"`
	Description    string `json:"desc"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	AttendanceTime string `json:"attendance_time"`
	Deleted        bool   `json:"deleted"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type HeaderActions struct {
	CanCreate bool    `json:"can_create"`
	CreateURL *string `json:"create_url,omitempty"`
	CanExport bool    `json:"can_export"`
}

type ListCheckoutResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Checkouts  []CheckoutResponse `json:"checkouts"`
	Actions    HeaderActions      `json:"actions"`
}

type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type ExportResponse struct {
	Format      ExportFormat `json:"format"`
	Path        string       `json:"path"`
	URL         string       `json:"url"`
	RowCount    int          `json:"row_count"`
	GeneratedAt string       `json:"generated_at"`
}

// FormDefaultsResponse pre-fills the create form. Latitude and longitude come
// from the client's geolocation, the user and time are stamped by the server.
type FormDefaultsResponse struct {
	UserID         string `json:"user_id"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	AttendanceTime string `json:"attendance_time"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
