package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/absensi-backend-go/internal/service/export"
	"github.com/cmlabs-hris/absensi-backend-go/internal/service/file"
	"github.com/google/uuid"
)

type CheckoutServiceImpl struct {
	checkout.CheckoutRepository
	fileService     file.FileService
	loc             *time.Location
	manualCreateURL string
	now             func() time.Time
}

func NewCheckoutService(
	checkoutRepo checkout.CheckoutRepository,
	fileService file.FileService,
	loc *time.Location,
	manualCreateURL string,
) checkout.CheckoutService {
	if loc == nil {
		loc = time.Local
	}
	return &CheckoutServiceImpl{
		CheckoutRepository: checkoutRepo,
		fileService:        fileService,
		loc:                loc,
		manualCreateURL:    manualCreateURL,
		now:                time.Now,
	}
}

// Create implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) Create(ctx context.Context, current *user.User, req checkout.CreateCheckoutRequest) (checkout.CheckoutResponse, error) {
	if _, err := checkout.ScopeFor(current); err != nil {
		return checkout.CheckoutResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return checkout.CheckoutResponse{}, err
	}

	nowLocal := s.now().In(s.loc)

	photoPath, err := s.fileService.UploadCheckoutPhoto(ctx, current.ID, nowLocal, req.File, req.FileHeader.Filename)
	if err != nil {
		return checkout.CheckoutResponse{}, fmt.Errorf("failed to upload check-out photo: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		s.discardPhoto(ctx, photoPath)
		return checkout.CheckoutResponse{}, fmt.Errorf("failed to generate id: %w", err)
	}

	created, err := s.CheckoutRepository.Create(ctx, checkout.Record{
		ID:             id.String(),
		UserID:         current.ID,
		Latitude:       strings.TrimSpace(req.Latitude),
		Longitude:      strings.TrimSpace(req.Longitude),
		PhotoPath:      photoPath,
		Description:    strings.TrimSpace(req.Description),
		AttendanceTime: nowLocal,
	})
	if err != nil {
		s.discardPhoto(ctx, photoPath)
		return checkout.CheckoutResponse{}, fmt.Errorf("failed to create check-out: %w", err)
	}
	created.UserName = &current.Name

	slog.Info("Check-out recorded", "id", created.ID, "user_id", current.ID)
	return s.toResponse(ctx, created), nil
}

// Get implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) Get(ctx context.Context, current *user.User, id string) (checkout.CheckoutResponse, error) {
	scope, err := checkout.ScopeFor(current)
	if err != nil {
		return checkout.CheckoutResponse{}, err
	}
	// ids that cannot exist never reach the uuid column
	if !validator.IsValidUUID(id) {
		return checkout.CheckoutResponse{}, checkout.ErrRecordNotFound
	}

	record, err := s.CheckoutRepository.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, checkout.ErrRecordNotFound) {
			return checkout.CheckoutResponse{}, checkout.ErrRecordNotFound
		}
		return checkout.CheckoutResponse{}, fmt.Errorf("failed to get check-out: %w", err)
	}

	return s.toResponse(ctx, record), nil
}

// List implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) List(ctx context.Context, current *user.User, filter checkout.CheckoutFilter) (checkout.ListCheckoutResponse, error) {
	scope, err := checkout.ScopeFor(current)
	if err != nil {
		return checkout.ListCheckoutResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return checkout.ListCheckoutResponse{}, err
	}

	// Searching by name is an administrator feature
	if !checkout.CanSearchByUserName(current) {
		filter.UserName = nil
	}

	records, total, err := s.CheckoutRepository.List(ctx, filter, scope)
	if err != nil {
		return checkout.ListCheckoutResponse{}, fmt.Errorf("failed to list check-outs: %w", err)
	}

	responses := make([]checkout.CheckoutResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, s.toResponse(ctx, record))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return checkout.ListCheckoutResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Checkouts:  responses,
		Actions:    checkout.HeaderActionsFor(current, s.manualCreateURL),
	}, nil
}

// Update implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) Update(ctx context.Context, current *user.User, req checkout.UpdateCheckoutRequest) (checkout.CheckoutResponse, error) {
	scope, err := checkout.ScopeFor(current)
	if err != nil {
		return checkout.CheckoutResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return checkout.CheckoutResponse{}, err
	}

	var oldPhoto, newPhoto string
	var updated checkout.Record
	err = s.CheckoutRepository.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.CheckoutRepository.GetByID(ctx, req.ID, scope)
		if err != nil {
			if errors.Is(err, checkout.ErrRecordNotFound) {
				return checkout.ErrRecordNotFound
			}
			return fmt.Errorf("failed to get check-out: %w", err)
		}

		if req.Latitude != nil {
			record.Latitude = strings.TrimSpace(*req.Latitude)
		}
		if req.Longitude != nil {
			record.Longitude = strings.TrimSpace(*req.Longitude)
		}
		if req.Description != nil {
			record.Description = strings.TrimSpace(*req.Description)
		}

		oldPhoto = record.PhotoPath
		if req.FileHeader != nil {
			newPhoto, err = s.fileService.UploadCheckoutPhoto(ctx, record.UserID, s.now().In(s.loc), req.File, req.FileHeader.Filename)
			if err != nil {
				return fmt.Errorf("failed to upload check-out photo: %w", err)
			}
			record.PhotoPath = newPhoto
		}

		if err := s.CheckoutRepository.Update(ctx, record, scope); err != nil {
			if errors.Is(err, checkout.ErrRecordNotFound) {
				return checkout.ErrRecordNotFound
			}
			return fmt.Errorf("failed to update check-out: %w", err)
		}

		updated, err = s.CheckoutRepository.GetByID(ctx, record.ID, scope)
		if err != nil {
			return fmt.Errorf("failed to reload check-out: %w", err)
		}
		return nil
	})
	if err != nil {
		if newPhoto != "" {
			s.discardPhoto(ctx, newPhoto)
		}
		return checkout.CheckoutResponse{}, err
	}

	// the replaced photo is only removed once the new path is committed
	if newPhoto != "" && oldPhoto != "" && oldPhoto != newPhoto {
		s.discardPhoto(ctx, oldPhoto)
	}

	return s.toResponse(ctx, updated), nil
}

// BulkDelete implements checkout.CheckoutService.
// Records are only soft deleted and keep showing up in listings.
func (s *CheckoutServiceImpl) BulkDelete(ctx context.Context, current *user.User, req checkout.BulkDeleteRequest) (checkout.BulkDeleteResponse, error) {
	scope, err := checkout.ScopeFor(current)
	if err != nil {
		return checkout.BulkDeleteResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return checkout.BulkDeleteResponse{}, err
	}

	deleted, err := s.CheckoutRepository.SoftDelete(ctx, req.IDs, scope)
	if err != nil {
		return checkout.BulkDeleteResponse{}, fmt.Errorf("failed to delete check-outs: %w", err)
	}
	if deleted == 0 {
		return checkout.BulkDeleteResponse{}, checkout.ErrNothingDeleted
	}

	slog.Info("Check-outs soft deleted", "count", deleted, "user_id", current.ID)
	return checkout.BulkDeleteResponse{Deleted: deleted}, nil
}

// Export implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) Export(ctx context.Context, current *user.User, req checkout.ExportRequest) (checkout.ExportResponse, error) {
	scope, err := checkout.ScopeFor(current)
	if err != nil {
		return checkout.ExportResponse{}, err
	}
	if !checkout.CanExport(current) {
		return checkout.ExportResponse{}, checkout.ErrExportForbidden
	}
	if err := req.Validate(); err != nil {
		return checkout.ExportResponse{}, err
	}

	records, err := s.CheckoutRepository.ListAll(ctx, req.Filter(), scope)
	if err != nil {
		return checkout.ExportResponse{}, fmt.Errorf("failed to load check-outs for export: %w", err)
	}

	rows := make([]export.Row, 0, len(records))
	for _, record := range records {
		resp := s.toResponse(ctx, record)
		rows = append(rows, export.Row{
			ID:          resp.ID,
			Name:        resp.UserName,
			Latitude:    resp.Latitude,
			Longitude:   resp.Longitude,
			LocationURL: resp.LocationURL,
			PhotoURL:    resp.PhotoURL,
			Description: resp.Description,
			Date:        resp.Date,
			Time:        resp.Time,
		})
	}

	rendered, err := export.Render(req.Format, rows)
	if err != nil {
		return checkout.ExportResponse{}, fmt.Errorf("failed to render export: %w", err)
	}

	generatedAt := s.now().In(s.loc)
	name := fmt.Sprintf("checkouts-%s%s", generatedAt.Format("20060102-150405"), rendered.Extension)
	path, err := s.fileService.SaveExport(ctx, name, rendered.Content, rendered.ContentType)
	if err != nil {
		return checkout.ExportResponse{}, err
	}

	url, err := s.fileService.ExportURL(ctx, path)
	if err != nil {
		return checkout.ExportResponse{}, fmt.Errorf("failed to resolve export url: %w", err)
	}

	slog.Info("Check-out export generated", "path", path, "rows", len(rows), "format", req.Format, "user_id", current.ID)
	return checkout.ExportResponse{
		Format:      req.Format,
		Path:        path,
		URL:         url,
		RowCount:    len(rows),
		GeneratedAt: generatedAt.Format(time.RFC3339),
	}, nil
}

// FormDefaults implements checkout.CheckoutService.
func (s *CheckoutServiceImpl) FormDefaults(ctx context.Context, current *user.User, latitude, longitude string) (checkout.FormDefaultsResponse, error) {
	if _, err := checkout.ScopeFor(current); err != nil {
		return checkout.FormDefaultsResponse{}, err
	}

	return checkout.FormDefaultsResponse{
		UserID:         current.ID,
		Latitude:       latitude,
		Longitude:      longitude,
		AttendanceTime: s.now().In(s.loc).Format(checkout.TimestampValue),
	}, nil
}

func (s *CheckoutServiceImpl) toResponse(ctx context.Context, record checkout.Record) checkout.CheckoutResponse {
	var userName string
	if record.UserName != nil {
		userName = *record.UserName
	}

	var photoURL string
	if record.PhotoPath != "" {
		url, err := s.fileService.PhotoURL(ctx, record.PhotoPath)
		if err != nil {
			slog.Warn("Failed to resolve photo url", "id", record.ID, "path", record.PhotoPath, "error", err)
		} else {
			photoURL = url
		}
	}

	local := record.AttendanceTime.In(s.loc)
	return checkout.CheckoutResponse{
		ID:             record.ID,
		UserID:         record.UserID,
		UserName:       userName,
		Latitude:       record.Latitude,
		Longitude:      record.Longitude,
		Location:       checkout.RenderLocation(record),
		LocationURL:    checkout.LocationURL(record.Latitude, record.Longitude),
		LocationHint:   "Click to view location",
		PhotoPath:      record.PhotoPath,
		PhotoURL:       photoURL,
		Description:    record.Description,
		Date:           local.Format(checkout.DisplayDate),
		Time:           local.Format(checkout.DisplayTime),
		AttendanceTime: local.Format(time.RFC3339),
		Deleted:        record.IsDeleted(),
		CreatedAt:      record.CreatedAt.In(s.loc).Format(checkout.TimestampValue),
		UpdatedAt:      record.UpdatedAt.In(s.loc).Format(checkout.TimestampValue),
	}
}

func (s *CheckoutServiceImpl) discardPhoto(ctx context.Context, path string) {
	if err := s.fileService.DeletePhoto(ctx, path); err != nil {
		slog.Warn("Failed to remove check-out photo", "path", path, "error", err)
	}
}
