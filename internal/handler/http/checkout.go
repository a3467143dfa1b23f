package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// multipart bodies carry the photo plus the JSON 'data' field
const maxMultipartMemory = checkout.MaxPhotoSize + 1<<20

type CheckoutHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	FormDefaults(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	BulkDelete(w http.ResponseWriter, r *http.Request)
	Navigation(w http.ResponseWriter, r *http.Request)
}

type checkoutHandlerImpl struct {
	checkoutService checkout.CheckoutService
}

func NewCheckoutHandler(checkoutService checkout.CheckoutService) CheckoutHandler {
	return &checkoutHandlerImpl{
		checkoutService: checkoutService,
	}
}

// List implements CheckoutHandler.
func (h *checkoutHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := checkout.CheckoutFilter{}

	// Date range filters
	if from := query.Get("from"); from != "" {
		filter.From = &from
	}
	if to := query.Get("to"); to != "" {
		filter.To = &to
	}

	// User name search
	if userName := query.Get("user_name"); userName != "" {
		filter.UserName = &userName
	}

	// Pagination
	if p := query.Get("page"); p != "" {
		pageNum, err := strconv.Atoi(p)
		if err != nil {
			response.BadRequest(w, "page must be a number", nil)
			return
		}
		filter.Page = pageNum
	}
	if l := query.Get("limit"); l != "" {
		limitNum, err := strconv.Atoi(l)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		filter.Limit = limitNum
	}

	// Sorting
	filter.SortBy = query.Get("sort_by")
	filter.SortOrder = query.Get("sort_order")

	result, err := h.checkoutService.List(ctx, user.FromContext(ctx), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Create implements CheckoutHandler.
func (h *checkoutHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req checkout.CreateCheckoutRequest

	// Parse multipart form
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	// Get JSON data from 'data' field
	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return
	}
	if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Check-out photo is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req.File = file
	req.FileHeader = fileHeader

	ctx := r.Context()
	result, err := h.checkoutService.Create(ctx, user.FromContext(ctx), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-out recorded successfully", result)
}

// Get implements CheckoutHandler.
func (h *checkoutHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	result, err := h.checkoutService.Get(ctx, user.FromContext(ctx), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements CheckoutHandler. Accepts either a JSON body or a multipart
// form with a 'data' field and an optional replacement 'photo'.
func (h *checkoutHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req checkout.UpdateCheckoutRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}

		if dataJSON := r.FormValue("data"); dataJSON != "" {
			if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
				slog.Error("Failed to unmarshal JSON data", "error", err)
				response.BadRequest(w, "Invalid request format", nil)
				return
			}
		}

		file, fileHeader, err := r.FormFile("photo")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		if file != nil {
			defer func(f multipart.File) { _ = f.Close() }(file)
			req.File = file
			req.FileHeader = fileHeader
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.ID = chi.URLParam(r, "id")

	ctx := r.Context()
	result, err := h.checkoutService.Update(ctx, user.FromContext(ctx), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-out updated successfully", result)
}

// FormDefaults implements CheckoutHandler.
func (h *checkoutHandlerImpl) FormDefaults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	result, err := h.checkoutService.FormDefaults(ctx, user.FromContext(ctx), query.Get("latitude"), query.Get("longitude"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements CheckoutHandler.
func (h *checkoutHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var req checkout.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	ctx := r.Context()
	result, err := h.checkoutService.Export(ctx, user.FromContext(ctx), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Export generated successfully", result)
}

// BulkDelete implements CheckoutHandler.
func (h *checkoutHandlerImpl) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req checkout.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	ctx := r.Context()
	result, err := h.checkoutService.BulkDelete(ctx, user.FromContext(ctx), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check-outs deleted successfully", result)
}

// Navigation implements CheckoutHandler.
func (h *checkoutHandlerImpl) Navigation(w http.ResponseWriter, r *http.Request) {
	response.Success(w, []checkout.NavigationItem{checkout.Navigation})
}
