package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

var (
	testAdmin = user.User{ID: "0192b5a0-0000-7000-8000-0000000000a1", Name: "Admin HR", Role: user.RoleAdmin}
	testStaff = user.User{ID: "0192b5a0-0000-7000-8000-0000000000b1", Name: "Budi Santoso", Role: user.RoleStaff}
)

type stubUserRepository map[string]user.User

func (s stubUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := s[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (s stubUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

// recordingCheckoutService captures the user and request each call receives.
type recordingCheckoutService struct {
	current    *user.User
	filter     checkout.CheckoutFilter
	create     checkout.CreateCheckoutRequest
	photoBytes []byte
	update     checkout.UpdateCheckoutRequest
	export     checkout.ExportRequest
	err        error
}

func (s *recordingCheckoutService) Create(ctx context.Context, current *user.User, req checkout.CreateCheckoutRequest) (checkout.CheckoutResponse, error) {
	s.current, s.create = current, req
	if req.File != nil {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(req.File)
		s.photoBytes = buf.Bytes()
	}
	return checkout.CheckoutResponse{ID: "new", UserID: current.ID}, s.err
}

func (s *recordingCheckoutService) Get(ctx context.Context, current *user.User, id string) (checkout.CheckoutResponse, error) {
	s.current = current
	if s.err != nil {
		return checkout.CheckoutResponse{}, s.err
	}
	return checkout.CheckoutResponse{ID: id}, nil
}

func (s *recordingCheckoutService) List(ctx context.Context, current *user.User, filter checkout.CheckoutFilter) (checkout.ListCheckoutResponse, error) {
	s.current, s.filter = current, filter
	return checkout.ListCheckoutResponse{
		Page:    1,
		Limit:   20,
		Actions: checkout.HeaderActionsFor(current, "/absenkeluar"),
	}, s.err
}

func (s *recordingCheckoutService) Update(ctx context.Context, current *user.User, req checkout.UpdateCheckoutRequest) (checkout.CheckoutResponse, error) {
	s.current, s.update = current, req
	return checkout.CheckoutResponse{ID: req.ID}, s.err
}

func (s *recordingCheckoutService) BulkDelete(ctx context.Context, current *user.User, req checkout.BulkDeleteRequest) (checkout.BulkDeleteResponse, error) {
	s.current = current
	return checkout.BulkDeleteResponse{Deleted: int64(len(req.IDs))}, s.err
}

func (s *recordingCheckoutService) Export(ctx context.Context, current *user.User, req checkout.ExportRequest) (checkout.ExportResponse, error) {
	s.current, s.export = current, req
	if !checkout.CanExport(current) {
		return checkout.ExportResponse{}, checkout.ErrExportForbidden
	}
	return checkout.ExportResponse{Format: req.Format, URL: "http://files.test/public/exports/x.csv"}, nil
}

func (s *recordingCheckoutService) FormDefaults(ctx context.Context, current *user.User, latitude, longitude string) (checkout.FormDefaultsResponse, error) {
	s.current = current
	return checkout.FormDefaultsResponse{UserID: current.ID, Latitude: latitude, Longitude: longitude}, s.err
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if req.Password != "password123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{AccessToken: "token"}, nil
}

func (stubAuthService) Logout(ctx context.Context, token string, expiresAt int64) error {
	return nil
}

type routerFixture struct {
	router  http.Handler
	service *recordingCheckoutService
	jwt     jwt.Service
	static  string
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	svc := &recordingCheckoutService{}
	static := t.TempDir()

	users := stubUserRepository{testAdmin.ID: testAdmin, testStaff.ID: testStaff}
	router := NewRouter(
		RouterConfig{AppName: "absensi-test", Env: "test", AllowedOrigins: []string{"http://localhost:3000"}, StaticDirs: map[string]string{"public": static}},
		jwtService,
		users,
		NewAuthHandler(authTestService{jwtService}),
		NewCheckoutHandler(svc),
	)
	return routerFixture{router: router, service: svc, jwt: jwtService, static: static}
}

// authTestService logs out through the real token revocation list.
type authTestService struct {
	jwt jwt.Service
}

func (a authTestService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	return stubAuthService{}.Login(ctx, req)
}

func (a authTestService) Logout(ctx context.Context, token string, expiresAt int64) error {
	a.jwt.RevokeToken(token, expiresAt)
	return nil
}

func (f routerFixture) token(t *testing.T, u user.User) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(u)
	require.NoError(t, err)
	return token
}

func (f routerFixture) do(t *testing.T, req *http.Request, u *user.User) *httptest.ResponseRecorder {
	t.Helper()
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+f.token(t, *u))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, data any) response.Response {
	t.Helper()
	var body response.Response
	raw := rec.Body.Bytes()
	require.NoError(t, json.Unmarshal(raw, &body))
	if data != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_UnknownUserRejected(t *testing.T) {
	f := newRouterFixture(t)
	ghost := user.User{ID: "0192b5a0-0000-7000-8000-0000000000ff", Name: "Ghost", Role: user.RoleStaff}

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts", nil), &ghost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutHandler_List_PassesCurrentUserAndFilter(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkouts?from=2024-01-01&to=2024-01-31&user_name=budi&page=2&limit=10&sort_by=user_name&sort_order=asc", nil)
	rec := f.do(t, req, &testStaff)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, f.service.current)
	assert.Equal(t, testStaff.ID, f.service.current.ID)
	assert.Equal(t, user.RoleStaff, f.service.current.Role)

	filter := f.service.filter
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	require.NotNil(t, filter.UserName)
	assert.Equal(t, "2024-01-01", *filter.From)
	assert.Equal(t, "2024-01-31", *filter.To)
	assert.Equal(t, "budi", *filter.UserName)
	assert.Equal(t, 2, filter.Page)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, "user_name", filter.SortBy)
	assert.Equal(t, "asc", filter.SortOrder)

	var list checkout.ListCheckoutResponse
	body := decodeBody(t, rec, &list)
	assert.True(t, body.Success)
	assert.True(t, list.Actions.CanCreate)
	assert.False(t, list.Actions.CanExport)
}

func TestCheckoutHandler_List_BadPage(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts?page=abc", nil), &testAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, data string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	if data != "" {
		require.NoError(t, mw.WriteField("data", data))
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "selfie.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestCheckoutHandler_Create(t *testing.T) {
	f := newRouterFixture(t)

	body, contentType := multipartBody(t, `{"latitude":"-6.2","longitude":"106.8","desc":"Selesai"}`, []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req, &testStaff)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "-6.2", f.service.create.Latitude)
	assert.Equal(t, "Selesai", f.service.create.Description)
	require.NotNil(t, f.service.create.FileHeader)
	assert.Equal(t, "selfie.jpg", f.service.create.FileHeader.Filename)
	assert.Equal(t, []byte("jpeg-bytes"), f.service.photoBytes)
}

func TestCheckoutHandler_Create_MissingPhoto(t *testing.T) {
	f := newRouterFixture(t)

	body, contentType := multipartBody(t, `{"latitude":"-6.2","longitude":"106.8","desc":"Selesai"}`, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req, &testStaff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutHandler_Create_MissingData(t *testing.T) {
	f := newRouterFixture(t)

	body, contentType := multipartBody(t, "", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req, &testStaff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutHandler_Get_NotFound(t *testing.T) {
	f := newRouterFixture(t)
	f.service.err = checkout.ErrRecordNotFound

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts/0192b5a0-0000-7000-8000-000000000001", nil), &testStaff)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutHandler_Update_JSON(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/checkouts/0192b5a0-0000-7000-8000-000000000001", strings.NewReader(`{"desc":"Koreksi"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := f.do(t, req, &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0192b5a0-0000-7000-8000-000000000001", f.service.update.ID)
	require.NotNil(t, f.service.update.Description)
	assert.Equal(t, "Koreksi", *f.service.update.Description)
	assert.Nil(t, f.service.update.Latitude)
	assert.Nil(t, f.service.update.FileHeader)
}

func TestCheckoutHandler_Update_MultipartPhoto(t *testing.T) {
	f := newRouterFixture(t)

	body, contentType := multipartBody(t, `{"latitude":"-7.0"}`, []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPut, "/api/v1/checkouts/0192b5a0-0000-7000-8000-000000000001", body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req, &testStaff)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.service.update.Latitude)
	assert.Equal(t, "-7.0", *f.service.update.Latitude)
	require.NotNil(t, f.service.update.FileHeader)
}

func TestCheckoutHandler_Export(t *testing.T) {
	f := newRouterFixture(t)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts/export", strings.NewReader(`{"format":"csv","from":"2024-01-01"}`))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	rec := f.do(t, newReq(), &testStaff)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, newReq(), &testAdmin)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, checkout.ExportCSV, f.service.export.Format)

	var resp checkout.ExportResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "http://files.test/public/exports/x.csv", resp.URL)
}

func TestCheckoutHandler_BulkDelete(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkouts/bulk-delete", strings.NewReader(`{"ids":["a","b"]}`))
	req.Header.Set("Content-Type", "application/json")

	rec := f.do(t, req, &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp checkout.BulkDeleteResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(2), resp.Deleted)
}

func TestCheckoutHandler_FormDefaults(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/checkouts/form?latitude=-6.2&longitude=106.8", nil), &testStaff)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp checkout.FormDefaultsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, testStaff.ID, resp.UserID)
	assert.Equal(t, "-6.2", resp.Latitude)
	assert.Equal(t, "106.8", resp.Longitude)
}

func TestCheckoutHandler_Navigation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/navigation", nil), &testStaff)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []checkout.NavigationItem
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Attendance Management", items[0].Group)
	assert.Equal(t, 2, items[0].Sort)
}

func TestAuthHandler_LoginAndLogout(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"admin@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(t, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := f.token(t, testAdmin)
	logout := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, logout)
	require.Equal(t, http.StatusOK, rec.Code)

	again := httptest.NewRequest(http.MethodGet, "/api/v1/checkouts", nil)
	again.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, again)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked token is rejected")
}

func writeStaticFile(t *testing.T, dir string, parts ...string) {
	t.Helper()
	full := filepath.Join(append([]string{dir}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("ID,Name\n"), 0o644))
}

func TestRouter_ExportDownloadsRequireExportAccess(t *testing.T) {
	f := newRouterFixture(t)
	writeStaticFile(t, f.static, "exports", "checkouts-20240101-abc.csv")
	target := "/uploads/public/exports/checkouts-20240101-abc.csv"

	rec := f.do(t, httptest.NewRequest(http.MethodGet, target, nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, target, nil), &testStaff)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, target, nil), &testAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ID,Name\n", rec.Body.String())
}

func TestRouter_StaticDirectoriesAreNotListed(t *testing.T) {
	f := newRouterFixture(t)
	writeStaticFile(t, f.static, "exports", "checkouts-20240101-abc.xlsx")
	writeStaticFile(t, f.static, "other", "note.txt")

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/uploads/public/exports/", nil), &testAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "checkouts-20240101-abc.xlsx")

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/uploads/public/", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/uploads/public/other/", nil), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/uploads/public/other/note.txt", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
