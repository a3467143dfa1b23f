package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/checkout"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/handler/http/response"
)

// ExportAccessRequired lets through only users allowed to export check-outs.
// It expects LoadCurrentUser to run first.
func ExportAccessRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := user.FromContext(r.Context())
		if current == nil {
			response.HandleError(w, checkout.ErrUnauthorized)
			return
		}
		if !checkout.CanExport(current) {
			response.HandleError(w, checkout.ErrExportForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
