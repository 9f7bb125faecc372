package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"hireflow/internal/models"
	"hireflow/internal/repository"
)

// Audit records mutating requests in the audit log. Reads are not audited.
// Logging failures never fail the request.
func Audit(auditRepo *repository.AuditRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			if recorder.status >= 400 {
				return
			}

			entry := &models.AuditLog{
				Action:    r.Method,
				Resource:  r.URL.Path,
				Details:   fmt.Sprintf("status=%d", recorder.status),
				IPAddress: clientIP(r),
			}
			if userID, ok := UserIDFromContext(r.Context()); ok {
				entry.UserID = &userID
			}

			if err := auditRepo.Create(entry); err != nil {
				slog.Error("failed to write audit log", "path", r.URL.Path, "error", err)
			}
		})
	}
}
