package handlers

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"hireflow/internal/middleware"
	"hireflow/internal/models"
)

// RouterDeps carries everything the route table needs
type RouterDeps struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Jobs       *JobHandler
	Resumes    *ResumeHandler
	Slots      *SlotHandler
	Assign     *AssignmentHandler
	Evals      *EvaluationHandler
	Decisions  *DecisionHandler
	Health     *HealthHandler
	AuthMW     middleware.Middleware
	AuditMW    middleware.Middleware
	EnableDocs bool
}

// NewRouter builds the route table. Route-level middleware handles role
// checks; the global chain (logging, CORS, rate limiting) wraps the returned
// mux in main.
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	hr := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, d.AuthMW, middleware.RequireAnyRole(models.RoleHR, models.RoleAdmin), d.AuditMW)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, d.AuthMW, middleware.RequireRole(models.RoleAdmin), d.AuditMW)
	}
	interviewer := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, d.AuthMW, middleware.RequireRole(models.RoleInterviewer), d.AuditMW)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, d.AuthMW, d.AuditMW)
	}

	mux.HandleFunc("GET /health", d.Health.Health)

	mux.HandleFunc("POST /api/v1/auth/login", d.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", d.Auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", d.Auth.Logout)

	mux.Handle("POST /api/v1/users", admin(d.Users.Create))
	mux.Handle("GET /api/v1/users", admin(d.Users.List))
	mux.Handle("PUT /api/v1/users/{id}/active", admin(d.Users.SetActive))
	mux.Handle("PUT /api/v1/users/{id}/roles", admin(d.Users.SetRoles))
	mux.Handle("GET /api/v1/audit-logs", admin(d.Users.ListAuditLogs))

	mux.Handle("POST /api/v1/jobs", hr(d.Jobs.Create))
	mux.Handle("GET /api/v1/jobs", authed(d.Jobs.List))
	mux.Handle("GET /api/v1/jobs/{id}", authed(d.Jobs.Get))
	mux.Handle("PUT /api/v1/jobs/{id}/status", hr(d.Jobs.SetOpen))
	mux.Handle("PUT /api/v1/jobs/{id}/interviewers", hr(d.Jobs.ReplaceInterviewers))
	mux.Handle("GET /api/v1/jobs/{id}/slots", hr(d.Jobs.FreeSlots))
	mux.Handle("GET /api/v1/jobs/{id}/panel-slots", hr(d.Jobs.PanelSlots))

	mux.Handle("POST /api/v1/resumes", hr(d.Resumes.Submit))
	mux.Handle("GET /api/v1/resumes/{id}", hr(d.Resumes.Get))
	mux.Handle("GET /api/v1/resumes/{id}/versions", hr(d.Resumes.Versions))
	mux.Handle("POST /api/v1/resumes/check-duplicate", hr(d.Resumes.CheckDuplicate))

	mux.Handle("POST /api/v1/slots", interviewer(d.Slots.Publish))
	mux.Handle("GET /api/v1/slots", interviewer(d.Slots.ListMine))
	mux.Handle("DELETE /api/v1/slots/{id}", interviewer(d.Slots.Delete))
	mux.Handle("POST /api/v1/slots/{id}/release", admin(d.Slots.Release))
	mux.Handle("GET /api/v1/interviewers/{id}/slots", hr(d.Slots.ListForInterviewer))

	mux.Handle("GET /api/v1/evaluations", hr(d.Evals.List))
	mux.Handle("GET /api/v1/evaluations/{id}", authed(d.Evals.Get))
	mux.Handle("POST /api/v1/evaluations/{id}/assignments", hr(d.Assign.Assign))
	mux.Handle("DELETE /api/v1/evaluations/{id}/assignments", hr(d.Assign.Withdraw))
	mux.Handle("GET /api/v1/evaluations/{id}/assignments", authed(d.Assign.List))
	mux.Handle("GET /api/v1/evaluations/{id}/history", hr(d.Assign.History))
	mux.Handle("PUT /api/v1/evaluations/{id}/decision", hr(d.Decisions.SubmitHRDecision))

	mux.Handle("GET /api/v1/interviews/mine", interviewer(d.Decisions.MyAssignments))
	mux.Handle("PUT /api/v1/interviews/{id}/feedback", interviewer(d.Decisions.SubmitFeedback))

	if d.EnableDocs {
		mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	return mux
}
