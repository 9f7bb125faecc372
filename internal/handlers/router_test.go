package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hireflow/internal/auth"
	"hireflow/internal/config"
	"hireflow/internal/database"
	"hireflow/internal/email"
	"hireflow/internal/handlers"
	"hireflow/internal/middleware"
	"hireflow/internal/queue"
	"hireflow/internal/repository"
	"hireflow/internal/service"
	"hireflow/internal/testutil"
)

type testEnv struct {
	containers *testutil.TestContainers
	fixtures   *testutil.Fixtures
	server     *httptest.Server
}

// newTestEnv wires the full route table against a containerized database,
// with the parser, queue and meeting collaborators disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	containers := testutil.SetupTestContainers(t)
	fixtures := testutil.SetupFixtures(t, containers.DB)
	db := containers.DB

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	jobRepo := repository.NewJobRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	detailRepo := repository.NewInterviewDetailRepository(db)
	historyRepo := repository.NewAssignmentHistoryRepository(db)

	authCore := auth.NewService(&config.JWTConfig{
		Secret:            containers.JWTSecret,
		Expiration:        15 * time.Minute,
		RefreshExpiration: 168 * time.Hour,
	})
	authService := service.NewAuthService(authCore, userRepo, sessionRepo)
	mailer := email.NewService(&config.EmailConfig{})
	parser := service.NewParserService(&config.ParserConfig{})
	scoring := service.NewScoringService(resumeRepo, evalRepo, jobRepo, parser)
	identity := service.NewIdentityService(resumeRepo)
	repair := service.NewRepairService(db, slotRepo, evalRepo, detailRepo)
	slotService := service.NewSlotService(slotRepo, userRepo, jobRepo)
	decisionService := service.NewDecisionService(evalRepo, detailRepo, historyRepo)
	assignmentService := service.NewAssignmentService(
		db, evalRepo, resumeRepo, jobRepo, userRepo, slotRepo, detailRepo, historyRepo, nil, mailer)
	resumeService := service.NewResumeService(
		resumeRepo, evalRepo, jobRepo, identity, &queue.InlineEnqueuer{Scorer: scoring})

	mux := handlers.NewRouter(handlers.RouterDeps{
		Auth:      handlers.NewAuthHandler(authService),
		Users:     handlers.NewUserHandler(authService, userRepo, auditRepo),
		Jobs:      handlers.NewJobHandler(jobRepo, slotService),
		Resumes:   handlers.NewResumeHandler(resumeService, repair),
		Slots:     handlers.NewSlotHandler(slotService),
		Assign:    handlers.NewAssignmentHandler(assignmentService),
		Evals:     handlers.NewEvaluationHandler(evalRepo),
		Decisions: handlers.NewDecisionHandler(decisionService, detailRepo),
		Health:    handlers.NewHealthHandler(&database.Database{DB: db}, "test"),
		AuthMW:    middleware.Auth(authCore, sessionRepo, userRepo),
		AuditMW:   middleware.Audit(auditRepo),
	})

	return &testEnv{
		containers: containers,
		fixtures:   fixtures,
		server:     httptest.NewServer(mux),
	}
}

func (e *testEnv) cleanup(t *testing.T) {
	e.server.Close()
	e.containers.Cleanup(t)
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (e *testEnv) login(t *testing.T, emailAddr string) (accessToken, refreshToken string) {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    emailAddr,
		"password": "password123!",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login as %s failed with status %d", emailAddr, resp.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return payload.AccessToken, payload.RefreshToken
}

func TestLoginAndRoleEnforcement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := newTestEnv(t)
	defer env.cleanup(t)

	// Wrong password is refused.
	resp := env.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "hr@test.com",
		"password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Wrong password should be refused, got %d", resp.StatusCode)
	}

	// No token means no access.
	resp = env.request(t, http.MethodGet, "/api/v1/evaluations?status=pending", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Unauthenticated request should get 401, got %d", resp.StatusCode)
	}

	hrToken, _ := env.login(t, "hr@test.com")
	interviewerToken, _ := env.login(t, "interviewer@test.com")

	// HR can list evaluations, an interviewer cannot.
	resp = env.request(t, http.MethodGet, "/api/v1/evaluations?status=pending", hrToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("HR should list evaluations, got %d", resp.StatusCode)
	}
	resp = env.request(t, http.MethodGet, "/api/v1/evaluations?status=pending", interviewerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Interviewer should be forbidden from HR routes, got %d", resp.StatusCode)
	}

	// Publishing slots goes the other way around.
	slotBody := map[string]string{
		"start_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"end_time":   time.Now().Add(25 * time.Hour).Format(time.RFC3339),
	}
	resp = env.request(t, http.MethodPost, "/api/v1/slots", hrToken, slotBody)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("HR should be forbidden from publishing slots, got %d", resp.StatusCode)
	}
	resp = env.request(t, http.MethodPost, "/api/v1/slots", interviewerToken, slotBody)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Interviewer should publish a slot, got %d", resp.StatusCode)
	}

	// Re-publishing the same window is idempotent.
	resp = env.request(t, http.MethodPost, "/api/v1/slots", interviewerToken, slotBody)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Idempotent re-publish should get 200, got %d", resp.StatusCode)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := newTestEnv(t)
	defer env.cleanup(t)

	access, refresh := env.login(t, "hr@test.com")

	resp := env.request(t, http.MethodGet, "/api/v1/jobs", access, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Token should work before logout, got %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Logout failed with status %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, "/api/v1/jobs", access, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Token should be dead after logout, got %d", resp.StatusCode)
	}

	// The refresh token died with the session too.
	resp = env.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Error("Refresh should fail after logout")
	}
}

func TestResumeIntakeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := newTestEnv(t)
	defer env.cleanup(t)

	hrToken, _ := env.login(t, "hr@test.com")

	submit := func(email string) map[string]json.RawMessage {
		resp := env.request(t, http.MethodPost, "/api/v1/resumes", hrToken, map[string]any{
			"candidate_name":  "Jane Doe",
			"candidate_email": email,
			"resume_text":     "Ten years of backend work.",
			"job_id":          env.fixtures.Job.ID,
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Resume submission failed with status %d", resp.StatusCode)
		}
		var payload map[string]json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode submission response: %v", err)
		}
		return payload
	}

	first := submit("jane@example.com")

	var resume struct {
		ID            uint `json:"id"`
		VersionNumber int  `json:"version_number"`
	}
	if err := json.Unmarshal(first["resume"], &resume); err != nil {
		t.Fatalf("Failed to decode resume: %v", err)
	}
	if resume.VersionNumber != 1 {
		t.Errorf("First submission should be version 1, got %d", resume.VersionNumber)
	}

	// The same candidate submitting again becomes version 2.
	second := submit("JANE@example.com")
	if err := json.Unmarshal(second["resume"], &resume); err != nil {
		t.Fatalf("Failed to decode resume: %v", err)
	}
	if resume.VersionNumber != 2 {
		t.Errorf("Repeat submission should be version 2, got %d", resume.VersionNumber)
	}

	// Duplicate check sees the candidate.
	resp := env.request(t, http.MethodPost, "/api/v1/resumes/check-duplicate", hrToken, map[string]string{
		"candidate_email": "jane@example.com",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Duplicate check failed with status %d", resp.StatusCode)
	}
	var dupe struct {
		IsDuplicate bool `json:"is_duplicate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&dupe); err != nil {
		t.Fatalf("Failed to decode duplicate check: %v", err)
	}
	if !dupe.IsDuplicate {
		t.Error("Known candidate should be reported as a duplicate")
	}
}

func TestHealthEndpoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := newTestEnv(t)
	defer env.cleanup(t)

	resp, err := http.Get(fmt.Sprintf("%s/health", env.server.URL))
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health should report 200, got %d", resp.StatusCode)
	}
}

func TestAdminRoleManagement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	env := newTestEnv(t)
	defer env.cleanup(t)

	adminToken, _ := env.login(t, "admin@test.com")
	hrToken, _ := env.login(t, "hr@test.com")

	target := fmt.Sprintf("/api/v1/users/%d/roles", env.fixtures.Interviewer2.ID)

	// Role management is admin-only.
	resp := env.request(t, http.MethodPut, target, hrToken, map[string]any{
		"roles": []string{"hr"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("HR should not manage roles, got %d", resp.StatusCode)
	}

	// Replace interviewer with hr+interviewer.
	resp = env.request(t, http.MethodPut, target, adminToken, map[string]any{
		"roles": []string{"hr", "interviewer"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Role replacement should succeed, got %d", resp.StatusCode)
	}

	var roles []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		t.Fatalf("Failed to decode roles response: %v", err)
	}
	names := map[string]bool{}
	for _, role := range roles {
		names[role.Name] = true
	}
	if len(roles) != 2 || !names["hr"] || !names["interviewer"] {
		t.Errorf("Expected roles hr+interviewer, got %v", roles)
	}

	// Unknown role names are refused.
	resp = env.request(t, http.MethodPut, target, adminToken, map[string]any{
		"roles": []string{"superuser"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Unknown role should be refused, got %d", resp.StatusCode)
	}
}
