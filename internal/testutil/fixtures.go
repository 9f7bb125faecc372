package testutil

import (
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hireflow/internal/models"
)

// Fixtures holds test data
type Fixtures struct {
	DB           *sql.DB
	AdminUser    *models.User
	HRUser       *models.User
	Interviewer  *models.User
	Interviewer2 *models.User
	Job          *models.JobPosting
}

// SetupFixtures creates the baseline users and a job posting with both
// interviewers mapped to it. Roles are seeded by the schema migration.
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{DB: db}

	f.AdminUser = f.CreateUser(t, "admin@test.com", "Admin", "User", models.RoleAdmin)
	f.HRUser = f.CreateUser(t, "hr@test.com", "HR", "User", models.RoleHR)
	f.Interviewer = f.CreateUser(t, "interviewer@test.com", "Ivan", "Interviewer", models.RoleInterviewer)
	f.Interviewer2 = f.CreateUser(t, "interviewer2@test.com", "Ida", "Interviewer", models.RoleInterviewer)

	f.Job = f.CreateJob(t, "Backend Engineer", f.HRUser.ID, f.Interviewer.ID, f.Interviewer2.ID)

	return f
}

// CreateUser creates a user with the given roles assigned
func (f *Fixtures) CreateUser(t *testing.T, email, firstName, lastName string, roles ...string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123!"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = f.DB.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, email, first_name, last_name, is_active, created_at, updated_at
	`, email, string(hashed), firstName, lastName).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	for _, role := range roles {
		_, err := f.DB.Exec(`
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
		`, user.ID, role)
		if err != nil {
			t.Fatalf("Failed to assign role %s to user %s: %v", role, email, err)
		}
	}

	return &user
}

// CreateJob creates an open job posting with the given interviewers mapped
func (f *Fixtures) CreateJob(t *testing.T, title string, createdBy uint, interviewerIDs ...uint) *models.JobPosting {
	t.Helper()

	var job models.JobPosting
	err := f.DB.QueryRow(`
		INSERT INTO job_postings (title, description, is_open, created_by)
		VALUES ($1, $2, true, $3)
		RETURNING id, title, description, is_open, created_by, created_at, updated_at
	`, title, "Test posting for "+title, createdBy).Scan(
		&job.ID, &job.Title, &job.Description, &job.IsOpen,
		&job.CreatedBy, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create job %s: %v", title, err)
	}

	for _, id := range interviewerIDs {
		if _, err := f.DB.Exec(
			"INSERT INTO job_interviewers (job_id, interviewer_id) VALUES ($1, $2)", job.ID, id,
		); err != nil {
			t.Fatalf("Failed to map interviewer %d to job %d: %v", id, job.ID, err)
		}
		job.InterviewerIDs = append(job.InterviewerIDs, id)
	}

	return &job
}

// CreateSlot creates a free time slot for an interviewer
func (f *Fixtures) CreateSlot(t *testing.T, interviewerID uint, start, end time.Time) *models.TimeSlot {
	t.Helper()

	var slot models.TimeSlot
	err := f.DB.QueryRow(`
		INSERT INTO time_slots (interviewer_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, interviewer_id, start_time, end_time, is_booked, evaluation_id, created_at, updated_at
	`, interviewerID, start, end).Scan(
		&slot.ID, &slot.InterviewerID, &slot.StartTime, &slot.EndTime,
		&slot.IsBooked, &slot.EvaluationID, &slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}

	return &slot
}

// CreateResume creates a root resume submission for a candidate
func (f *Fixtures) CreateResume(t *testing.T, name, email string) *models.ResumeSubmission {
	t.Helper()

	var resume models.ResumeSubmission
	err := f.DB.QueryRow(`
		INSERT INTO resume_submissions (candidate_name, candidate_email, resume_text, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, candidate_name, candidate_email, version_number, created_at
	`, name, email, "Resume body for "+name, f.HRUser.ID).Scan(
		&resume.ID, &resume.CandidateName, &resume.CandidateEmail,
		&resume.VersionNumber, &resume.CreatedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create resume for %s: %v", name, err)
	}

	return &resume
}

// CreateEvaluation creates a pending evaluation linking a resume to a job
func (f *Fixtures) CreateEvaluation(t *testing.T, resumeID, jobID uint) *models.Evaluation {
	t.Helper()

	var eval models.Evaluation
	err := f.DB.QueryRow(`
		INSERT INTO evaluations (resume_id, job_id)
		VALUES ($1, $2)
		RETURNING id, resume_id, job_id, status, interviewer_overall_status, hr_final_status
	`, resumeID, jobID).Scan(
		&eval.ID, &eval.ResumeID, &eval.JobID, &eval.Status,
		&eval.InterviewerOverallStatus, &eval.HRFinalStatus,
	)
	if err != nil {
		t.Fatalf("Failed to create evaluation: %v", err)
	}

	return &eval
}
