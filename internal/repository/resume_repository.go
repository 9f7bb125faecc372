package repository

import (
	"database/sql"

	"hireflow/internal/models"
)

// ResumeRepository handles database operations for resume submissions.
// Submissions from the same candidate form a version chain: the first
// submission is the root (parent_id NULL), later ones point at the root.
type ResumeRepository struct {
	db *sql.DB
}

// NewResumeRepository creates a new resume repository
func NewResumeRepository(db *sql.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Create inserts a resume submission
func (r *ResumeRepository) Create(resume *models.ResumeSubmission) error {
	query := `
		INSERT INTO resume_submissions
			(candidate_name, candidate_email, candidate_phone, resume_text, skills,
			 experience_years, profile_json, parent_id, version_number, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	return r.db.QueryRow(
		query,
		resume.CandidateName,
		resume.CandidateEmail,
		resume.CandidatePhone,
		resume.ResumeText,
		resume.Skills,
		resume.ExperienceYears,
		resume.ProfileJSON,
		resume.ParentID,
		resume.VersionNumber,
		resume.UploadedBy,
	).Scan(&resume.ID, &resume.CreatedAt)
}

// UpdateProfile stores the parsed profile fields for a submission
func (r *ResumeRepository) UpdateProfile(id uint, skills string, experienceYears float64, profileJSON *string) error {
	result, err := r.db.Exec(
		`UPDATE resume_submissions SET skills = $1, experience_years = $2, profile_json = $3 WHERE id = $4`,
		skills, experienceYears, profileJSON, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// GetByID retrieves a resume submission by ID
func (r *ResumeRepository) GetByID(id uint) (*models.ResumeSubmission, error) {
	query := resumeSelect + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// FindOldestByEmail returns the oldest submission with the given email.
// Roots are preferred over versioned children so that a chain always
// resolves to its root.
func (r *ResumeRepository) FindOldestByEmail(email string) (*models.ResumeSubmission, error) {
	query := resumeSelect + `
		WHERE LOWER(candidate_email) = LOWER($1) AND candidate_email <> ''
		ORDER BY (parent_id IS NULL) DESC, created_at ASC, id ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, email))
}

// FindOldestByName returns the oldest submission whose candidate name
// matches case-insensitively, the fallback when no email matches.
func (r *ResumeRepository) FindOldestByName(name string) (*models.ResumeSubmission, error) {
	query := resumeSelect + `
		WHERE LOWER(TRIM(candidate_name)) = LOWER(TRIM($1)) AND candidate_name <> ''
		ORDER BY (parent_id IS NULL) DESC, created_at ASC, id ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, name))
}

// MaxVersionForRoot returns the highest version number in the chain rooted
// at the given submission, including the root itself.
func (r *ResumeRepository) MaxVersionForRoot(rootID uint) (int, error) {
	var maxVersion int
	query := `
		SELECT COALESCE(MAX(version_number), 1)
		FROM resume_submissions
		WHERE id = $1 OR parent_id = $1
	`
	err := r.db.QueryRow(query, rootID).Scan(&maxVersion)
	return maxVersion, err
}

// ListVersions returns all submissions in the chain rooted at the given
// submission, oldest first.
func (r *ResumeRepository) ListVersions(rootID uint) ([]models.ResumeSubmission, error) {
	query := resumeSelect + `
		WHERE id = $1 OR parent_id = $1
		ORDER BY version_number ASC, id ASC
	`
	return r.scanMany(r.db.Query(query, rootID))
}

// List retrieves all submissions, newest first
func (r *ResumeRepository) List() ([]models.ResumeSubmission, error) {
	query := resumeSelect + ` ORDER BY created_at DESC`
	return r.scanMany(r.db.Query(query))
}

const resumeSelect = `
	SELECT id, candidate_name, candidate_email, candidate_phone, resume_text, skills,
	       experience_years, profile_json, parent_id, version_number, uploaded_by, created_at
	FROM resume_submissions`

func (r *ResumeRepository) scanOne(row *sql.Row) (*models.ResumeSubmission, error) {
	var resume models.ResumeSubmission
	err := row.Scan(
		&resume.ID,
		&resume.CandidateName,
		&resume.CandidateEmail,
		&resume.CandidatePhone,
		&resume.ResumeText,
		&resume.Skills,
		&resume.ExperienceYears,
		&resume.ProfileJSON,
		&resume.ParentID,
		&resume.VersionNumber,
		&resume.UploadedBy,
		&resume.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *ResumeRepository) scanMany(rows *sql.Rows, err error) ([]models.ResumeSubmission, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []models.ResumeSubmission{}
	for rows.Next() {
		var resume models.ResumeSubmission
		err := rows.Scan(
			&resume.ID,
			&resume.CandidateName,
			&resume.CandidateEmail,
			&resume.CandidatePhone,
			&resume.ResumeText,
			&resume.Skills,
			&resume.ExperienceYears,
			&resume.ProfileJSON,
			&resume.ParentID,
			&resume.VersionNumber,
			&resume.UploadedBy,
			&resume.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}

	return resumes, rows.Err()
}
