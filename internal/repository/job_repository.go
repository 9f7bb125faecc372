package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"hireflow/internal/models"
)

// JobRepository handles database operations for job postings and their
// mapped interviewers
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a job posting and its interviewer mappings
func (r *JobRepository) Create(job *models.JobPosting) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO job_postings (title, description, is_open, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(
		query,
		job.Title,
		job.Description,
		job.IsOpen,
		job.CreatedBy,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return err
	}

	for _, interviewerID := range job.InterviewerIDs {
		_, err = tx.Exec(
			`INSERT INTO job_interviewers (job_id, interviewer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			job.ID, interviewerID,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a job posting with its interviewer IDs
func (r *JobRepository) GetByID(id uint) (*models.JobPosting, error) {
	var job models.JobPosting
	query := `
		SELECT id, title, description, is_open, created_by, created_at, updated_at
		FROM job_postings
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.IsOpen,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.InterviewerIDs, err = r.interviewerIDs(id)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// List retrieves job postings, optionally only open ones
func (r *JobRepository) List(openOnly bool) ([]models.JobPosting, error) {
	query := `
		SELECT id, title, description, is_open, created_by, created_at, updated_at
		FROM job_postings
	`
	if openOnly {
		query += ` WHERE is_open = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.JobPosting{}
	for rows.Next() {
		var job models.JobPosting
		err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Description,
			&job.IsOpen,
			&job.CreatedBy,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range jobs {
		jobs[i].InterviewerIDs, err = r.interviewerIDs(jobs[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return jobs, nil
}

// SetOpen opens or closes a job posting
func (r *JobRepository) SetOpen(id uint, isOpen bool) error {
	result, err := r.db.Exec(
		`UPDATE job_postings SET is_open = $1, updated_at = NOW() WHERE id = $2`,
		isOpen, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ReplaceInterviewers replaces the interviewer mapping for a job
func (r *JobRepository) ReplaceInterviewers(jobID uint, interviewerIDs []uint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM job_interviewers WHERE job_id = $1`, jobID); err != nil {
		return err
	}
	for _, id := range interviewerIDs {
		if _, err = tx.Exec(
			`INSERT INTO job_interviewers (job_id, interviewer_id) VALUES ($1, $2)`,
			jobID, id,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MappedInterviewers reports which of the given interviewer IDs are mapped
// to the job.
func (r *JobRepository) MappedInterviewers(jobID uint, interviewerIDs []uint) ([]uint, error) {
	ids := make([]int64, len(interviewerIDs))
	for i, id := range interviewerIDs {
		ids[i] = int64(id)
	}

	query := `
		SELECT interviewer_id FROM job_interviewers
		WHERE job_id = $1 AND interviewer_id = ANY($2)
	`
	rows, err := r.db.Query(query, jobID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mapped := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		mapped = append(mapped, id)
	}

	return mapped, rows.Err()
}

func (r *JobRepository) interviewerIDs(jobID uint) ([]uint, error) {
	rows, err := r.db.Query(
		`SELECT interviewer_id FROM job_interviewers WHERE job_id = $1 ORDER BY interviewer_id`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
