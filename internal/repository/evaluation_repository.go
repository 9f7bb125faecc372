package repository

import (
	"database/sql"

	"hireflow/internal/models"
)

// EvaluationRepository handles database operations for candidate evaluations
type EvaluationRepository struct {
	db *sql.DB
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts an evaluation record with all three status axes pending
func (r *EvaluationRepository) Create(eval *models.Evaluation) error {
	query := `
		INSERT INTO evaluations (resume_id, job_id, status, interviewer_overall_status, hr_final_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(
		query,
		eval.ResumeID,
		eval.JobID,
		eval.Status,
		eval.InterviewerOverallStatus,
		eval.HRFinalStatus,
	).Scan(&eval.ID, &eval.CreatedAt, &eval.UpdatedAt)
}

// GetByID retrieves an evaluation by ID
func (r *EvaluationRepository) GetByID(id uint) (*models.Evaluation, error) {
	query := evaluationSelect + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByResumeAndJob retrieves the evaluation for a resume/job pair
func (r *EvaluationRepository) GetByResumeAndJob(resumeID, jobID uint) (*models.Evaluation, error) {
	query := evaluationSelect + ` WHERE resume_id = $1 AND job_id = $2`
	return r.scanOne(r.db.QueryRow(query, resumeID, jobID))
}

// ListByJob retrieves all evaluations for a job, newest first
func (r *EvaluationRepository) ListByJob(jobID uint) ([]models.Evaluation, error) {
	query := evaluationSelect + ` WHERE job_id = $1 ORDER BY created_at DESC`
	return r.scanMany(r.db.Query(query, jobID))
}

// ListByStatus retrieves all evaluations with the given match status
func (r *EvaluationRepository) ListByStatus(status string) ([]models.Evaluation, error) {
	query := evaluationSelect + ` WHERE status = $1 ORDER BY created_at DESC`
	return r.scanMany(r.db.Query(query, status))
}

// UpdateMatchResult stores the automated scoring outcome for an evaluation
func (r *EvaluationRepository) UpdateMatchResult(id uint, result models.MatchResult) error {
	var reason *string
	if result.RejectionReason != "" {
		reason = &result.RejectionReason
	}

	res, err := r.db.Exec(
		`UPDATE evaluations
		 SET status = $1, overall_match = $2, skills_match = $3, experience_match = $4,
		     education_match = $5, rejection_reason = $6, updated_at = NOW()
		 WHERE id = $7`,
		result.Status, result.OverallMatch, result.SkillsMatch, result.ExperienceMatch,
		result.EducationMatch, reason, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus overrides the automated match status
func (r *EvaluationRepository) UpdateStatus(id uint, status string) error {
	result, err := r.db.Exec(
		`UPDATE evaluations SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateHRDecision stores the HR decision fields for an evaluation
func (r *EvaluationRepository) UpdateHRDecision(id uint, status string, reason, remarks *string) error {
	result, err := r.db.Exec(
		`UPDATE evaluations SET hr_final_status = $1, hr_final_reason = $2, hr_remarks = $3, updated_at = NOW() WHERE id = $4`,
		status, reason, remarks, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateInterviewerOverallStatus stores the aggregate interviewer verdict
func (r *EvaluationRepository) UpdateInterviewerOverallStatus(id uint, status string) error {
	result, err := r.db.Exec(
		`UPDATE evaluations SET interviewer_overall_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateMeetingLinks stores the meeting URLs produced for an interview
func (r *EvaluationRepository) UpdateMeetingLinks(id uint, startURL, joinURL string) error {
	result, err := r.db.Exec(
		`UPDATE evaluations SET interview_start_url = $1, interview_join_url = $2, updated_at = NOW() WHERE id = $3`,
		startURL, joinURL, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ClearMeetingLinks removes stored meeting URLs, used when an interview
// assignment is withdrawn.
func (r *EvaluationRepository) ClearMeetingLinks(id uint) error {
	_, err := r.db.Exec(
		`UPDATE evaluations SET interview_start_url = NULL, interview_join_url = NULL, updated_at = NOW() WHERE id = $1`,
		id,
	)
	return err
}

// HasActionableByCandidate reports whether the candidate has an evaluation
// that is still live: HR decision pending with at least one interviewer
// assigned.
func (r *EvaluationRepository) HasActionableByCandidate(candidateEmail string) (bool, error) {
	var actionable bool
	err := r.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1
			FROM evaluations e
			JOIN resume_submissions rs ON rs.id = e.resume_id
			WHERE LOWER(rs.candidate_email) = LOWER($1)
			  AND e.hr_final_status = 'pending'
			  AND EXISTS (SELECT 1 FROM interview_details d WHERE d.evaluation_id = e.id)
		)
	`, candidateEmail).Scan(&actionable)
	return actionable, err
}

// ListBoundByCandidate returns the IDs of the candidate's evaluations that
// still hold interview details or claimed slots.
func (r *EvaluationRepository) ListBoundByCandidate(candidateEmail string) ([]uint, error) {
	rows, err := r.db.Query(`
		SELECT e.id
		FROM evaluations e
		JOIN resume_submissions rs ON rs.id = e.resume_id
		WHERE LOWER(rs.candidate_email) = LOWER($1)
		  AND (
			EXISTS (SELECT 1 FROM interview_details d WHERE d.evaluation_id = e.id)
			OR EXISTS (SELECT 1 FROM time_slots s WHERE s.evaluation_id = e.id AND s.is_booked)
		  )
		ORDER BY e.id
	`, candidateEmail)
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

// ResetDecisionTx returns an evaluation's decision axes to pending inside an
// existing transaction, clearing the HR reason and stored meeting links.
func (r *EvaluationRepository) ResetDecisionTx(tx *sql.Tx, id uint) error {
	result, err := tx.Exec(`
		UPDATE evaluations
		SET interviewer_overall_status = 'pending',
		    hr_final_status = 'pending',
		    hr_final_reason = NULL,
		    interview_start_url = NULL,
		    interview_join_url = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

const evaluationSelect = `
	SELECT id, resume_id, job_id, status, overall_match, skills_match, experience_match,
	       education_match, rejection_reason, interviewer_overall_status, hr_final_status,
	       hr_final_reason, hr_remarks, interview_start_url, interview_join_url,
	       created_at, updated_at
	FROM evaluations`

func (r *EvaluationRepository) scanOne(row *sql.Row) (*models.Evaluation, error) {
	var eval models.Evaluation
	err := scanEvaluation(row.Scan, &eval)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

func (r *EvaluationRepository) scanMany(rows *sql.Rows, err error) ([]models.Evaluation, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evals := []models.Evaluation{}
	for rows.Next() {
		var eval models.Evaluation
		if err := scanEvaluation(rows.Scan, &eval); err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}

	return evals, rows.Err()
}

func scanEvaluation(scan func(...any) error, eval *models.Evaluation) error {
	return scan(
		&eval.ID,
		&eval.ResumeID,
		&eval.JobID,
		&eval.Status,
		&eval.OverallMatch,
		&eval.SkillsMatch,
		&eval.ExperienceMatch,
		&eval.EducationMatch,
		&eval.RejectionReason,
		&eval.InterviewerOverallStatus,
		&eval.HRFinalStatus,
		&eval.HRFinalReason,
		&eval.HRRemarks,
		&eval.InterviewStartURL,
		&eval.InterviewJoinURL,
		&eval.CreatedAt,
		&eval.UpdatedAt,
	)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
