package repository

import (
	"database/sql"
	"fmt"
	"time"

	"hireflow/internal/models"
)

// InterviewDetailRepository handles database operations for per-interviewer
// interview assignments
type InterviewDetailRepository struct {
	db *sql.DB
}

// NewInterviewDetailRepository creates a new interview detail repository
func NewInterviewDetailRepository(db *sql.DB) *InterviewDetailRepository {
	return &InterviewDetailRepository{db: db}
}

// CreateTx inserts an interview detail inside an existing transaction
func (r *InterviewDetailRepository) CreateTx(tx *sql.Tx, detail *models.InterviewDetail) error {
	query := `
		INSERT INTO interview_details (evaluation_id, slot_id, interviewer_id, interviewer_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return tx.QueryRow(
		query,
		detail.EvaluationID,
		detail.SlotID,
		detail.InterviewerID,
		detail.InterviewerStatus,
	).Scan(&detail.ID, &detail.CreatedAt, &detail.UpdatedAt)
}

// DeleteByEvaluationTx removes all interview details for an evaluation
// inside an existing transaction
func (r *InterviewDetailRepository) DeleteByEvaluationTx(tx *sql.Tx, evaluationID uint) (int64, error) {
	result, err := tx.Exec(`DELETE FROM interview_details WHERE evaluation_id = $1`, evaluationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByID retrieves an interview detail by ID
func (r *InterviewDetailRepository) GetByID(id uint) (*models.InterviewDetail, error) {
	var detail models.InterviewDetail
	query := `
		SELECT id, evaluation_id, slot_id, interviewer_id, interviewer_status,
		       interviewer_feedback, interviewer_hold_reason, created_at, updated_at
		FROM interview_details
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&detail.ID,
		&detail.EvaluationID,
		&detail.SlotID,
		&detail.InterviewerID,
		&detail.InterviewerStatus,
		&detail.InterviewerFeedback,
		&detail.InterviewerHoldReason,
		&detail.CreatedAt,
		&detail.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

// ListByEvaluation retrieves all interview details for an evaluation with
// interviewer names and slot times
func (r *InterviewDetailRepository) ListByEvaluation(evaluationID uint) ([]models.InterviewDetailWithNames, error) {
	query := detailWithNamesSelect + `
		WHERE d.evaluation_id = $1
		ORDER BY d.interviewer_id
	`
	return r.scanManyWithNames(r.db.Query(query, evaluationID))
}

// ListByInterviewer retrieves an interviewer's assignments ordered by slot
// start
func (r *InterviewDetailRepository) ListByInterviewer(interviewerID uint) ([]models.InterviewDetailWithNames, error) {
	query := detailWithNamesSelect + `
		WHERE d.interviewer_id = $1
		ORDER BY s.start_time ASC
	`
	return r.scanManyWithNames(r.db.Query(query, interviewerID))
}

// UpdateFeedback stores an interviewer's verdict on their assignment
func (r *InterviewDetailRepository) UpdateFeedback(id uint, status string, feedback, holdReason *string) error {
	result, err := r.db.Exec(
		`UPDATE interview_details
		 SET interviewer_status = $1, interviewer_feedback = $2, interviewer_hold_reason = $3, updated_at = NOW()
		 WHERE id = $4`,
		status, feedback, holdReason, id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// StatusesByEvaluation returns the interviewer statuses recorded for an
// evaluation, used to recompute the aggregate verdict.
func (r *InterviewDetailRepository) StatusesByEvaluation(evaluationID uint) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT interviewer_status FROM interview_details WHERE evaluation_id = $1`,
		evaluationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []string{}
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return statuses, rows.Err()
}

// UpcomingInterview carries what a reminder email needs
type UpcomingInterview struct {
	DetailID         uint
	InterviewerEmail string
	CandidateName    string
	StartTime        time.Time
}

// ListUpcoming returns pending assignments starting within the lead window
func (r *InterviewDetailRepository) ListUpcoming(lead time.Duration) ([]UpcomingInterview, error) {
	query := `
		SELECT d.id, u.email, rs.candidate_name, s.start_time
		FROM interview_details d
		JOIN users u ON u.id = d.interviewer_id
		JOIN time_slots s ON s.id = d.slot_id
		JOIN evaluations e ON e.id = d.evaluation_id
		JOIN resume_submissions rs ON rs.id = e.resume_id
		WHERE d.interviewer_status = 'pending'
		  AND s.start_time > NOW()
		  AND s.start_time <= NOW() + $1::interval
		ORDER BY s.start_time ASC
	`
	interval := fmt.Sprintf("%d minutes", int(lead.Minutes()))

	rows, err := r.db.Query(query, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	upcoming := []UpcomingInterview{}
	for rows.Next() {
		var u UpcomingInterview
		if err := rows.Scan(&u.DetailID, &u.InterviewerEmail, &u.CandidateName, &u.StartTime); err != nil {
			return nil, err
		}
		upcoming = append(upcoming, u)
	}

	return upcoming, rows.Err()
}

const detailWithNamesSelect = `
	SELECT d.id, d.evaluation_id, d.slot_id, d.interviewer_id, d.interviewer_status,
	       d.interviewer_feedback, d.interviewer_hold_reason, d.created_at, d.updated_at,
	       TRIM(u.first_name || ' ' || u.last_name), u.email, s.start_time, s.end_time
	FROM interview_details d
	JOIN users u ON u.id = d.interviewer_id
	JOIN time_slots s ON s.id = d.slot_id`

func (r *InterviewDetailRepository) scanManyWithNames(rows *sql.Rows, err error) ([]models.InterviewDetailWithNames, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []models.InterviewDetailWithNames{}
	for rows.Next() {
		var detail models.InterviewDetailWithNames
		err := rows.Scan(
			&detail.ID,
			&detail.EvaluationID,
			&detail.SlotID,
			&detail.InterviewerID,
			&detail.InterviewerStatus,
			&detail.InterviewerFeedback,
			&detail.InterviewerHoldReason,
			&detail.CreatedAt,
			&detail.UpdatedAt,
			&detail.InterviewerName,
			&detail.InterviewerEmail,
			&detail.SlotStart,
			&detail.SlotEnd,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return details, rows.Err()
}
