package repository

import (
	"database/sql"

	"hireflow/internal/models"
)

// AssignmentHistoryRepository handles database operations for the
// append-only assignment history ledger
type AssignmentHistoryRepository struct {
	db *sql.DB
}

// NewAssignmentHistoryRepository creates a new assignment history repository
func NewAssignmentHistoryRepository(db *sql.DB) *AssignmentHistoryRepository {
	return &AssignmentHistoryRepository{db: db}
}

// Append inserts a history entry
func (r *AssignmentHistoryRepository) Append(entry *models.AssignmentHistory) error {
	return appendEntry(r.db, entry)
}

// AppendTx is Append running inside an existing transaction
func (r *AssignmentHistoryRepository) AppendTx(tx *sql.Tx, entry *models.AssignmentHistory) error {
	return appendEntry(tx, entry)
}

// MirrorInterviewerFeedback copies an interviewer's verdict onto their most
// recent history entry for the evaluation. History rows are a reporting
// convenience, the interview detail row stays authoritative.
func (r *AssignmentHistoryRepository) MirrorInterviewerFeedback(evaluationID, interviewerID uint, status string, feedback *string) error {
	query := `
		UPDATE assignment_history
		SET feedback_status = $1, feedback = $2, updated_at = NOW()
		WHERE id = (
			SELECT id FROM assignment_history
			WHERE evaluation_id = $3 AND interviewer_id = $4
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
	`
	_, err := r.db.Exec(query, status, feedback, evaluationID, interviewerID)
	return err
}

// MirrorHRDecision copies the HR decision onto every history entry for the
// evaluation.
func (r *AssignmentHistoryRepository) MirrorHRDecision(evaluationID uint, status string, reason *string) error {
	query := `
		UPDATE assignment_history
		SET hr_status = $1, hr_reason = $2, updated_at = NOW()
		WHERE evaluation_id = $3
	`
	_, err := r.db.Exec(query, status, reason, evaluationID)
	return err
}

// ListByEvaluation retrieves all history entries for an evaluation, oldest
// first
func (r *AssignmentHistoryRepository) ListByEvaluation(evaluationID uint) ([]models.AssignmentHistory, error) {
	query := `
		SELECT id, evaluation_id, interviewer_id, interview_time, assigned_by, note,
		       feedback_status, feedback, hr_status, hr_reason, created_at, updated_at
		FROM assignment_history
		WHERE evaluation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AssignmentHistory{}
	for rows.Next() {
		var entry models.AssignmentHistory
		err := rows.Scan(
			&entry.ID,
			&entry.EvaluationID,
			&entry.InterviewerID,
			&entry.InterviewTime,
			&entry.AssignedBy,
			&entry.Note,
			&entry.FeedbackStatus,
			&entry.Feedback,
			&entry.HRStatus,
			&entry.HRReason,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

type rowQueryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func appendEntry(q rowQueryer, entry *models.AssignmentHistory) error {
	query := `
		INSERT INTO assignment_history (evaluation_id, interviewer_id, interview_time, assigned_by, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return q.QueryRow(
		query,
		entry.EvaluationID,
		entry.InterviewerID,
		entry.InterviewTime,
		entry.AssignedBy,
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
}
