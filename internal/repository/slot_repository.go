package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"hireflow/internal/models"
)

// SlotRepository handles database operations for interviewer time slots.
// Booking is a conditional update: a claim succeeds only if the slot is
// still free at the moment the UPDATE runs, so concurrent claims on the
// same slot resolve to exactly one winner.
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new slot repository
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Publish inserts a free slot for an interviewer. Publishing the same
// window twice is a no-op and reports false.
func (r *SlotRepository) Publish(slot *models.TimeSlot) (bool, error) {
	query := `
		INSERT INTO time_slots (interviewer_id, start_time, end_time, is_booked)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (interviewer_id, start_time, end_time) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(query, slot.InterviewerID, slot.StartTime, slot.EndTime).
		Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID retrieves a slot by ID
func (r *SlotRepository) GetByID(id uint) (*models.TimeSlot, error) {
	query := slotSelect + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByWindow retrieves an interviewer's slot for an exact time window
func (r *SlotRepository) GetByWindow(interviewerID uint, start, end time.Time) (*models.TimeSlot, error) {
	query := slotSelect + ` WHERE interviewer_id = $1 AND start_time = $2 AND end_time = $3`
	return r.scanOne(r.db.QueryRow(query, interviewerID, start, end))
}

// Claim books a free slot for an evaluation. Returns false when the slot
// was already booked or does not exist.
func (r *SlotRepository) Claim(slotID, evaluationID uint) (bool, error) {
	return claim(r.db, slotID, evaluationID)
}

// ClaimTx is Claim running inside an existing transaction
func (r *SlotRepository) ClaimTx(tx *sql.Tx, slotID, evaluationID uint) (bool, error) {
	return claim(tx, slotID, evaluationID)
}

// Release frees a booked slot. Releasing a slot that is already free is
// a no-op.
func (r *SlotRepository) Release(slotID uint) error {
	_, err := r.db.Exec(releaseQuery, slotID)
	return err
}

// ReleaseTx is Release running inside an existing transaction
func (r *SlotRepository) ReleaseTx(tx *sql.Tx, slotID uint) error {
	_, err := tx.Exec(releaseQuery, slotID)
	return err
}

// ReleaseByEvaluationTx frees every slot booked for the given evaluation
// inside an existing transaction, returning the freed slot IDs.
func (r *SlotRepository) ReleaseByEvaluationTx(tx *sql.Tx, evaluationID uint) ([]uint, error) {
	query := `
		UPDATE time_slots
		SET is_booked = FALSE, evaluation_id = NULL, updated_at = NOW()
		WHERE evaluation_id = $1 AND is_booked = TRUE
		RETURNING id
	`
	rows, err := tx.Query(query, evaluationID)
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

// Delete removes a slot only while it is still free. Returns false when
// the slot is booked or does not exist.
func (r *SlotRepository) Delete(slotID uint) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM time_slots WHERE id = $1 AND is_booked = FALSE`,
		slotID,
	)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// ListByInterviewer retrieves an interviewer's future slots
func (r *SlotRepository) ListByInterviewer(interviewerID uint, freeOnly bool) ([]models.TimeSlot, error) {
	query := slotSelect + ` WHERE interviewer_id = $1 AND start_time > NOW()`
	if freeOnly {
		query += ` AND is_booked = FALSE`
	}
	query += ` ORDER BY start_time ASC`
	return r.scanMany(r.db.Query(query, interviewerID))
}

// ListFreeForInterviewers returns future free slots across the named
// interviewer set, used to respect a job posting's mapped-interviewer list.
func (r *SlotRepository) ListFreeForInterviewers(interviewerIDs []uint) ([]models.TimeSlot, error) {
	if len(interviewerIDs) == 0 {
		return []models.TimeSlot{}, nil
	}

	ids := make([]int64, len(interviewerIDs))
	for i, id := range interviewerIDs {
		ids[i] = int64(id)
	}

	query := slotSelect + `
		WHERE interviewer_id = ANY($1)
		  AND is_booked = FALSE
		  AND start_time > NOW()
		ORDER BY start_time ASC, interviewer_id ASC
	`
	return r.scanMany(r.db.Query(query, pq.Array(ids)))
}

// ListBookedByEvaluation retrieves every slot currently booked for an
// evaluation.
func (r *SlotRepository) ListBookedByEvaluation(evaluationID uint) ([]models.TimeSlot, error) {
	query := slotSelect + ` WHERE evaluation_id = $1 AND is_booked = TRUE ORDER BY interviewer_id`
	return r.scanMany(r.db.Query(query, evaluationID))
}

// ListPanelWindows returns the future time windows during which every one
// of the given interviewers has a free slot. Each returned window carries
// the per-interviewer slot IDs that make it up.
func (r *SlotRepository) ListPanelWindows(interviewerIDs []uint) ([]models.PanelSlot, error) {
	if len(interviewerIDs) == 0 {
		return []models.PanelSlot{}, nil
	}

	ids := make([]int64, len(interviewerIDs))
	for i, id := range interviewerIDs {
		ids[i] = int64(id)
	}

	query := `
		SELECT start_time, end_time,
		       array_agg(id ORDER BY interviewer_id),
		       array_agg(interviewer_id ORDER BY interviewer_id)
		FROM time_slots
		WHERE interviewer_id = ANY($1)
		  AND is_booked = FALSE
		  AND start_time > NOW()
		GROUP BY start_time, end_time
		HAVING COUNT(DISTINCT interviewer_id) = $2
		ORDER BY start_time ASC
	`

	rows, err := r.db.Query(query, pq.Array(ids), len(interviewerIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := []models.PanelSlot{}
	for rows.Next() {
		var window models.PanelSlot
		var slotIDs, interviewers pq.Int64Array
		if err := rows.Scan(&window.StartTime, &window.EndTime, &slotIDs, &interviewers); err != nil {
			return nil, err
		}
		window.SlotIDs = make([]uint, len(slotIDs))
		for i, id := range slotIDs {
			window.SlotIDs[i] = uint(id)
		}
		window.InterviewerIDs = make([]uint, len(interviewers))
		for i, id := range interviewers {
			window.InterviewerIDs[i] = uint(id)
		}
		windows = append(windows, window)
	}

	return windows, rows.Err()
}

// ListAllOrphanedBooked returns every booked slot with no matching interview
// detail row, regardless of candidate. Used by the background sweep.
func (r *SlotRepository) ListAllOrphanedBooked() ([]models.TimeSlot, error) {
	query := slotSelect + `
		WHERE is_booked = TRUE
		  AND NOT EXISTS (
			SELECT 1 FROM interview_details d WHERE d.slot_id = time_slots.id
		  )
	`
	return r.scanMany(r.db.Query(query))
}

const slotSelect = `
	SELECT id, interviewer_id, start_time, end_time, is_booked, evaluation_id, created_at, updated_at
	FROM time_slots`

const releaseQuery = `
	UPDATE time_slots
	SET is_booked = FALSE, evaluation_id = NULL, updated_at = NOW()
	WHERE id = $1 AND is_booked = TRUE
`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func claim(e execer, slotID, evaluationID uint) (bool, error) {
	result, err := e.Exec(
		`UPDATE time_slots
		 SET is_booked = TRUE, evaluation_id = $1, updated_at = NOW()
		 WHERE id = $2 AND is_booked = FALSE`,
		evaluationID, slotID,
	)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *SlotRepository) scanOne(row *sql.Row) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := row.Scan(
		&slot.ID,
		&slot.InterviewerID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.EvaluationID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) scanMany(rows *sql.Rows, err error) ([]models.TimeSlot, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := []models.TimeSlot{}
	for rows.Next() {
		var slot models.TimeSlot
		err := rows.Scan(
			&slot.ID,
			&slot.InterviewerID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsBooked,
			&slot.EvaluationID,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
