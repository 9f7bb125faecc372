package repository

import (
	"database/sql"
	"time"

	"hireflow/internal/models"
)

// SessionRepository handles database operations for issued token sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session keyed by token JTI
func (r *SessionRepository) Create(session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, jti, token_type, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(query, session.UserID, session.JTI, session.TokenType, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt)
}

// GetByJTI retrieves a non-expired session by its token JTI
func (r *SessionRepository) GetByJTI(jti string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, jti, token_type, expires_at, created_at
		FROM sessions
		WHERE jti = $1 AND expires_at > NOW()
	`

	err := r.db.QueryRow(query, jti).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.TokenType,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Delete removes a session by token JTI
func (r *SessionRepository) Delete(jti string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE jti = $1`, jti)
	return err
}

// DeleteByUser removes all sessions for a user
func (r *SessionRepository) DeleteByUser(userID uint) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes sessions past their expiry and returns the count
func (r *SessionRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
