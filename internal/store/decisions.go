package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

// Decision is a persisted suggestion awaiting operator approval.
type Decision struct {
	ID         string                `db:"id"`
	Kind       string                `db:"kind"`
	Title      string                `db:"title"`
	Payload    string                `db:"payload"`
	Status     domain.DecisionStatus `db:"status"`
	CreatedAt  time.Time             `db:"created_at"`
	ResolvedAt *time.Time            `db:"resolved_at"`
}

// CreateDecision persists a new pending decision and returns its ID.
func (s *Store) CreateDecision(kind, title, payload string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO decisions (id, kind, title, payload, status)
		VALUES (?, ?, ?, ?, ?)`,
		id, kind, title, payload, domain.DecisionPending)
	if err != nil {
		return "", fmt.Errorf("create decision: %w", err)
	}
	return id, nil
}

// PendingDecisions returns all decisions still awaiting review, oldest first.
func (s *Store) PendingDecisions() ([]Decision, error) {
	var rows []Decision
	err := s.db.Select(&rows, `
		SELECT id, kind, title, payload, status, created_at, resolved_at
		FROM decisions
		WHERE status = ?
		ORDER BY created_at ASC`, domain.DecisionPending)
	if err != nil {
		return nil, fmt.Errorf("list pending decisions: %w", err)
	}
	return rows, nil
}

// ResolveDecision marks a decision approved, rejected or expired.
func (s *Store) ResolveDecision(id string, status domain.DecisionStatus) error {
	res, err := s.db.Exec(`
		UPDATE decisions
		SET status = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("resolve decision: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve decision: no decision with id %s", id)
	}
	return nil
}

// ExpireDecisions marks pending decisions older than the given number of
// days as expired and returns how many were affected.
func (s *Store) ExpireDecisions(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := s.db.Exec(`
		UPDATE decisions
		SET status = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE status = ? AND created_at < ?`,
		domain.DecisionExpired, domain.DecisionPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire decisions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
