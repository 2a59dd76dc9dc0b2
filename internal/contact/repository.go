package contact

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/models"
)

// Repository is the append-only contact message log.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a repository over an open database.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Append stores a message. Messages are never updated or removed.
func (r *Repository) Append(ctx context.Context, msg *models.ContactMessage) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, date, status, created_at)
		VALUES (:id, :name, :email, :phone, :subject, :message, :date, :status, :created_at)
	`, msg)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}

	log.Info().Str("id", msg.ID).Str("email", msg.Email).Msg("Contact message saved")
	return nil
}

// List returns messages oldest first. A non-positive limit returns all of them.
func (r *Repository) List(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	query := `
		SELECT id, name, email, phone, subject, message, date, status, created_at
		FROM contact_messages
		ORDER BY created_at ASC, rowid ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	messages := []models.ContactMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, nil
}

// Count returns the number of stored messages.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM contact_messages"); err != nil {
		return 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return n, nil
}
