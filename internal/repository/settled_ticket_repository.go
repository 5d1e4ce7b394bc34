package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/database"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// PostgresSettledTicketRepository implements SettledTicketRepository for PostgreSQL
type PostgresSettledTicketRepository struct {
	db *database.DB
}

// NewPostgresSettledTicketRepository creates a new settled ticket repository
func NewPostgresSettledTicketRepository(db *database.DB) SettledTicketRepository {
	return &PostgresSettledTicketRepository{db: db}
}

// Record persists one settled ticket result.
func (r *PostgresSettledTicketRepository) Record(ctx context.Context, ticket *models.SettledTicket) error {
	query := `
		INSERT INTO settled_tickets (id, score, won, settled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.GetPool().Exec(ctx, query, ticket.ID, ticket.Score, ticket.Won, ticket.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to record settled ticket: %w", err)
	}
	return nil
}

// GetSince returns all tickets settled at or after the given time.
func (r *PostgresSettledTicketRepository) GetSince(ctx context.Context, since time.Time) ([]models.SettledTicket, error) {
	query := `
		SELECT id, score, won, settled_at
		FROM settled_tickets
		WHERE settled_at >= $1
		ORDER BY settled_at ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.SettledTicket
	for rows.Next() {
		var t models.SettledTicket
		if err := rows.Scan(&t.ID, &t.Score, &t.Won, &t.SettledAt); err != nil {
			return nil, fmt.Errorf("failed to scan settled ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
