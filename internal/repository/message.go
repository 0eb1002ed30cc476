package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores a message. The database assigns both the bigserial seq and
// the creation timestamp on insert, so feed order is decided at commit time.
func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, group_id, sender_id, sender_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING seq, created_at
	`
	err := r.db.QueryRow(ctx, query,
		msg.ID, msg.GroupID, msg.SenderID, msg.SenderName, msg.Body,
	).Scan(&msg.Seq, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListByGroup retrieves messages for a group in ascending (created_at, seq) order.
// A non-nil since limits the result to messages created at or after it.
func (r *MessageRepository) ListByGroup(ctx context.Context, groupID string, since *time.Time) ([]*models.Message, error) {
	query := `
		SELECT id, group_id, sender_id, sender_name, body, seq, created_at
		FROM messages
		WHERE group_id = $1
		ORDER BY created_at, seq
	`
	args := []interface{}{groupID}
	if since != nil {
		query = `
			SELECT id, group_id, sender_id, sender_name, body, seq, created_at
			FROM messages
			WHERE group_id = $1 AND created_at >= $2
			ORDER BY created_at, seq
		`
		args = append(args, *since)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID, &msg.GroupID, &msg.SenderID, &msg.SenderName,
			&msg.Body, &msg.Seq, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read messages: %w", rows.Err())
	}
	return messages, nil
}
