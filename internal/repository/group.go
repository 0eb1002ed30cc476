package repository

import (
	"context"
	"fmt"

	"github.com/SLAWWWW/CommunityCompass/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, description, tags, location, age_group, admin_id, max_members, members, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		group.ID, group.Name, group.Description, group.Tags, group.Location,
		group.AgeGroup, group.AdminID, group.MaxMembers, group.Members, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `
		SELECT id, name, description, tags, location, age_group, admin_id, max_members, members, created_at
		FROM groups
		WHERE id = $1
	`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.Description, &group.Tags, &group.Location,
		&group.AgeGroup, &group.AdminID, &group.MaxMembers, &group.Members, &group.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// List retrieves all groups ordered by creation time
func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	query := `
		SELECT id, name, description, tags, location, age_group, admin_id, max_members, members, created_at
		FROM groups
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(
			&group.ID, &group.Name, &group.Description, &group.Tags, &group.Location,
			&group.AgeGroup, &group.AdminID, &group.MaxMembers, &group.Members, &group.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to read groups: %w", rows.Err())
	}
	return groups, nil
}

// ReplaceMembers persists the full ordered member list for a group
func (r *GroupRepository) ReplaceMembers(ctx context.Context, groupID string, members []string) error {
	query := `UPDATE groups SET members = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, members, groupID)
	if err != nil {
		return fmt.Errorf("failed to replace members: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
