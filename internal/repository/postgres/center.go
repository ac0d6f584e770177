package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
)

func (r *centerRepository) Create(ctx context.Context, center *model.Center) error {
	query := `
		INSERT INTO centers (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if center.ID == uuid.Nil {
		center.ID = uuid.New()
	}
	center.CreatedAt = time.Now()
	center.UpdatedAt = center.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		center.ID,
		center.Name,
		center.Address,
		center.CreatedAt,
		center.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create center: %w", err)
	}

	for _, studentID := range center.StudentIDs {
		if err := r.EnrollStudent(ctx, center.ID, studentID); err != nil {
			return err
		}
	}
	return nil
}

func (r *centerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Center, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM centers
		WHERE id = $1
	`
	var center model.Center
	err := r.db.GetContext(ctx, &center, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get center: %w", err)
	}

	if err := r.db.SelectContext(ctx, &center.StudentIDs,
		`SELECT student_id FROM center_students WHERE center_id = $1 ORDER BY enrolled_at`, id); err != nil {
		return nil, fmt.Errorf("failed to list center students: %w", err)
	}
	return &center, nil
}

func (r *centerRepository) List(ctx context.Context) ([]*model.Center, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM centers
		ORDER BY name ASC
	`
	var centers []*model.Center
	if err := r.db.SelectContext(ctx, &centers, query); err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	return centers, nil
}

func (r *centerRepository) EnrollStudent(ctx context.Context, centerID, studentID uuid.UUID) error {
	query := `
		INSERT INTO center_students (center_id, student_id, enrolled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (center_id, student_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, centerID, studentID, time.Now()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}
