package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
)

func (r *scheduleRepository) GetActive(ctx context.Context, centerID uuid.UUID) (*model.VisitSchedule, error) {
	query := `
		SELECT id, center_id, weekday, start_time, end_time, location,
		       active, superseded_at, created_at, updated_at
		FROM visit_schedules
		WHERE center_id = $1 AND active
	`
	var schedule model.VisitSchedule
	err := r.db.GetContext(ctx, &schedule, query, centerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active schedule: %w", err)
	}
	return &schedule, nil
}

// Supersede deactivates the current active schedule and inserts the
// replacement in one transaction, so readers never see zero or two
// active rows.
func (r *scheduleRepository) Supersede(ctx context.Context, centerID uuid.UUID, next *model.VisitSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE visit_schedules
		SET active = FALSE, superseded_at = $1, updated_at = $1
		WHERE center_id = $2 AND active
	`, now, centerID); err != nil {
		return fmt.Errorf("failed to supersede schedule: %w", err)
	}

	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	next.CenterID = centerID
	next.Active = true
	next.CreatedAt = now
	next.UpdatedAt = now

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO visit_schedules (
			id, center_id, weekday, start_time, end_time, location,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
	`,
		next.ID,
		next.CenterID,
		next.Weekday,
		next.StartTime,
		next.EndTime,
		next.Location,
		next.CreatedAt,
		next.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	return tx.Commit()
}

func (r *scheduleRepository) History(ctx context.Context, centerID uuid.UUID) ([]*model.VisitSchedule, error) {
	query := `
		SELECT id, center_id, weekday, start_time, end_time, location,
		       active, superseded_at, created_at, updated_at
		FROM visit_schedules
		WHERE center_id = $1
		ORDER BY created_at DESC
	`
	var schedules []*model.VisitSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, centerID); err != nil {
		return nil, fmt.Errorf("failed to list schedule history: %w", err)
	}
	return schedules, nil
}
