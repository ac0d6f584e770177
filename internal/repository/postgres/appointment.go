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

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, center_id, student_id, start_at, end_at, reason, modality,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.CenterID,
		appointment.StudentID,
		appointment.StartAt,
		appointment.EndAt,
		appointment.Reason,
		appointment.Modality,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, center_id, student_id, start_at, end_at, reason, modality,
		       status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, cancelReason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) SetModality(ctx context.Context, id uuid.UUID, modality model.Modality) error {
	query := `
		UPDATE appointments
		SET modality = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, modality, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set appointment modality: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, center_id, student_id, start_at, end_at, reason, modality,
		       status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE student_id = $1
		ORDER BY start_at ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list student appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForCenter(ctx context.Context, centerID uuid.UUID, dateRange model.DateRange) ([]*model.Appointment, error) {
	query := `
		SELECT id, center_id, student_id, start_at, end_at, reason, modality,
		       status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE center_id = $1
	`
	args := []interface{}{centerID}
	argCount := 2

	if !dateRange.From.IsZero() {
		query += fmt.Sprintf(" AND start_at >= $%d", argCount)
		args = append(args, dateRange.From)
		argCount++
	}
	if !dateRange.To.IsZero() {
		query += fmt.Sprintf(" AND start_at <= $%d", argCount)
		args = append(args, dateRange.To)
		argCount++
	}

	query += " ORDER BY start_at ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list center appointments: %w", err)
	}
	return appointments, nil
}

// FindOverlapping returns non-cancelled appointments at the center that
// share any time with [start, end).
func (r *appointmentRepository) FindOverlapping(ctx context.Context, centerID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, center_id, student_id, start_at, end_at, reason, modality,
		       status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE center_id = $1
		AND status != 'cancelled'
		AND start_at < $3
		AND end_at > $2
		ORDER BY start_at ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, centerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	return appointments, nil
}
