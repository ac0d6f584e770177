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

// consultationRow maps the flattened table shape back onto the model.
type consultationRow struct {
	model.ConsultationRecord
	Age              int            `db:"age"`
	Course           string         `db:"course"`
	Gender           string         `db:"gender"`
	ReasonTags       pq.StringArray `db:"reason_tags"`
	InterventionTags pq.StringArray `db:"intervention_tags"`
}

func (row *consultationRow) toModel() *model.ConsultationRecord {
	rec := row.ConsultationRecord
	rec.Demographics = model.Demographics{
		Age:    row.Age,
		Course: row.Course,
		Gender: row.Gender,
	}
	rec.ReasonTags = []string(row.ReasonTags)
	rec.InterventionTags = []string(row.InterventionTags)
	return &rec
}

const consultationColumns = `
	id, student_id, date, start_time, end_time, modality,
	age, course, gender, reason_tags, intervention_tags, notes,
	amended_at, created_at, updated_at
`

func (r *consultationRepository) Insert(ctx context.Context, record *model.ConsultationRecord) error {
	query := `
		INSERT INTO consultation_records (
			id, student_id, date, start_time, end_time, modality,
			age, course, gender, reason_tags, intervention_tags, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.StudentID,
		record.Date,
		record.StartTime,
		record.EndTime,
		record.Modality,
		record.Demographics.Age,
		record.Demographics.Course,
		record.Demographics.Gender,
		pq.StringArray(record.ReasonTags),
		pq.StringArray(record.InterventionTags),
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert consultation record: %w", err)
	}
	return nil
}

// Amend rewrites an existing record in place, keeping its identifier and
// original creation time and stamping amended_at.
func (r *consultationRepository) Amend(ctx context.Context, record *model.ConsultationRecord) error {
	query := `
		UPDATE consultation_records
		SET date = $1, start_time = $2, end_time = $3, modality = $4,
		    age = $5, course = $6, gender = $7, reason_tags = $8,
		    intervention_tags = $9, notes = $10, amended_at = $11, updated_at = $11
		WHERE id = $12 AND student_id = $13
	`
	now := time.Now()
	record.AmendedAt = &now
	record.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		record.Date,
		record.StartTime,
		record.EndTime,
		record.Modality,
		record.Demographics.Age,
		record.Demographics.Course,
		record.Demographics.Gender,
		pq.StringArray(record.ReasonTags),
		pq.StringArray(record.InterventionTags),
		record.Notes,
		now,
		record.ID,
		record.StudentID,
	)
	if err != nil {
		return fmt.Errorf("failed to amend consultation record: %w", err)
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

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ConsultationRecord, error) {
	query := `SELECT ` + consultationColumns + ` FROM consultation_records WHERE id = $1`

	var row consultationRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation record: %w", err)
	}
	return row.toModel(), nil
}

func (r *consultationRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.ConsultationRecord, error) {
	query := `SELECT ` + consultationColumns + `
		FROM consultation_records
		WHERE student_id = $1
		ORDER BY date DESC, created_at DESC
	`
	var rows []consultationRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list consultation records: %w", err)
	}

	records := make([]*model.ConsultationRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toModel())
	}
	return records, nil
}
