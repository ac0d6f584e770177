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

type noticeRow struct {
	model.Notice
	StudentIDs pq.StringArray `db:"student_ids"`
	Actions    pq.StringArray `db:"actions"`
}

func (row *noticeRow) toModel() (*model.Notice, error) {
	notice := row.Notice
	notice.StudentIDs = make([]uuid.UUID, 0, len(row.StudentIDs))
	for _, raw := range row.StudentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid student id in notice %s: %w", notice.ID, err)
		}
		notice.StudentIDs = append(notice.StudentIDs, id)
	}
	notice.Actions = []string(row.Actions)
	return &notice, nil
}

const noticeColumns = `
	id, type, center_id, student_ids, title, message, occurs_at,
	read, actions, dedupe_key, created_at, updated_at
`

func (r *noticeRepository) Create(ctx context.Context, notice *model.Notice) error {
	query := `
		INSERT INTO notices (
			id, type, center_id, student_ids, title, message, occurs_at,
			read, actions, dedupe_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if notice.ID == uuid.Nil {
		notice.ID = uuid.New()
	}
	notice.CreatedAt = time.Now()
	notice.UpdatedAt = notice.CreatedAt

	studentIDs := make(pq.StringArray, 0, len(notice.StudentIDs))
	for _, id := range notice.StudentIDs {
		studentIDs = append(studentIDs, id.String())
	}

	_, err := r.db.ExecContext(ctx, query,
		notice.ID,
		notice.Type,
		notice.CenterID,
		studentIDs,
		notice.Title,
		notice.Message,
		notice.OccursAt,
		notice.Read,
		pq.StringArray(notice.Actions),
		notice.DedupeKey,
		notice.CreatedAt,
		notice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}
	return nil
}

func (r *noticeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = $1`

	var row noticeRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}
	return row.toModel()
}

func (r *noticeRepository) GetByDedupeKey(ctx context.Context, key string) (*model.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE dedupe_key = $1`

	var row noticeRow
	err := r.db.GetContext(ctx, &row, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notice by dedupe key: %w", err)
	}
	return row.toModel()
}

func (r *noticeRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notices
		SET read = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notice read: %w", err)
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

func (r *noticeRepository) ListFor(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) ([]*model.Notice, error) {
	query := `SELECT ` + noticeColumns + `
		FROM notices
		WHERE $1 = ANY(student_ids)
		   OR (cardinality(student_ids) = 0 AND center_id = ANY($2))
		ORDER BY occurs_at DESC, created_at DESC
	`
	var rows []noticeRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID.String(), pq.Array(centerIDs)); err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}

	notices := make([]*model.Notice, 0, len(rows))
	for i := range rows {
		notice, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		notices = append(notices, notice)
	}
	return notices, nil
}

func (r *noticeRepository) CountUnread(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notices
		WHERE NOT read
		AND ($1 = ANY(student_ids)
		     OR (cardinality(student_ids) = 0 AND center_id = ANY($2)))
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID.String(), pq.Array(centerIDs)); err != nil {
		return 0, fmt.Errorf("failed to count unread notices: %w", err)
	}
	return count, nil
}
