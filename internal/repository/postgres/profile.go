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

type profileRow struct {
	model.Profile
	CenterIDs pq.StringArray `db:"center_ids"`
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (
			account_ref, identifier, display_alias, center_ids,
			course, birth_date, gender, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	profile.CreatedAt = time.Now()

	centerIDs := make(pq.StringArray, 0, len(profile.CenterIDs))
	for _, id := range profile.CenterIDs {
		centerIDs = append(centerIDs, id.String())
	}

	_, err := r.db.ExecContext(ctx, query,
		profile.AccountRef,
		profile.Identifier,
		profile.DisplayAlias,
		centerIDs,
		profile.Course,
		profile.BirthDate,
		profile.Gender,
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.Profile, error) {
	query := `
		SELECT account_ref, identifier, display_alias, center_ids,
		       course, birth_date, gender, created_at
		FROM profiles
		WHERE identifier = $1
	`
	var row profileRow
	err := r.db.GetContext(ctx, &row, query, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := row.Profile
	profile.CenterIDs = make([]uuid.UUID, 0, len(row.CenterIDs))
	for _, raw := range row.CenterIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid center id in profile %s: %w", profile.AccountRef, err)
		}
		profile.CenterIDs = append(profile.CenterIDs, id)
	}
	return &profile, nil
}
