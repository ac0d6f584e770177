package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

// Service derives notices from schedule and appointment mutations and
// exposes them for delivery. Every emitted notice also lands in the
// outbox, from where the worker publishes it to the broker.
type Service struct {
	repo   repository.NoticeRepository
	outbox repository.OutboxRepository
}

func NewService(repo repository.NoticeRepository, outbox repository.OutboxRepository) *Service {
	return &Service{repo: repo, outbox: outbox}
}

// Emit stores the notice and queues it for publication. A notice whose
// dedupe key was already emitted is returned as stored the first time;
// no second notice or outbox row is written.
func (s *Service) Emit(ctx context.Context, notice *model.Notice) (*model.Notice, error) {
	if notice.Type == "" {
		return nil, apperror.Validation("notice type is required")
	}
	if notice.CenterID == uuid.Nil {
		return nil, apperror.Validation("center ID is required")
	}
	if notice.DedupeKey == "" {
		return nil, apperror.Validation("dedupe key is required")
	}

	existing, err := s.repo.GetByDedupeKey(ctx, notice.DedupeKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check dedupe key: %w", err)
	}

	notice.ID = uuid.New()
	notice.Read = false
	if notice.OccursAt.IsZero() {
		notice.OccursAt = time.Now()
	}

	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, fmt.Errorf("failed to store notice: %w", err)
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notice: %w", err)
	}
	event := &model.OutboxEvent{
		EventType: "NOTICE_" + strings.ToUpper(string(notice.Type)),
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to queue notice: %w", err)
	}

	return notice, nil
}

// MarkRead is idempotent: marking an already-read notice is a no-op.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("notice")
	}
	if err != nil {
		return fmt.Errorf("failed to mark notice read: %w", err)
	}
	return nil
}

// ListFor returns the notices addressed to the student directly or to
// any of the given centers, newest first.
func (s *Service) ListFor(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) ([]*model.Notice, error) {
	notices, err := s.repo.ListFor(ctx, studentID, centerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (s *Service) UnreadCount(ctx context.Context, studentID uuid.UUID, centerIDs []uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, studentID, centerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notices: %w", err)
	}
	return count, nil
}
