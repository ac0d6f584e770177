package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/memory"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

func newTestService() (*Service, *memory.NoticeRepository, *memory.OutboxRepository) {
	notices := memory.NewNoticeRepository()
	outbox := memory.NewOutboxRepository()
	return NewService(notices, outbox), notices, outbox
}

func testNotice(centerID uuid.UUID, key string) *model.Notice {
	return &model.Notice{
		Type:      model.NoticeTypeScheduleChange,
		CenterID:  centerID,
		Title:     "Visit schedule changed",
		Message:   "Consultation visits now run Thursday 10:00-11:00.",
		DedupeKey: key,
	}
}

func TestEmitStoresNoticeAndQueuesEvent(t *testing.T) {
	svc, _, outbox := newTestService()
	centerID := uuid.New()

	stored, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.Read)
	assert.False(t, stored.OccursAt.IsZero())

	events, err := outbox.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "NOTICE_SCHEDULE_CHANGE", events[0].EventType)
}

func TestEmitDeduplicates(t *testing.T) {
	svc, _, outbox := newTestService()
	centerID := uuid.New()

	first, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)

	second, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	events, err := outbox.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, events, 1, "duplicate emit must not queue a second event")
}

func TestEmitValidation(t *testing.T) {
	svc, _, _ := newTestService()
	centerID := uuid.New()

	tests := []struct {
		name   string
		notice *model.Notice
	}{
		{"missing type", &model.Notice{CenterID: centerID, DedupeKey: "k"}},
		{"missing center", &model.Notice{Type: model.NoticeTypeReminder, DedupeKey: "k"}},
		{"missing dedupe key", &model.Notice{Type: model.NoticeTypeReminder, CenterID: centerID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Emit(context.Background(), tt.notice)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService()
	centerID := uuid.New()

	stored, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), stored.ID))
	require.NoError(t, svc.MarkRead(context.Background(), stored.ID))

	count, err := svc.UnreadCount(context.Background(), uuid.New(), []uuid.UUID{centerID})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadUnknownNotice(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.MarkRead(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestListForTargeting(t *testing.T) {
	svc, _, _ := newTestService()
	centerID := uuid.New()
	studentID := uuid.New()
	otherStudent := uuid.New()

	// Center-wide notice reaches every enrolled student.
	_, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)

	targeted := testNotice(centerID, "cancellation:1")
	targeted.Type = model.NoticeTypeCancellation
	targeted.StudentIDs = []uuid.UUID{studentID}
	_, err = svc.Emit(context.Background(), targeted)
	require.NoError(t, err)

	forStudent, err := svc.ListFor(context.Background(), studentID, []uuid.UUID{centerID})
	require.NoError(t, err)
	assert.Len(t, forStudent, 2)

	forOther, err := svc.ListFor(context.Background(), otherStudent, []uuid.UUID{centerID})
	require.NoError(t, err)
	require.Len(t, forOther, 1)
	assert.Equal(t, model.NoticeTypeScheduleChange, forOther[0].Type)

	unenrolled, err := svc.ListFor(context.Background(), otherStudent, nil)
	require.NoError(t, err)
	assert.Empty(t, unenrolled)
}

func TestUnreadCountDropsAfterMarkRead(t *testing.T) {
	svc, _, _ := newTestService()
	centerID := uuid.New()
	studentID := uuid.New()

	first, err := svc.Emit(context.Background(), testNotice(centerID, "schedule_change:1"))
	require.NoError(t, err)
	_, err = svc.Emit(context.Background(), testNotice(centerID, "schedule_change:2"))
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), studentID, []uuid.UUID{centerID})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(context.Background(), first.ID))

	count, err = svc.UnreadCount(context.Background(), studentID, []uuid.UUID{centerID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
