package schedule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/memory"
	"github.com/schoolhealth/consult-api/internal/service/notification"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

func newTestService(t *testing.T) (*Service, uuid.UUID) {
	t.Helper()

	centers := memory.NewCenterRepository()
	center := &model.Center{Name: "Riverside High", Address: "1 River Rd"}
	require.NoError(t, centers.Create(context.Background(), center))

	notifier := notification.NewService(memory.NewNoticeRepository(), memory.NewOutboxRepository())
	return NewService(memory.NewScheduleRepository(), centers, notifier), center.ID
}

func wednesdayPlan() *model.UpdateScheduleRequest {
	return &model.UpdateScheduleRequest{
		Weekday:   model.WeekdayWednesday,
		StartTime: "10:00",
		EndTime:   "11:00",
		Location:  "Nurse room",
	}
}

func TestUpdateCreatesScheduleAndNotice(t *testing.T) {
	svc, centerID := newTestService(t)

	updated, notice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	assert.Equal(t, centerID, updated.CenterID)
	assert.Equal(t, model.WeekdayWednesday, updated.Weekday)
	assert.True(t, updated.Active)

	require.NotNil(t, notice)
	assert.Equal(t, model.NoticeTypeScheduleChange, notice.Type)
	assert.True(t, notice.CenterWide())
	assert.Contains(t, notice.Actions, model.ActionRequestAppointment)

	got, err := svc.Get(context.Background(), centerID)
	require.NoError(t, err)
	assert.Equal(t, updated.ID, got.ID)
}

func TestUpdateSamePlanIsIdempotent(t *testing.T) {
	svc, centerID := newTestService(t)

	first, firstNotice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	second, secondNotice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same plan must keep the active schedule")
	assert.Equal(t, firstNotice.ID, secondNotice.ID, "same plan must not emit a second notice")

	history, err := svc.History(context.Background(), centerID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateSupersedesOldSchedule(t *testing.T) {
	svc, centerID := newTestService(t)

	first, firstNotice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	moved := wednesdayPlan()
	moved.Weekday = model.WeekdayThursday
	moved.Reason = "nurse unavailable on Wednesdays"

	second, secondNotice, err := svc.Update(context.Background(), centerID, moved)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, firstNotice.ID, secondNotice.ID)
	assert.Contains(t, secondNotice.Message, "nurse unavailable")

	active, err := svc.Get(context.Background(), centerID)
	require.NoError(t, err)
	assert.Equal(t, model.WeekdayThursday, active.Weekday)

	history, err := svc.History(context.Background(), centerID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "history is newest first")
	assert.False(t, history[1].Active)
	assert.NotNil(t, history[1].SupersededAt)
}

func TestUpdateRevertEmitsFreshNotice(t *testing.T) {
	svc, centerID := newTestService(t)

	_, firstNotice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	moved := wednesdayPlan()
	moved.Weekday = model.WeekdayThursday
	_, _, err = svc.Update(context.Background(), centerID, moved)
	require.NoError(t, err)

	// Going back to the original plan is still a new change for students.
	reverted, revertNotice, err := svc.Update(context.Background(), centerID, wednesdayPlan())
	require.NoError(t, err)

	assert.Equal(t, model.WeekdayWednesday, reverted.Weekday)
	assert.NotEqual(t, firstNotice.ID, revertNotice.ID, "revert must announce itself, not reuse the old notice")

	history, err := svc.History(context.Background(), centerID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestUpdateValidation(t *testing.T) {
	svc, centerID := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*model.UpdateScheduleRequest)
	}{
		{"weekend day", func(r *model.UpdateScheduleRequest) { r.Weekday = "saturday" }},
		{"bad start time", func(r *model.UpdateScheduleRequest) { r.StartTime = "25:00" }},
		{"bad end time", func(r *model.UpdateScheduleRequest) { r.EndTime = "noon" }},
		{"inverted range", func(r *model.UpdateScheduleRequest) { r.StartTime, r.EndTime = "11:00", "10:00" }},
		{"empty range", func(r *model.UpdateScheduleRequest) { r.EndTime = r.StartTime }},
		{"missing location", func(r *model.UpdateScheduleRequest) { r.Location = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := wednesdayPlan()
			tt.mutate(req)
			_, _, err := svc.Update(context.Background(), centerID, req)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
		})
	}

	// A rejected update leaves no schedule behind.
	_, err := svc.Get(context.Background(), centerID)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestUpdateUnknownCenter(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Update(context.Background(), uuid.New(), wednesdayPlan())
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}
