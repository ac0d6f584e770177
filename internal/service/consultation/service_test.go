package consultation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/memory"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

func newTestService() *Service {
	return NewService(memory.NewConsultationRepository())
}

func testRecord(studentID uuid.UUID, date time.Time) *model.ConsultationRecord {
	return &model.ConsultationRecord{
		StudentID: studentID,
		Date:      date,
		StartTime: "10:00",
		EndTime:   "10:30",
		Modality:  model.ModalityInPerson,
		Demographics: model.Demographics{
			Age:    16,
			Course: "4th ESO",
		},
		ReasonTags:       []string{model.ReasonMentalHealth},
		InterventionTags: []string{model.InterventionCounselling},
		Notes:            "follow up in two weeks",
	}
}

func TestRecordInsertsNewRecord(t *testing.T) {
	svc := newTestService()
	studentID := uuid.New()

	stored, err := svc.Record(context.Background(), testRecord(studentID, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.Nil(t, stored.AmendedAt)
}

func TestRecordKeepsSuppliedID(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	record := testRecord(uuid.New(), time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC))
	record.ID = id

	stored, err := svc.Record(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Nil(t, stored.AmendedAt, "unknown ID inserts, it does not amend")
}

func TestRecordAmendsExisting(t *testing.T) {
	svc := newTestService()
	studentID := uuid.New()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	original, err := svc.Record(context.Background(), testRecord(studentID, date))
	require.NoError(t, err)

	amended := testRecord(studentID, date)
	amended.ID = original.ID
	amended.Notes = "corrected: referred to specialist"
	amended.InterventionTags = []string{model.InterventionReferral}

	stored, err := svc.Record(context.Background(), amended)
	require.NoError(t, err)

	assert.Equal(t, original.ID, stored.ID)
	assert.Equal(t, original.CreatedAt, stored.CreatedAt, "amending keeps the original creation time")
	require.NotNil(t, stored.AmendedAt)

	history, err := svc.History(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, history, 1, "amending must not grow the ledger")
	assert.Equal(t, "corrected: referred to specialist", history[0].Notes)
}

func TestRecordRejectsCrossStudentAmend(t *testing.T) {
	svc := newTestService()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	original, err := svc.Record(context.Background(), testRecord(uuid.New(), date))
	require.NoError(t, err)

	hijack := testRecord(uuid.New(), date)
	hijack.ID = original.ID

	_, err = svc.Record(context.Background(), hijack)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestRecordValidation(t *testing.T) {
	svc := newTestService()
	studentID := uuid.New()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*model.ConsultationRecord)
	}{
		{"missing student", func(r *model.ConsultationRecord) { r.StudentID = uuid.Nil }},
		{"missing date", func(r *model.ConsultationRecord) { r.Date = time.Time{} }},
		{"missing times", func(r *model.ConsultationRecord) { r.StartTime, r.EndTime = "", "" }},
		{"bad start", func(r *model.ConsultationRecord) { r.StartTime = "10am" }},
		{"inverted range", func(r *model.ConsultationRecord) { r.StartTime, r.EndTime = "11:00", "10:00" }},
		{"bad modality", func(r *model.ConsultationRecord) { r.Modality = "phone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := testRecord(studentID, date)
			tt.mutate(record)
			_, err := svc.Record(context.Background(), record)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestHistoryIsNewestFirstAndRestartable(t *testing.T) {
	svc := newTestService()
	studentID := uuid.New()

	older := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 7)

	_, err := svc.Record(context.Background(), testRecord(studentID, older))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), testRecord(studentID, newer))
	require.NoError(t, err)

	history, err := svc.History(context.Background(), studentID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.After(history[1].Date))

	// A record added between reads shows up on the next read.
	_, err = svc.Record(context.Background(), testRecord(studentID, newer.AddDate(0, 0, 7)))
	require.NoError(t, err)

	history, err = svc.History(context.Background(), studentID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestHistoryIsPerStudent(t *testing.T) {
	svc := newTestService()
	studentID := uuid.New()
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(context.Background(), testRecord(studentID, date))
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), testRecord(uuid.New(), date))
	require.NoError(t, err)

	history, err := svc.History(context.Background(), studentID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
