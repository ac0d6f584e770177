package center

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

func TestCreateRequiresNameAndAddress(t *testing.T) {
	svc := NewService(memory.NewCenterRepository())

	_, err := svc.Create(context.Background(), &model.Center{Address: "1 River Rd"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.Create(context.Background(), &model.Center{Name: "Riverside High"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(memory.NewCenterRepository())

	created, err := svc.Create(context.Background(), &model.Center{
		Name:       "Riverside High",
		Address:    "1 River Rd",
		StudentIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riverside High", got.Name)
	assert.Len(t, got.StudentIDs, 1)
}

func TestGetUnknownCenter(t *testing.T) {
	svc := NewService(memory.NewCenterRepository())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestEnrollStudent(t *testing.T) {
	svc := NewService(memory.NewCenterRepository())

	created, err := svc.Create(context.Background(), &model.Center{Name: "Riverside High", Address: "1 River Rd"})
	require.NoError(t, err)

	studentID := uuid.New()
	require.NoError(t, svc.EnrollStudent(context.Background(), created.ID, studentID))
	// Enrolling twice keeps a single membership.
	require.NoError(t, svc.EnrollStudent(context.Background(), created.ID, studentID))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, got.StudentIDs, 1)
	assert.True(t, got.HasStudent(studentID))

	err = svc.EnrollStudent(context.Background(), uuid.New(), studentID)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	err = svc.EnrollStudent(context.Background(), created.ID, uuid.Nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestListIsSortedByName(t *testing.T) {
	svc := NewService(memory.NewCenterRepository())

	for _, name := range []string{"Westside", "Eastside"} {
		_, err := svc.Create(context.Background(), &model.Center{Name: name, Address: "somewhere"})
		require.NoError(t, err)
	}

	centers, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, centers, 2)
	assert.Equal(t, "Eastside", centers[0].Name)
}
