package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhealth/consult-api/internal/middleware"
	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/memory"
	appointmentsvc "github.com/schoolhealth/consult-api/internal/service/appointment"
	consultationsvc "github.com/schoolhealth/consult-api/internal/service/consultation"
	"github.com/schoolhealth/consult-api/internal/service/notification"
	schedulesvc "github.com/schoolhealth/consult-api/internal/service/schedule"
	"github.com/schoolhealth/consult-api/internal/service/scheduling"
)

func setupRouter(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	centers := memory.NewCenterRepository()
	center := &model.Center{Name: "Hillside High", Address: "2 Hill St"}
	require.NoError(t, centers.Create(context.Background(), center))

	notifier := notification.NewService(memory.NewNoticeRepository(), memory.NewOutboxRepository())
	scheduler := scheduling.NewService(
		schedulesvc.NewService(memory.NewScheduleRepository(), centers, notifier),
		appointmentsvc.NewService(memory.NewAppointmentRepository(), centers, notifier),
		consultationsvc.NewService(memory.NewConsultationRepository()),
		notifier,
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.POST("/appointments", NewHandler(scheduler).Request)
	return r, center.ID
}

func postAppointment(r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRequestCreatesAppointment(t *testing.T) {
	r, centerID := setupRouter(t)

	w := postAppointment(r, map[string]interface{}{
		"center_id":        centerID.String(),
		"student_id":       uuid.NewString(),
		"start_at":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"duration_minutes": 30,
		"reason":           "recurring headaches",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestRequestRejectsMalformedIDs(t *testing.T) {
	r, centerID := setupRouter(t)

	tests := []struct {
		name      string
		centerID  string
		studentID string
	}{
		{"bad center ID", "not-a-uuid", uuid.NewString()},
		{"bad student ID", centerID.String(), "not-a-uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAppointment(r, map[string]interface{}{
				"center_id":        tt.centerID,
				"student_id":       tt.studentID,
				"start_at":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
				"duration_minutes": 30,
				"reason":           "recurring headaches",
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRequestUnknownCenterIsNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w := postAppointment(r, map[string]interface{}{
		"center_id":        uuid.NewString(),
		"student_id":       uuid.NewString(),
		"start_at":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"duration_minutes": 30,
		"reason":           "recurring headaches",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
