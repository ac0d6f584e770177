package consultation

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/handler"
	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/service/scheduling"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

type Handler struct {
	service *scheduling.Service
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{service: service}
}

// Record stores a consultation outcome. A request carrying the ID of an
// existing record amends it in place.
func (h *Handler) Record(c *gin.Context) {
	var req model.RecordConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	record, err := toRecord(&req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	result, err := h.service.RecordConsultation(c.Request.Context(), record)
	if err != nil {
		handler.Error(c, err)
		return
	}

	status := http.StatusCreated
	if result.Entity.AmendedAt != nil {
		status = http.StatusOK
	}
	handler.Success(c, status, result.Entity)
}

func (h *Handler) History(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid student ID"))
		return
	}

	history, err := h.service.StudentHistory(c.Request.Context(), studentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, history)
}

func toRecord(req *model.RecordConsultationRequest) (*model.ConsultationRecord, error) {
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, apperror.Validation("invalid student ID %q", req.StudentID)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperror.Validation("invalid date %q", req.Date)
	}

	record := &model.ConsultationRecord{
		StudentID: studentID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Modality:  req.Modality,
		Demographics: model.Demographics{
			Age:    req.Age,
			Course: req.Course,
			Gender: req.Gender,
		},
		ReasonTags:       req.ReasonTags,
		InterventionTags: req.InterventionTags,
		Notes:            req.Notes,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, apperror.Validation("invalid record ID %q", req.ID)
		}
		record.ID = id
	}
	return record, nil
}
