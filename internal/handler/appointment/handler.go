package appointment

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

func (h *Handler) Request(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	centerID, err := uuid.Parse(req.CenterID)
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		handler.Error(c, apperror.Validation("invalid student ID"))
		return
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute

	result, err := h.service.RequestAppointment(c.Request.Context(), centerID, studentID, req.StartAt, duration, req.Reason)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, result.Entity)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid appointment ID"))
		return
	}

	appt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, appt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	result, err := h.service.UpdateAppointmentStatus(c.Request.Context(), id, req.Status, req.CancelReason)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{
		"appointment": result.Entity,
		"notices":     result.Notices,
	})
}

func (h *Handler) SwitchToRemote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid appointment ID"))
		return
	}

	result, err := h.service.SwitchAppointmentToRemote(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{
		"appointment": result.Entity,
		"notices":     result.Notices,
	})
}

func (h *Handler) ListForStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid student ID"))
		return
	}

	appointments, err := h.service.UpcomingAppointmentsForStudent(c.Request.Context(), studentID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, appointments)
}

func (h *Handler) ListForCenter(c *gin.Context) {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	appointments, err := h.service.UpcomingAppointmentsForCenter(c.Request.Context(), centerID, dateRange)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, appointments)
}

func parseDateRange(c *gin.Context) (model.DateRange, error) {
	var r model.DateRange
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return r, apperror.Validation("invalid from %q", from)
		}
		r.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return r, apperror.Validation("invalid to %q", to)
		}
		r.To = t
	}
	return r, nil
}
