package schedule

import (
	"net/http"

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

func (h *Handler) Get(c *gin.Context) {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	sched, err := h.service.GetSchedule(c.Request.Context(), centerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, sched)
}

func (h *Handler) Update(c *gin.Context) {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	var req model.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	result, err := h.service.ModifySchedule(c.Request.Context(), centerID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{
		"schedule": result.Entity,
		"notices":  result.Notices,
	})
}

func (h *Handler) History(c *gin.Context) {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	history, err := h.service.ScheduleHistory(c.Request.Context(), centerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, history)
}
