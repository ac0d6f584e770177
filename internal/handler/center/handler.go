package center

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolhealth/consult-api/internal/handler"
	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/service/center"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

type Handler struct {
	service *center.Service
}

func NewHandler(service *center.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}

	studentIDs := make([]uuid.UUID, 0, len(req.StudentIDs))
	for _, raw := range req.StudentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			handler.Error(c, apperror.Validation("invalid student ID %q", raw))
			return
		}
		studentIDs = append(studentIDs, id)
	}

	created, err := h.service.Create(c.Request.Context(), &model.Center{
		Name:       req.Name,
		Address:    req.Address,
		StudentIDs: studentIDs,
	})
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusCreated, created)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, found)
}

func (h *Handler) List(c *gin.Context) {
	centers, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, centers)
}

type enrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

func (h *Handler) EnrollStudent(c *gin.Context) {
	centerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Error(c, apperror.Validation("invalid center ID"))
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperror.Validation("invalid request: %v", err))
		return
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		handler.Error(c, apperror.Validation("invalid student ID"))
		return
	}

	if err := h.service.EnrollStudent(c.Request.Context(), centerID, studentID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusOK, gin.H{"enrolled": true})
}
