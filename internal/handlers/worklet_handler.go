package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/services"
)

// WorkletHandler handles the worklet endpoints.
type WorkletHandler struct {
	service services.WorkletServiceInterface
}

func NewWorkletHandler(service services.WorkletServiceInterface) *WorkletHandler {
	return &WorkletHandler{
		service: service,
	}
}

// GetAll handles GET /api/v1/worklets
func (h *WorkletHandler) GetAll(c *gin.Context) {
	worklets, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worklets": worklets, "count": len(worklets)})
}

// GetByID handles GET /api/v1/worklets/:id
func (h *WorkletHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	worklet, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worklet)
}

// Create handles POST /api/v1/worklets
func (h *WorkletHandler) Create(c *gin.Context) {
	var req models.CreateWorkletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	worklet, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, worklet)
}

// Update handles PUT /api/v1/worklets/:id
func (h *WorkletHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateWorkletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	worklet, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worklet)
}

// Delete handles DELETE /api/v1/worklets/:id
func (h *WorkletHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "deleted"})
}
