package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prism-worklet/prism-api/internal/models"
	"github.com/prism-worklet/prism-api/internal/services"
)

// MentorHandler handles the mentor directory endpoints.
type MentorHandler struct {
	service services.MentorServiceInterface
}

func NewMentorHandler(service services.MentorServiceInterface) *MentorHandler {
	return &MentorHandler{
		service: service,
	}
}

// GetAll handles GET /api/v1/mentors
func (h *MentorHandler) GetAll(c *gin.Context) {
	mentors, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentors": mentors, "count": len(mentors)})
}

// GetByID handles GET /api/v1/mentors/:id
func (h *MentorHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	mentor, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentor)
}

// Create handles POST /api/v1/mentors
func (h *MentorHandler) Create(c *gin.Context) {
	var req models.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	mentor, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mentor)
}

// Update handles PUT /api/v1/mentors/:id
func (h *MentorHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	mentor, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mentor)
}

// UploadPhoto handles POST /api/v1/mentors/:id/photo
func (h *MentorHandler) UploadPhoto(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UploadMentorPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	url, err := h.service.UploadPhoto(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// Delete handles DELETE /api/v1/mentors/:id
func (h *MentorHandler) Delete(c *gin.Context) {
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

// pathID parses the :id path parameter, responding 400 on garbage.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}
