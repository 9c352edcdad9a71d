package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// AssessmentHandler exposes needs assessment endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
}

// NewAssessmentHandler constructs handler.
func NewAssessmentHandler(assessments *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Create godoc
// @Summary Start a needs assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/assessments [post]
func (h *AssessmentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.assessments.Create(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// Update godoc
// @Summary Save or submit a needs assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param assessmentId path string true "Assessment id"
// @Param payload body models.UpdateAssessmentRequest true "Assessment payload"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/assessments/{assessmentId} [put]
func (h *AssessmentHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assessment, err := h.assessments.Update(c.Request.Context(), actor, c.Param("innovationId"), c.Param("assessmentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// Get godoc
// @Summary Fetch a needs assessment with suggested organisations
// @Tags Assessments
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param assessmentId path string true "Assessment id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/assessments/{assessmentId} [get]
func (h *AssessmentHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.assessments.Find(c.Request.Context(), actor, c.Param("innovationId"), c.Param("assessmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
