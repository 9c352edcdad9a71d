package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// InnovationHandler exposes innovation lifecycle endpoints.
type InnovationHandler struct {
	innovations *service.InnovationService
}

// NewInnovationHandler constructs handler.
func NewInnovationHandler(innovations *service.InnovationService) *InnovationHandler {
	return &InnovationHandler{innovations: innovations}
}

// Create godoc
// @Summary Register a new innovation
// @Tags Innovations
// @Accept json
// @Produce json
// @Param payload body models.CreateInnovationRequest true "Innovation payload"
// @Success 201 {object} response.Envelope
// @Router /innovations [post]
func (h *InnovationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateInnovationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	innovation, err := h.innovations.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, innovation)
}

// List godoc
// @Summary List innovations visible to the caller
// @Tags Innovations
// @Produce json
// @Param status query string false "Comma separated status filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /innovations [get]
func (h *InnovationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.InnovationFilter{ListOptions: listOptionsFromQuery(c)}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Status = append(filter.Status, models.InnovationStatus(strings.TrimSpace(s)))
		}
	}
	items, total, err := h.innovations.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, paginationFor(filter.ListOptions, total))
}

// Get godoc
// @Summary Fetch one innovation
// @Tags Innovations
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId} [get]
func (h *InnovationHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	innovation, err := h.innovations.Find(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, innovation, nil)
}

// Submit godoc
// @Summary Submit an innovation for needs assessment
// @Tags Innovations
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/submit [patch]
func (h *InnovationHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.innovations.SubmitForAssessment(c.Request.Context(), actor, c.Param("innovationId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "submitted"}, nil)
}

// GetShares godoc
// @Summary List organisations the innovation is shared with
// @Tags Innovations
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/shares [get]
func (h *InnovationHandler) GetShares(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	shares, err := h.innovations.GetShares(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"organisations": shares}, nil)
}

// UpdateShares godoc
// @Summary Replace the innovation's data sharing preferences
// @Tags Innovations
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.UpdateSharesRequest true "Share payload"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/shares [put]
func (h *InnovationHandler) UpdateShares(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.innovations.UpdateShares(c.Request.Context(), actor, c.Param("innovationId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "updated"}, nil)
}

// Archive godoc
// @Summary Archive an innovation
// @Tags Innovations
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 204
// @Router /innovations/{innovationId} [delete]
func (h *InnovationHandler) Archive(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.innovations.Archive(c.Request.Context(), actor, c.Param("innovationId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
