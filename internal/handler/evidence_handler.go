package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// EvidenceHandler exposes evidence-of-effectiveness endpoints.
type EvidenceHandler struct {
	evidence *service.EvidenceService
}

// NewEvidenceHandler constructs handler.
func NewEvidenceHandler(evidence *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence}
}

// Create godoc
// @Summary Add an evidence item
// @Tags Evidence
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.SaveEvidenceRequest true "Evidence payload"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/evidence [post]
func (h *EvidenceHandler) Create(c *gin.Context) {
	h.save(c, "")
}

// Update godoc
// @Summary Update an evidence item
// @Tags Evidence
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param evidenceId path string true "Evidence id"
// @Param payload body models.SaveEvidenceRequest true "Evidence payload"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/evidence/{evidenceId} [put]
func (h *EvidenceHandler) Update(c *gin.Context) {
	h.save(c, c.Param("evidenceId"))
}

func (h *EvidenceHandler) save(c *gin.Context, evidenceID string) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SaveEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.evidence.Save(c.Request.Context(), actor, c.Param("innovationId"), evidenceID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if evidenceID == "" {
		response.Created(c, item)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Get godoc
// @Summary Fetch one evidence item with signed file URLs
// @Tags Evidence
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param evidenceId path string true "Evidence id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/evidence/{evidenceId} [get]
func (h *EvidenceHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.evidence.Find(c.Request.Context(), actor, c.Param("innovationId"), c.Param("evidenceId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// List godoc
// @Summary List evidence items of an innovation
// @Tags Evidence
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/evidence [get]
func (h *EvidenceHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.evidence.ListByInnovation(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Delete godoc
// @Summary Remove an evidence item
// @Tags Evidence
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param evidenceId path string true "Evidence id"
// @Success 204
// @Router /innovations/{innovationId}/evidence/{evidenceId} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.evidence.Delete(c.Request.Context(), actor, c.Param("innovationId"), c.Param("evidenceId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
