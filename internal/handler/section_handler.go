package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// SectionHandler exposes innovation record section endpoints.
type SectionHandler struct {
	sections *service.SectionService
}

// NewSectionHandler constructs handler.
func NewSectionHandler(sections *service.SectionService) *SectionHandler {
	return &SectionHandler{sections: sections}
}

// List godoc
// @Summary List all record sections with status
// @Tags Sections
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summaries, err := h.sections.FindAll(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// Get godoc
// @Summary Fetch one record section
// @Tags Sections
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param sectionKey path string true "Section key"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/sections/{sectionKey} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.sections.Find(c.Request.Context(), actor, c.Param("innovationId"), models.SectionKey(c.Param("sectionKey")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Save godoc
// @Summary Save a section draft
// @Tags Sections
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param sectionKey path string true "Section key"
// @Param payload body models.SaveSectionRequest true "Section data"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/sections/{sectionKey} [put]
func (h *SectionHandler) Save(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SaveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.sections.Save(c.Request.Context(), actor, c.Param("innovationId"), models.SectionKey(c.Param("sectionKey")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Submit godoc
// @Summary Submit a batch of sections
// @Tags Sections
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.SubmitSectionsRequest true "Section keys"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/sections [patch]
func (h *SectionHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.SubmitSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	submitted, err := h.sections.Submit(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"submitted": submitted}, nil)
}
