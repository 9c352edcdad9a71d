package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// SupportHandler exposes organisation support endpoints.
type SupportHandler struct {
	supports *service.SupportService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(supports *service.SupportService) *SupportHandler {
	return &SupportHandler{supports: supports}
}

// Save godoc
// @Summary Create or update the caller's unit support status
// @Tags Supports
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.CreateSupportRequest true "Support payload"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/supports [post]
func (h *SupportHandler) Save(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	support, err := h.supports.Save(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, support, nil)
}

// Get godoc
// @Summary Fetch one support record
// @Tags Supports
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param supportId path string true "Support id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/supports/{supportId} [get]
func (h *SupportHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	support, err := h.supports.Find(c.Request.Context(), actor, c.Param("innovationId"), c.Param("supportId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, support, nil)
}

// List godoc
// @Summary List all unit supports of an innovation
// @Tags Supports
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/supports [get]
func (h *SupportHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	supports, err := h.supports.ListByInnovation(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, supports, nil)
}
