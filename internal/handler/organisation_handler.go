package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// OrganisationHandler exposes organisation directory endpoints.
type OrganisationHandler struct {
	organisations *service.OrganisationService
}

// NewOrganisationHandler constructs handler.
func NewOrganisationHandler(organisations *service.OrganisationService) *OrganisationHandler {
	return &OrganisationHandler{organisations: organisations}
}

// List godoc
// @Summary List support organisations with their units
// @Tags Organisations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /organisations [get]
func (h *OrganisationHandler) List(c *gin.Context) {
	organisations, err := h.organisations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, organisations, nil)
}

// ListUnitUsers godoc
// @Summary List accessors of one organisation unit
// @Tags Organisations
// @Produce json
// @Param unitId path string true "Unit id"
// @Success 200 {object} response.Envelope
// @Router /organisation-units/{unitId}/users [get]
func (h *OrganisationHandler) ListUnitUsers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	users, err := h.organisations.ListUnitUsers(c.Request.Context(), actor, c.Param("unitId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, nil)
}
