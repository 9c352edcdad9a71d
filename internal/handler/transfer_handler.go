package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// TransferHandler exposes innovation ownership transfer endpoints.
type TransferHandler struct {
	transfers *service.TransferService
}

// NewTransferHandler constructs handler.
func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Create godoc
// @Summary Invite another user to take ownership of an innovation
// @Tags Transfers
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.CreateTransferRequest true "Transfer payload"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	transfer, err := h.transfers.Create(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer)
}

// Update godoc
// @Summary Cancel, decline or complete a pending transfer
// @Tags Transfers
// @Accept json
// @Produce json
// @Param transferId path string true "Transfer id"
// @Param payload body models.UpdateTransferRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /transfers/{transferId} [patch]
func (h *TransferHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	transfer, err := h.transfers.UpdateStatus(c.Request.Context(), actor, c.Param("transferId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfer, nil)
}

// List godoc
// @Summary List transfers created by the caller
// @Tags Transfers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	transfers, err := h.transfers.ListByCreator(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transfers, nil)
}
