package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// NotificationHandler exposes unread notification endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Counters godoc
// @Summary Unread notification counts per context type
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/counters [get]
func (h *NotificationHandler) Counters(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	counters, err := h.notifications.Counters(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counters, nil)
}

// Dismiss godoc
// @Summary Mark notifications on one context as read
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body models.DismissNotificationsRequest true "Context payload"
// @Success 200 {object} response.Envelope
// @Router /notifications/dismiss [patch]
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.DismissNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.notifications.Dismiss(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "dismissed"}, nil)
}

// MarkAllRead godoc
// @Summary Mark every unread notification as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read [patch]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.notifications.MarkAllRead(c.Request.Context(), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "read"}, nil)
}
