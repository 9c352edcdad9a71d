package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// CommentHandler exposes innovation comment endpoints.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler constructs handler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create godoc
// @Summary Post a comment or reply on an innovation
// @Tags Comments
// @Accept json
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param payload body models.CreateCommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), actor, c.Param("innovationId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// List godoc
// @Summary List threaded comments of an innovation
// @Tags Comments
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Success 200 {object} response.Envelope
// @Router /innovations/{innovationId}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	comments, err := h.comments.ListByInnovation(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}
