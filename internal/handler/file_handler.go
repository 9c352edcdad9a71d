package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// FileHandler exposes evidence file upload and download endpoints.
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler constructs handler.
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload godoc
// @Summary Upload an evidence file
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param innovationId path string true "Innovation id"
// @Param file formData file true "File content"
// @Success 201 {object} response.Envelope
// @Router /innovations/{innovationId}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file part"))
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	result, err := h.files.Upload(c.Request.Context(), actor, c.Param("innovationId"), header.Filename, mimeType, header.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an evidence file via signed token
// @Tags Files
// @Produce octet-stream
// @Param innovationId path string true "Innovation id"
// @Param token query string true "Signed download token"
// @Success 200
// @Router /innovations/{innovationId}/files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	meta, file, err := h.files.Download(c.Request.Context(), actor, c.Param("innovationId"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+meta.DisplayName+`"`)
	c.DataFromReader(http.StatusOK, meta.SizeBytes, meta.MimeType, file, nil)
}
