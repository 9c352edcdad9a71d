package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/service"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/response"
)

// ReportHandler exposes assessment report exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// PDF godoc
// @Summary Export a needs assessment as PDF
// @Tags Reports
// @Produce application/pdf
// @Param innovationId path string true "Innovation id"
// @Param assessmentId path string true "Assessment id"
// @Success 200
// @Router /innovations/{innovationId}/assessments/{assessmentId}/pdf [get]
func (h *ReportHandler) PDF(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filename, data, err := h.reports.GeneratePDF(c.Request.Context(), actor, c.Param("innovationId"), c.Param("assessmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// CSV godoc
// @Summary Export a needs assessment as CSV
// @Tags Reports
// @Produce text/csv
// @Param innovationId path string true "Innovation id"
// @Param assessmentId path string true "Assessment id"
// @Success 200
// @Router /innovations/{innovationId}/assessments/{assessmentId}/csv [get]
func (h *ReportHandler) CSV(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filename, data, err := h.reports.GenerateCSV(c.Request.Context(), actor, c.Param("innovationId"), c.Param("assessmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
