package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
	"github.com/noah-isme/innovation-hub-api/pkg/export"
	"github.com/noah-isme/innovation-hub-api/pkg/storage"
)

type assessmentDetailReader interface {
	Find(ctx context.Context, actor models.Actor, innovationID, assessmentID string) (*models.AssessmentDetail, error)
}

// ReportService renders assessment summaries as downloadable documents.
type ReportService struct {
	assessments assessmentDetailReader
	innovations innovationReader
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	store       *storage.LocalStorage
	logger      *zap.Logger
}

// NewReportService creates a new report service.
func NewReportService(assessments assessmentDetailReader, innovations innovationReader, store *storage.LocalStorage, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		assessments: assessments,
		innovations: innovations,
		pdf:         export.NewPDFExporter(),
		csv:         export.NewCSVExporter(),
		store:       store,
		logger:      logger,
	}
}

// GeneratePDF renders the assessment summary of an innovation as a PDF and
// keeps a copy in the report store.
func (s *ReportService) GeneratePDF(ctx context.Context, actor models.Actor, innovationID, assessmentID string) (string, []byte, error) {
	innovation, detail, err := s.load(ctx, actor, innovationID, assessmentID)
	if err != nil {
		return "", nil, err
	}

	data, err := s.pdf.RenderDocument(buildAssessmentDocument(innovation, detail))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	filename := s.persist(innovation.ID, assessmentID, "pdf", data)
	return filename, data, nil
}

// GenerateCSV renders the same assessment document as a flat CSV export,
// one row per labelled field.
func (s *ReportService) GenerateCSV(ctx context.Context, actor models.Actor, innovationID, assessmentID string) (string, []byte, error) {
	innovation, detail, err := s.load(ctx, actor, innovationID, assessmentID)
	if err != nil {
		return "", nil, err
	}

	data, err := s.csv.Render(export.DocumentDataset(buildAssessmentDocument(innovation, detail)))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	filename := s.persist(innovation.ID, assessmentID, "csv", data)
	return filename, data, nil
}

func (s *ReportService) load(ctx context.Context, actor models.Actor, innovationID, assessmentID string) (*models.Innovation, *models.AssessmentDetail, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, nil, err
	}
	detail, err := s.assessments.Find(ctx, actor, innovationID, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	return innovation, detail, nil
}

// persist keeps a copy of the rendered report. Failures only cost the
// archive copy, never the download.
func (s *ReportService) persist(innovationID, assessmentID, ext string, data []byte) string {
	filename := fmt.Sprintf("%s/%s-%d.%s", innovationID, assessmentID, time.Now().UTC().Unix(), ext)
	if s.store == nil {
		return filename
	}
	if _, err := s.store.Save(filename, data); err != nil {
		s.logger.Warn("report archive failed",
			zap.String("filename", filename), zap.Error(err))
	}
	return filename
}

func buildAssessmentDocument(innovation *models.Innovation, detail *models.AssessmentDetail) export.Document {
	doc := export.Document{
		Title: fmt.Sprintf("Needs assessment - %s", innovation.Name),
		Sections: []export.DocumentSection{
			{
				Heading: "Innovation",
				Fields: []export.DocumentField{
					{Label: "Name", Value: innovation.Name},
					{Label: "Status", Value: string(innovation.Status)},
					{Label: "Country", Value: innovation.CountryName},
				},
			},
			{
				Heading: "Assessment",
				Fields:  assessmentFields(detail),
			},
		},
	}
	if len(detail.Organisations) > 0 {
		section := export.DocumentSection{Heading: "Suggested organisations"}
		for _, org := range detail.Organisations {
			names := make([]string, 0, len(org.Units))
			for _, unit := range org.Units {
				names = append(names, unit.Name)
			}
			section.Fields = append(section.Fields, export.DocumentField{
				Label: org.Name,
				Value: strings.Join(names, ", "),
			})
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func assessmentFields(detail *models.AssessmentDetail) []export.DocumentField {
	valueOf := func(answer *models.YesPartialNo) string {
		if answer == nil {
			return ""
		}
		return string(*answer)
	}
	maturity := ""
	if detail.MaturityLevel != nil {
		maturity = string(*detail.MaturityLevel)
	}
	summary := ""
	if detail.Summary != nil {
		summary = *detail.Summary
	}
	finished := ""
	if detail.FinishedAt != nil {
		finished = detail.FinishedAt.UTC().Format(time.RFC3339)
	}
	return []export.DocumentField{
		{Label: "Maturity level", Value: maturity},
		{Label: "Summary", Value: summary},
		{Label: "Assigned to", Value: detail.AssignedToName},
		{Label: "Finished at", Value: finished},
		{Label: "Regulatory approvals", Value: valueOf(detail.HasRegulatoryApprovals)},
		{Label: "Evidence", Value: valueOf(detail.HasEvidence)},
		{Label: "Validation", Value: valueOf(detail.HasValidation)},
		{Label: "Proposition", Value: valueOf(detail.HasProposition)},
		{Label: "Competition knowledge", Value: valueOf(detail.HasCompetitionKnowledge)},
		{Label: "Implementation plan", Value: valueOf(detail.HasImplementationPlan)},
		{Label: "Scale resource", Value: valueOf(detail.HasScaleResource)},
	}
}
