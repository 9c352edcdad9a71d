package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/internal/models"
	appErrors "github.com/noah-isme/innovation-hub-api/pkg/errors"
)

type assessmentRepo interface {
	Create(ctx context.Context, assessment *models.Assessment, comment *models.Comment) error
	FindByID(ctx context.Context, assessmentID, innovationID string) (*models.Assessment, error)
	FindByInnovation(ctx context.Context, innovationID string) (*models.Assessment, error)
	Update(ctx context.Context, assessment *models.Assessment, unitIDs []string, submittedNow bool) error
	SuggestedUnitIDs(ctx context.Context, assessmentID string) ([]string, error)
}

type assessmentShareReader interface {
	GetShareOrganisationIDs(ctx context.Context, innovationID string) ([]string, error)
}

type assessmentOrganisationReader interface {
	ListUnits(ctx context.Context, unitIDs []string) ([]models.OrganisationUnit, error)
	ListOrganisationsByIDs(ctx context.Context, ids []string) ([]models.Organisation, error)
	QualifyingAccessorsOfUnits(ctx context.Context, unitIDs []string, innovationID string) ([]string, error)
}

type assessmentUserReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type emailSender interface {
	SendEmail(ctx context.Context, template models.EmailTemplate, recipientIDs []string, params map[string]string) error
}

// AssessmentService runs the needs assessment workflow.
type AssessmentService struct {
	assessments   assessmentRepo
	shares        assessmentShareReader
	organisations assessmentOrganisationReader
	users         assessmentUserReader
	profiles      profileResolver
	innovations   innovationReader
	notifications notifier
	emails        emailSender
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(assessments assessmentRepo, shares assessmentShareReader, organisations assessmentOrganisationReader, users assessmentUserReader, profiles profileResolver, innovations innovationReader, notifications notifier, emails emailSender, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		assessments:   assessments,
		shares:        shares,
		organisations: organisations,
		users:         users,
		profiles:      profiles,
		innovations:   innovations,
		notifications: notifications,
		emails:        emails,
		validator:     validator.New(),
		logger:        logger,
	}
}

// Create starts an assessment on a submitted innovation. Assessment users
// only; the innovation moves to NEEDS_ASSESSMENT in the same transaction.
func (s *AssessmentService) Create(ctx context.Context, actor models.Actor, innovationID string, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	if actor.Type != models.UserTypeAssessment {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	if innovation.Status != models.InnovationStatusWaitingNeedsAssessment {
		return nil, appErrors.Clone(appErrors.ErrConflict, "innovation is not waiting for assessment")
	}

	assessment := &models.Assessment{
		InnovationID: innovation.ID,
		AssignedToID: actor.ID,
		Description:  &req.Description,
		CreatedBy:    &actor.ID,
		UpdatedBy:    &actor.ID,
	}
	var comment *models.Comment
	if req.Comment != "" {
		comment = &models.Comment{
			InnovationID: innovation.ID,
			UserID:       actor.ID,
			Message:      req.Comment,
			CreatedBy:    &actor.ID,
		}
	}
	if err := s.assessments.Create(ctx, assessment, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}

	if s.notifications != nil {
		notifyErr := s.notifications.Create(ctx, actor, models.AudienceInnovators, innovation.ID,
			models.NotificationContextInnovation, assessment.ID, "needs assessment started", nil)
		if notifyErr != nil {
			s.logger.Warn("assessment start notification failed",
				zap.String("assessment_id", assessment.ID), zap.Error(notifyErr))
		}
	}
	return assessment, nil
}

// Update edits assessment fields and, when the payload marks a submission,
// finishes the assessment. Only the first submission stamps finishedAt and
// moves the innovation to IN_PROGRESS; resubmitting an already finished
// assessment just updates the fields.
func (s *AssessmentService) Update(ctx context.Context, actor models.Actor, innovationID, assessmentID string, req models.UpdateAssessmentRequest) (*models.Assessment, error) {
	if actor.Type != models.UserTypeAssessment {
		return nil, appErrors.ErrInvalidUserType
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}

	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.findAssessment(ctx, assessmentID, innovation.ID)
	if err != nil {
		return nil, err
	}

	applyAssessmentFields(assessment, req)
	assessment.UpdatedBy = &actor.ID

	unitIDs := dedupeStrings(req.OrganisationUnits)
	submittedNow := req.IsSubmission && assessment.FinishedAt == nil
	if err := s.assessments.Update(ctx, assessment, unitIDs, submittedNow); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}

	if submittedNow {
		s.fanOutSubmission(ctx, actor, innovation, assessment, unitIDs)
	}
	return assessment, nil
}

// Find returns the resolved assessment view with suggested units grouped
// under their organisations.
func (s *AssessmentService) Find(ctx context.Context, actor models.Actor, innovationID, assessmentID string) (*models.AssessmentDetail, error) {
	innovation, err := resolveInnovationForActor(ctx, s.innovations, actor, innovationID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.findAssessment(ctx, assessmentID, innovation.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.AssessmentDetail{Assessment: *assessment}

	if name, err := s.resolveUserName(ctx, assessment.AssignedToID); err != nil {
		s.logger.Warn("assessment assignee lookup failed",
			zap.String("assessment_id", assessment.ID), zap.Error(err))
	} else {
		detail.AssignedToName = name
	}

	unitIDs, err := s.assessments.SuggestedUnitIDs(ctx, assessment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggested units")
	}
	if len(unitIDs) > 0 {
		organisations, err := s.groupSuggestedUnits(ctx, unitIDs)
		if err != nil {
			return nil, err
		}
		detail.Organisations = organisations
	}
	return detail, nil
}

func (s *AssessmentService) findAssessment(ctx context.Context, assessmentID, innovationID string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByID(ctx, assessmentID, innovationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	return assessment, nil
}

func (s *AssessmentService) resolveUserName(ctx context.Context, userID string) (string, error) {
	users, err := s.users.ListByIDs(ctx, []string{userID})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	profiles, err := s.profiles.ListProfiles(ctx, []string{users[0].ExternalID})
	if err != nil {
		return "", err
	}
	if profile, ok := profiles[users[0].ExternalID]; ok {
		return profile.DisplayName, nil
	}
	return "", nil
}

func (s *AssessmentService) groupSuggestedUnits(ctx context.Context, unitIDs []string) ([]models.SuggestedOrganisation, error) {
	units, err := s.organisations.ListUnits(ctx, unitIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load units")
	}
	orgIDs := make([]string, 0, len(units))
	for _, unit := range units {
		orgIDs = append(orgIDs, unit.OrganisationID)
	}
	organisations, err := s.organisations.ListOrganisationsByIDs(ctx, dedupeStrings(orgIDs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organisations")
	}

	grouped := make([]models.SuggestedOrganisation, 0, len(organisations))
	for _, org := range organisations {
		suggestion := models.SuggestedOrganisation{ID: org.ID, Name: org.Name}
		for _, unit := range units {
			if unit.OrganisationID == org.ID {
				suggestion.Units = append(suggestion.Units, unit)
			}
		}
		grouped = append(grouped, suggestion)
	}
	return grouped, nil
}

// Submission fan-out. Each step is independent: a failure is logged and the
// remaining steps still run, and the submission itself is already committed.
func (s *AssessmentService) fanOutSubmission(ctx context.Context, actor models.Actor, innovation *models.Innovation, assessment *models.Assessment, unitIDs []string) {
	if s.notifications != nil {
		err := s.notifications.Create(ctx, actor, models.AudienceQualifyingAccessors, innovation.ID,
			models.NotificationContextInnovation, innovation.ID, "innovation is now available for qualifying accessors", nil)
		if err != nil {
			s.logger.Warn("assessment completion notification failed",
				zap.String("assessment_id", assessment.ID), zap.Error(err))
		}

		err = s.notifications.Create(ctx, actor, models.AudienceInnovators, innovation.ID,
			models.NotificationContextDataSharing, innovation.ID, "organisations were suggested by the needs assessment team", nil)
		if err != nil {
			s.logger.Warn("suggested organisations notification failed",
				zap.String("assessment_id", assessment.ID), zap.Error(err))
		}
	}

	if s.emails != nil && len(unitIDs) > 0 {
		qaIDs, err := s.organisations.QualifyingAccessorsOfUnits(ctx, unitIDs, innovation.ID)
		if err != nil {
			s.logger.Warn("qualifying accessor lookup failed",
				zap.String("assessment_id", assessment.ID), zap.Error(err))
		} else if qaIDs = dedupeStrings(qaIDs); len(qaIDs) > 0 {
			err = s.emails.SendEmail(ctx, models.EmailQAOrganisationSuggested, qaIDs, map[string]string{
				"innovation_name": innovation.Name,
			})
			if err != nil {
				s.logger.Warn("organisation suggested email failed",
					zap.String("assessment_id", assessment.ID), zap.Error(err))
			}
		}
	}

	// The extra innovator notification fires only when the suggestions are
	// not already covered by the existing data sharing set.
	newOrgIDs, err := s.unsharedSuggestedOrganisations(ctx, innovation.ID, unitIDs)
	if err != nil {
		s.logger.Warn("suggested organisation diff failed",
			zap.String("assessment_id", assessment.ID), zap.Error(err))
		return
	}
	if len(newOrgIDs) == 0 || s.notifications == nil {
		return
	}
	err = s.notifications.Create(ctx, actor, models.AudienceInnovators, innovation.ID,
		models.NotificationContextDataSharing, innovation.ID, "data sharing suggestions received", nil)
	if err != nil {
		s.logger.Warn("data sharing suggestion notification failed",
			zap.String("assessment_id", assessment.ID), zap.Error(err))
	}
}

// unsharedSuggestedOrganisations returns the organisations of the suggested
// units that the innovation is not yet shared with. Raw id comparison; share
// rows and unit parents use the same organisation ids.
func (s *AssessmentService) unsharedSuggestedOrganisations(ctx context.Context, innovationID string, unitIDs []string) ([]string, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	units, err := s.organisations.ListUnits(ctx, unitIDs)
	if err != nil {
		return nil, err
	}
	shared, err := s.shares.GetShareOrganisationIDs(ctx, innovationID)
	if err != nil {
		return nil, err
	}
	sharedSet := make(map[string]struct{}, len(shared))
	for _, id := range shared {
		sharedSet[id] = struct{}{}
	}

	var newOrgIDs []string
	for _, unit := range units {
		if _, ok := sharedSet[unit.OrganisationID]; !ok {
			newOrgIDs = append(newOrgIDs, unit.OrganisationID)
		}
	}
	return dedupeStrings(newOrgIDs), nil
}

func applyAssessmentFields(assessment *models.Assessment, req models.UpdateAssessmentRequest) {
	if req.Summary != "" {
		assessment.Summary = &req.Summary
	}
	if req.Description != "" {
		assessment.Description = &req.Description
	}
	if req.MaturityLevel != "" {
		level := models.MaturityLevel(req.MaturityLevel)
		assessment.MaturityLevel = &level
	}
	assignAnswer(&assessment.HasRegulatoryApprovals, req.HasRegulatoryApprovals)
	assignAnswer(&assessment.HasEvidence, req.HasEvidence)
	assignAnswer(&assessment.HasValidation, req.HasValidation)
	assignAnswer(&assessment.HasProposition, req.HasProposition)
	assignAnswer(&assessment.HasCompetitionKnowledge, req.HasCompetitionKnowledge)
	assignAnswer(&assessment.HasImplementationPlan, req.HasImplementationPlan)
	assignAnswer(&assessment.HasScaleResource, req.HasScaleResource)
}

func assignAnswer(target **models.YesPartialNo, value string) {
	if value == "" {
		return
	}
	answer := models.YesPartialNo(value)
	*target = &answer
}
