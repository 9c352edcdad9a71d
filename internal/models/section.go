package models

import "time"

// SectionKey identifies one entry of the fixed innovation record catalogue.
type SectionKey string

const (
	SectionInnovationDescription   SectionKey = "INNOVATION_DESCRIPTION"
	SectionValueProposition        SectionKey = "VALUE_PROPOSITION"
	SectionUnderstandingOfNeeds    SectionKey = "UNDERSTANDING_OF_NEEDS"
	SectionUnderstandingOfBenefits SectionKey = "UNDERSTANDING_OF_BENEFITS"
	SectionEvidenceOfEffectiveness SectionKey = "EVIDENCE_OF_EFFECTIVENESS"
	SectionMarketResearch          SectionKey = "MARKET_RESEARCH"
	SectionIntellectualProperty    SectionKey = "INTELLECTUAL_PROPERTY"
	SectionRegulationsAndStandards SectionKey = "REGULATIONS_AND_STANDARDS"
	SectionCurrentCarePathway      SectionKey = "CURRENT_CARE_PATHWAY"
	SectionTestingWithUsers        SectionKey = "TESTING_WITH_USERS"
	SectionCostOfInnovation        SectionKey = "COST_OF_INNOVATION"
	SectionComparativeCostBenefit  SectionKey = "COMPARATIVE_COST_BENEFIT"
	SectionRevenueModel            SectionKey = "REVENUE_MODEL"
	SectionImplementationPlan      SectionKey = "IMPLEMENTATION_PLAN"
)

// sectionAliases maps catalogue keys to the 2-letter display id prefix.
var sectionAliases = map[SectionKey]string{
	SectionInnovationDescription:   "ID",
	SectionValueProposition:        "VP",
	SectionUnderstandingOfNeeds:    "UN",
	SectionUnderstandingOfBenefits: "UB",
	SectionEvidenceOfEffectiveness: "EE",
	SectionMarketResearch:          "MR",
	SectionIntellectualProperty:    "IP",
	SectionRegulationsAndStandards: "RS",
	SectionCurrentCarePathway:      "CP",
	SectionTestingWithUsers:        "TU",
	SectionCostOfInnovation:        "CI",
	SectionComparativeCostBenefit:  "CB",
	SectionRevenueModel:            "RM",
	SectionImplementationPlan:      "IM",
}

// sectionOrder preserves the catalogue presentation order.
var sectionOrder = []SectionKey{
	SectionInnovationDescription,
	SectionValueProposition,
	SectionUnderstandingOfNeeds,
	SectionUnderstandingOfBenefits,
	SectionEvidenceOfEffectiveness,
	SectionMarketResearch,
	SectionIntellectualProperty,
	SectionRegulationsAndStandards,
	SectionCurrentCarePathway,
	SectionTestingWithUsers,
	SectionCostOfInnovation,
	SectionComparativeCostBenefit,
	SectionRevenueModel,
	SectionImplementationPlan,
}

// SectionAlias returns the display id prefix for a key, "ZZ" when unknown.
func SectionAlias(key SectionKey) string {
	if alias, ok := sectionAliases[key]; ok {
		return alias
	}
	return "ZZ"
}

// ValidSectionKey reports whether the key belongs to the catalogue.
func ValidSectionKey(key SectionKey) bool {
	_, ok := sectionAliases[key]
	return ok
}

// SectionCatalogue returns the ordered catalogue keys.
func SectionCatalogue() []SectionKey {
	keys := make([]SectionKey, len(sectionOrder))
	copy(keys, sectionOrder)
	return keys
}

// SectionStatus tracks completion of one innovation record section.
type SectionStatus string

const (
	SectionStatusNotStarted SectionStatus = "NOT_STARTED"
	SectionStatusDraft      SectionStatus = "DRAFT"
	SectionStatusSubmitted  SectionStatus = "SUBMITTED"
)

// Section stores the state and answers of one catalogue entry for an innovation.
type Section struct {
	ID           string        `db:"id" json:"id"`
	InnovationID string        `db:"innovation_id" json:"innovation_id"`
	Key          SectionKey    `db:"section_key" json:"section"`
	Status       SectionStatus `db:"status" json:"status"`
	Data         []byte        `db:"data" json:"-"`
	SubmittedAt  *time.Time    `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
	CreatedBy    *string       `db:"created_by" json:"-"`
	UpdatedBy    *string       `db:"updated_by" json:"-"`
}

// SectionSummary is the per-section row of the record overview.
type SectionSummary struct {
	Key         SectionKey    `json:"section"`
	Status      SectionStatus `json:"status"`
	ActionCount int           `json:"action_count"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty"`
}

// SectionDetail is one section with its open actions.
type SectionDetail struct {
	Section
	Actions []Action `json:"actions,omitempty"`
}

// SaveSectionRequest stores draft answers for a section.
type SaveSectionRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// SubmitSectionsRequest submits a batch of sections.
type SubmitSectionsRequest struct {
	Sections []SectionKey `json:"sections" validate:"required,min=1"`
}
