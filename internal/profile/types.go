// Package profile generates and models the ideal-applicant profile (IAP):
// a schema-versioned JSON document describing the organization a funding
// program is designed for. Generation is two-tier: deterministic rules
// over structured fields, optionally refined by a single LLM extraction
// call, merged under a rule-wins policy.
package profile

import (
	"encoding/json"
	"fmt"

	"grantmatch/internal/catalog"
)

// SchemaVersion is bumped when the document shape changes; persisted
// profiles from older versions are treated as absent and regenerated.
const SchemaVersion = "1.0"

type GeneratedBy string

const (
	GeneratedByRule   GeneratedBy = "RULE"
	GeneratedByLLM    GeneratedBy = "LLM"
	GeneratedByHybrid GeneratedBy = "HYBRID"
)

// Confidence grades a single dimension of the profile.
type Confidence string

const (
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceLow      Confidence = "LOW"
	ConfidenceInferred Confidence = "INFERRED"
)

type ProgramStage string

const (
	StageBasicResearch     ProgramStage = "BASIC_RESEARCH"
	StageAppliedResearch   ProgramStage = "APPLIED_RESEARCH"
	StageCommercialization ProgramStage = "COMMERCIALIZATION"
)

// IsResearchStage reports whether the stage rewards R&D experience.
func (s ProgramStage) IsResearchStage() bool {
	return s == StageBasicResearch || s == StageAppliedResearch
}

type RegionRequirement string

const (
	RegionNationwide      RegionRequirement = "NATIONWIDE"
	RegionNonMetropolitan RegionRequirement = "NON_METROPOLITAN"
	RegionMetropolitan    RegionRequirement = "METROPOLITAN"
	RegionSpecificRegions RegionRequirement = "SPECIFIC_REGIONS"
)

type TRLRange struct {
	Min         *int `json:"min,omitempty"`
	Max         *int `json:"max,omitempty"`
	IdealCenter *int `json:"idealCenter,omitempty"`
}

type BusinessAge struct {
	MinYears       *int   `json:"minYears,omitempty"`
	MaxYears       *int   `json:"maxYears,omitempty"`
	PreferredStage string `json:"preferredStage,omitempty"`
}

type FinancialProfile struct {
	// MinRevenueEok is the minimum annual revenue in 억원 (100M KRW) units.
	MinRevenueEok          *int64 `json:"minRevenue,omitempty"`
	RequiresMatchingFund   *bool  `json:"requiresMatchingFund,omitempty"`
	ExpectsPriorInvestment *bool  `json:"expectsPriorInvestment,omitempty"`
}

// Profile is the IAP document. Almost every field is optional; an absent
// dimension means the program does not constrain it, which is distinct
// from a zero value. Consumers must ignore unknown fields.
type Profile struct {
	Version string `json:"version"`

	OrganizationTypes []catalog.OrgType      `json:"organizationTypes,omitempty"`
	PreferredScales   []catalog.CompanyScale `json:"preferredScales,omitempty"`
	AcceptableScales  []catalog.CompanyScale `json:"acceptableScales,omitempty"`
	BusinessAge       *BusinessAge           `json:"businessAge,omitempty"`
	TRLRange          *TRLRange              `json:"trlRange,omitempty"`
	ProgramStage      ProgramStage           `json:"programStage,omitempty"`
	FinancialProfile  *FinancialProfile      `json:"financialProfile,omitempty"`

	RequiredCertifications  []string `json:"requiredCertifications,omitempty"`
	PreferredCertifications []string `json:"preferredCertifications,omitempty"`

	RegionRequirement RegionRequirement    `json:"regionRequirement,omitempty"`
	SpecificRegions   []catalog.RegionCode `json:"specificRegions,omitempty"`

	CollaborationExpectation  string `json:"collaborationExpectation,omitempty"`
	RequiresResearchInstitute *bool  `json:"requiresResearchInstitute,omitempty"`

	PrimaryDomain        string   `json:"primaryDomain,omitempty"`
	SubDomains           []string `json:"subDomains,omitempty"`
	TechnologyKeywords   []string `json:"technologyKeywords,omitempty"`
	ExpectedCapabilities []string `json:"expectedCapabilities,omitempty"`
	DesiredOutcomes      []string `json:"desiredOutcomes,omitempty"`
	SupportPurpose       string   `json:"supportPurpose,omitempty"`

	Confidence          float64               `json:"confidence"`
	GeneratedBy         GeneratedBy           `json:"generatedBy"`
	DimensionConfidence map[string]Confidence `json:"dimensionConfidence,omitempty"`
	SourceTextLength    int                   `json:"sourceTextLength,omitempty"`
}

// setDimension records a value-bearing dimension with its confidence.
func (p *Profile) setDimension(name string, conf Confidence) {
	if p.DimensionConfidence == nil {
		p.DimensionConfidence = map[string]Confidence{}
	}
	p.DimensionConfidence[name] = conf
}

// Parse decodes a persisted IAP document. Documents from a different
// schema version are rejected so callers fall back to non-IAP scoring
// and the batch generator regenerates them.
func Parse(raw json.RawMessage) (*Profile, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("empty profile document")
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.Version != SchemaVersion {
		return nil, fmt.Errorf("profile schema version %q, want %q", p.Version, SchemaVersion)
	}
	return &p, nil
}

// FromProgram loads the persisted profile off a program record, returning
// nil when absent or stale.
func FromProgram(p *catalog.Program) *Profile {
	if !p.HasIAP() {
		return nil
	}
	doc, err := Parse(p.IdealProfile)
	if err != nil {
		return nil
	}
	return doc
}

// overallConfidence computes min(1, (H + 0.6*M) / 15) over the dimension
// map, flooring at 0.1 when any dimension is set and no weight accrued.
func overallConfidence(dims map[string]Confidence) float64 {
	if len(dims) == 0 {
		return 0.1
	}
	var high, medium int
	for _, c := range dims {
		switch c {
		case ConfidenceHigh:
			high++
		case ConfidenceMedium:
			medium++
		}
	}
	conf := (float64(high) + 0.6*float64(medium)) / 15.0
	if conf > 1.0 {
		conf = 1.0
	}
	if conf < 0.1 {
		conf = 0.1
	}
	return conf
}
