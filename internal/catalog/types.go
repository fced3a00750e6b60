// Package catalog defines the shared data model for applicant organizations
// and funding programs. Both R&D and SME announcements flow through the same
// Program struct; variant-specific data is expressed through optional fields
// and capability methods rather than separate types.
package catalog

import (
	"encoding/json"
	"time"
)

type OrgType string

const (
	OrgCompany           OrgType = "COMPANY"
	OrgResearchInstitute OrgType = "RESEARCH_INSTITUTE"
	OrgUniversity        OrgType = "UNIVERSITY"
	OrgPublicInstitution OrgType = "PUBLIC_INSTITUTION"
	OrgNonprofit         OrgType = "NONPROFIT"
)

type CompanyScale string

const (
	ScaleMicro       CompanyScale = "MICRO"
	ScaleStartup     CompanyScale = "STARTUP"
	ScaleSmall       CompanyScale = "SMALL"
	ScaleSmallMedium CompanyScale = "SMALL_MEDIUM"
	ScaleMedium      CompanyScale = "MEDIUM"
	ScaleLarge       CompanyScale = "LARGE"
)

// ScaleLadder is the ordered scale axis used for proximity scoring.
var ScaleLadder = []CompanyScale{ScaleMicro, ScaleStartup, ScaleSmall, ScaleSmallMedium, ScaleMedium, ScaleLarge}

// ScaleIndex returns the position of s on ScaleLadder, or -1.
func ScaleIndex(s CompanyScale) int {
	for i, v := range ScaleLadder {
		if v == s {
			return i
		}
	}
	return -1
}

type EmployeeRange string

const (
	EmployeesUnknown  EmployeeRange = ""
	EmployeesUnder5   EmployeeRange = "UNDER_5"
	Employees5To9     EmployeeRange = "5_TO_9"
	Employees10To29   EmployeeRange = "10_TO_29"
	Employees30To49   EmployeeRange = "30_TO_49"
	Employees50To99   EmployeeRange = "50_TO_99"
	Employees100To299 EmployeeRange = "100_TO_299"
	Employees300Plus  EmployeeRange = "300_PLUS"
)

// employeeMidpoints maps each range enum to its representative head count.
var employeeMidpoints = map[EmployeeRange]int{
	EmployeesUnder5:   3,
	Employees5To9:     7,
	Employees10To29:   20,
	Employees30To49:   40,
	Employees50To99:   75,
	Employees100To299: 200,
	Employees300Plus:  400,
}

// Midpoint returns the representative head count for the range.
// ok is false when the range is unknown.
func (r EmployeeRange) Midpoint() (int, bool) {
	v, ok := employeeMidpoints[r]
	return v, ok
}

type RevenueRange string

const (
	RevenueUnknown  RevenueRange = ""
	RevenueNone     RevenueRange = "NONE"
	RevenueUnder1   RevenueRange = "UNDER_100M"
	Revenue1To10    RevenueRange = "100M_TO_1B"
	Revenue10To50   RevenueRange = "1B_TO_5B"
	Revenue50To100  RevenueRange = "5B_TO_10B"
	Revenue100To500 RevenueRange = "10B_TO_50B"
	Revenue500Plus  RevenueRange = "50B_PLUS"
)

// revenueMidpointsKRW maps each range enum to a representative annual
// revenue in won.
var revenueMidpointsKRW = map[RevenueRange]int64{
	RevenueNone:     0,
	RevenueUnder1:   50_000_000,
	Revenue1To10:    500_000_000,
	Revenue10To50:   3_000_000_000,
	Revenue50To100:  7_500_000_000,
	Revenue100To500: 30_000_000_000,
	Revenue500Plus:  70_000_000_000,
}

// revenueUpperEok is the range upper bound expressed in 억원 (100M KRW)
// units, used by the financial-fit check against IAP minimum revenue.
var revenueUpperEok = map[RevenueRange]int64{
	RevenueNone:     0,
	RevenueUnder1:   1,
	Revenue1To10:    10,
	Revenue10To50:   50,
	Revenue50To100:  100,
	Revenue100To500: 500,
	Revenue500Plus:  2000,
}

func (r RevenueRange) MidpointKRW() (int64, bool) {
	v, ok := revenueMidpointsKRW[r]
	return v, ok
}

func (r RevenueRange) UpperBoundEok() (int64, bool) {
	v, ok := revenueUpperEok[r]
	return v, ok
}

type RegionCode string

const (
	RegionSeoul     RegionCode = "SEOUL"
	RegionGyeonggi  RegionCode = "GYEONGGI"
	RegionIncheon   RegionCode = "INCHEON"
	RegionBusan     RegionCode = "BUSAN"
	RegionDaegu     RegionCode = "DAEGU"
	RegionGwangju   RegionCode = "GWANGJU"
	RegionDaejeon   RegionCode = "DAEJEON"
	RegionUlsan     RegionCode = "ULSAN"
	RegionSejong    RegionCode = "SEJONG"
	RegionGangwon   RegionCode = "GANGWON"
	RegionChungbuk  RegionCode = "CHUNGBUK"
	RegionChungnam  RegionCode = "CHUNGNAM"
	RegionJeonbuk   RegionCode = "JEONBUK"
	RegionJeonnam   RegionCode = "JEONNAM"
	RegionGyeongbuk RegionCode = "GYEONGBUK"
	RegionGyeongnam RegionCode = "GYEONGNAM"
	RegionJeju      RegionCode = "JEJU"
)

// metropolitanRegions is the 수도권 set; everything else counts as
// non-metropolitan for regional-innovation program rules.
var metropolitanRegions = map[RegionCode]bool{
	RegionSeoul:    true,
	RegionGyeonggi: true,
	RegionIncheon:  true,
}

func (r RegionCode) IsMetropolitan() bool { return metropolitanRegions[r] }

type Investment struct {
	Date      time.Time `json:"date"`
	AmountKRW int64     `json:"amountKRW"`
	Source    string    `json:"source"`
	Verified  bool      `json:"verified"`
}

// Organization is the applicant profile the engine matches against.
// Optional numeric fields are pointers; an absent TRL is not TRL 0.
type Organization struct {
	ID   string  `db:"id" json:"id"`
	Name string  `db:"name" json:"name"`
	Type OrgType `db:"org_type" json:"type"`

	CompanyScale      CompanyScale  `db:"company_scale" json:"companyScale,omitempty"`
	EmployeeRange     EmployeeRange `db:"employee_range" json:"employeeRange,omitempty"`
	RevenueRange      RevenueRange  `db:"revenue_range" json:"revenueRange,omitempty"`
	BusinessStructure string        `db:"business_structure" json:"businessStructure,omitempty"`

	IndustrySector               string   `db:"industry_sector" json:"industrySector,omitempty"`
	PrimaryBusinessDomain        string   `db:"primary_business_domain" json:"primaryBusinessDomain,omitempty"`
	Description                  string   `db:"description" json:"description,omitempty"`
	KeyTechnologies              []string `json:"keyTechnologies,omitempty"`
	TechnologySubDomains         []string `json:"technologySubDomains,omitempty"`
	ResearchFocusAreas           []string `json:"researchFocusAreas,omitempty"`
	CommercializationCapabilities []string `json:"commercializationCapabilities,omitempty"`

	TRL                  *int `json:"trl,omitempty"`
	TargetResearchTRL    *int `json:"targetResearchTRL,omitempty"`
	RDExperience         bool `db:"rd_experience" json:"rdExperience"`
	CollaborationCount   int  `db:"collaboration_count" json:"collaborationCount"`
	HasResearchInstitute bool `db:"has_research_institute" json:"hasResearchInstitute"`

	Certifications           []string     `json:"certifications,omitempty"`
	GovernmentCertifications []string     `json:"governmentCertifications,omitempty"`
	IndustryAwards           []string     `json:"industryAwards,omitempty"`
	PriorGrantWins           int          `db:"prior_grant_wins" json:"priorGrantWins"`
	InvestmentHistory        []Investment `json:"investmentHistory,omitempty"`

	Locations       []RegionCode `json:"locations,omitempty"`
	ExcludedDomains []string     `json:"excludedDomains,omitempty"`

	BusinessEstablishedDate *time.Time `json:"businessEstablishedDate,omitempty"`
}

// ValidTRL reports whether t sits on the 1-9 readiness scale.
func ValidTRL(t int) bool { return t >= 1 && t <= 9 }

// MatchingTRL returns the TRL used for intent alignment: the declared
// research target when set, otherwise the current level. Values off the
// 1-9 scale are skipped.
func (o *Organization) MatchingTRL() (int, bool) {
	if o.TargetResearchTRL != nil && ValidTRL(*o.TargetResearchTRL) {
		return *o.TargetResearchTRL, true
	}
	if o.TRL != nil && ValidTRL(*o.TRL) {
		return *o.TRL, true
	}
	return 0, false
}

// OperatingYears computes whole years since establishment using
// 365.25-day years, floored.
func (o *Organization) OperatingYears(now time.Time) (int, bool) {
	if o.BusinessEstablishedDate == nil {
		return 0, false
	}
	d := now.Sub(*o.BusinessEstablishedDate)
	if d < 0 {
		return 0, true
	}
	years := int(d.Hours() / (24 * 365.25))
	return years, true
}

// HasNonMetropolitanLocation reports whether any registered location
// falls outside the 수도권 set.
func (o *Organization) HasNonMetropolitanLocation() bool {
	for _, r := range o.Locations {
		if !r.IsMetropolitan() {
			return true
		}
	}
	return false
}

// VerifiedInvestmentKRW sums the verified entries of the investment
// history.
func (o *Organization) VerifiedInvestmentKRW() int64 {
	var total int64
	for _, inv := range o.InvestmentHistory {
		if inv.Verified {
			total += inv.AmountKRW
		}
	}
	return total
}

type ProgramIntent string

const (
	IntentBasicResearch     ProgramIntent = "BASIC_RESEARCH"
	IntentAppliedResearch   ProgramIntent = "APPLIED_RESEARCH"
	IntentCommercialization ProgramIntent = "COMMERCIALIZATION"
	IntentInfrastructure    ProgramIntent = "INFRASTRUCTURE"
	IntentPolicySupport     ProgramIntent = "POLICY_SUPPORT"
)

type ProgramStatus string

const (
	StatusActive  ProgramStatus = "ACTIVE"
	StatusExpired ProgramStatus = "EXPIRED"
	StatusClosed  ProgramStatus = "CLOSED"
)

// ProgramSource distinguishes the two upstream catalogs.
type ProgramSource string

const (
	SourceRD  ProgramSource = "RD"
	SourceSME ProgramSource = "SME"
)

// Program is a funding announcement from either catalog.
type Program struct {
	ID              string        `db:"id" json:"id"`
	AgencyID        string        `db:"agency_id" json:"agencyId"`
	Title           string        `db:"title" json:"title"`
	ProgramName     string        `db:"program_name" json:"programName,omitempty"`
	AnnouncementURL string        `db:"announcement_url" json:"announcementUrl,omitempty"`
	ContentHash     string        `db:"content_hash" json:"contentHash,omitempty"`
	ScrapedAt       time.Time     `db:"scraped_at" json:"scrapedAt"`
	Source          ProgramSource `db:"source" json:"source"`

	Industry string        `db:"industry" json:"industry,omitempty"`
	Keywords []string      `json:"keywords,omitempty"`
	Ministry string        `db:"ministry" json:"ministry,omitempty"`
	Agency   string        `db:"agency" json:"agency,omitempty"`
	Intent   ProgramIntent `db:"intent" json:"intent,omitempty"`

	TargetOrgTypes            []OrgType `json:"targetOrgTypes,omitempty"`
	TargetBusinessStructures  []string  `json:"targetBusinessStructures,omitempty"`
	MinTRL                    *int      `json:"minTRL,omitempty"`
	MaxTRL                    *int      `json:"maxTRL,omitempty"`
	RequiredCertifications    []string  `json:"requiredCertifications,omitempty"`
	PreferredCertifications   []string  `json:"preferredCertifications,omitempty"`
	RequiredOperatingYears    *int      `json:"requiredOperatingYears,omitempty"`
	MaxOperatingYears         *int      `json:"maxOperatingYears,omitempty"`
	MinEmployees              *int      `json:"minEmployees,omitempty"`
	MaxEmployees              *int      `json:"maxEmployees,omitempty"`
	MinRevenueKRW             *int64    `json:"minRevenueKRW,omitempty"`
	MaxRevenueKRW             *int64    `json:"maxRevenueKRW,omitempty"`
	RequiredInvestmentKRW     *int64    `json:"requiredInvestmentKRW,omitempty"`
	RequiresResearchInstitute bool      `json:"requiresResearchInstitute"`

	Status           ProgramStatus `db:"status" json:"status"`
	ApplicationStart *time.Time    `json:"applicationStart,omitempty"`
	Deadline         *time.Time    `json:"deadline,omitempty"`
	PublishedAt      *time.Time    `json:"publishedAt,omitempty"`
	BudgetAmountKRW  *int64        `json:"budgetAmountKRW,omitempty"`

	Description         string `db:"description" json:"description,omitempty"`
	EligibilityCriteria string `db:"eligibility_criteria" json:"eligibilityCriteria,omitempty"`

	// IdealProfile carries the persisted ideal-applicant profile as raw
	// JSON; internal/profile owns the schema. A nil or literal-null value
	// means the program has not been enriched.
	IdealProfile            json.RawMessage `db:"ideal_profile" json:"idealApplicantProfile,omitempty"`
	IdealProfileVersion     string          `db:"ideal_profile_version" json:"idealProfileVersion,omitempty"`
	IdealProfileGeneratedAt *time.Time      `json:"idealProfileGeneratedAt,omitempty"`

	// SemanticSubDomain is free-form enrichment carried through from the
	// upstream producer; consumers must tolerate unknown keys.
	SemanticSubDomain map[string]string `json:"semanticSubDomain,omitempty"`
}

// HasIAP reports whether an ideal-applicant profile document is present.
func (p *Program) HasIAP() bool {
	return len(p.IdealProfile) > 0 && string(p.IdealProfile) != "null"
}

func (p *Program) HasMinistry() bool { return p.Ministry != "" }

func (p *Program) HasTargetTypes() bool { return len(p.TargetOrgTypes) > 0 }

// HasTRLRequirement reports whether the announcement constrains TRL at
// either end.
func (p *Program) HasTRLRequirement() bool { return p.MinTRL != nil || p.MaxTRL != nil }

// IsExpired reports whether the deadline has passed relative to now.
// Programs without a deadline never expire by time.
func (p *Program) IsExpired(now time.Time) bool {
	return p.Deadline != nil && p.Deadline.Before(now)
}
