package funnel

import (
	"regexp"
	"strings"
	"time"

	"grantmatch/internal/catalog"
	"grantmatch/internal/classify"
	"grantmatch/internal/eligibility"
	"grantmatch/internal/taxonomy"
)

// Gate block reason codes, returned for observability.
const (
	BlockStatusInactive         = "STATUS_INACTIVE"
	BlockDeadlinePassed         = "DEADLINE_PASSED"
	BlockConsolidated           = "CONSOLIDATED_ANNOUNCEMENT"
	BlockDesignated             = "DESIGNATED_PROJECT"
	BlockDemandSurvey           = "DEMAND_SURVEY"
	BlockInstitutionalOnly      = "INSTITUTIONAL_ONLY"
	BlockTrainingProgram        = "TRAINING_PROGRAM"
	BlockOrgTypeMismatch        = "ORG_TYPE_MISMATCH"
	BlockStructureMismatch      = "BUSINESS_STRUCTURE_MISMATCH"
	BlockStructureUnknown       = "BUSINESS_STRUCTURE_UNKNOWN"
	BlockTRLOutOfRange          = "TRL_OUT_OF_RANGE"
	BlockHospitalOnly           = "HOSPITAL_ONLY"
	BlockHardRequirementFailed  = "HARD_REQUIREMENT_FAILED"
	BlockSMEScale               = "SME_SCALE_BLOCK"
	BlockSMEStartupOnly         = "SME_STARTUP_ONLY"
	BlockSMERegionNonMetroOnly  = "SME_REGION_NON_METRO_ONLY"
	BlockSMERegionMismatch      = "SME_REGION_MISMATCH"
	BlockExcludedDomain         = "EXCLUDED_DOMAIN"
	BlockIndustryMismatch       = "INDUSTRY_MISMATCH"
	BlockCrossIndustryNoKeyword = "CROSS_INDUSTRY_NO_KEYWORD"
	BlockUnknownSector          = "UNKNOWN_SECTOR"
)

const smeMinistry = "중소벤처기업부"

// industryRelevanceFloor is the strict threshold below which an active
// program is considered a different industry entirely.
const industryRelevanceFloor = 0.45

// trlRelaxation widens the TRL gate when expired programs are opted in.
const trlRelaxation = 3

var (
	trainingTitleRe   = regexp.MustCompile(`교육|훈련|아카데미|연수|양성과정|역량강화`)
	strongRDTitleRe   = regexp.MustCompile(`R&D|기술개발|연구개발|기술혁신`)
	hospitalTitleRe   = regexp.MustCompile(`의사과학자|상급종합병원|M\.D\.-Ph\.D\.|의료법`)
	smeStartupTitleRe = regexp.MustCompile(`창업성장|TIPS|팁스|디딤돌`)
	smeRegionalRe     = regexp.MustCompile(`지역혁신|비수도권|지역주력|지역특화`)
	smeCodeRe         = regexp.MustCompile(`^(CC|LC)\d`)
)

// stopWords are filtered out of keyword overlap checks; they appear in
// virtually every announcement and carry no industry signal.
var stopWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"기술", "개발", "지원", "사업", "연구", "혁신", "산업", "기업",
		"과제", "공고", "모집", "안내", "공모", "선정", "육성",
	} {
		stopWords[taxonomy.Normalize(w)] = true
	}
}

// gateContext bundles everything gate rules read. Each rule yields zero
// or more block reasons; the gate aggregates.
type gateContext struct {
	org  *catalog.Organization
	prog *catalog.Program
	now  time.Time
	opts Options

	class       classify.Classification
	appType     classify.ApplicationType
	eligibility eligibility.Result
	orgSector   string
	progSector  string
}

type gateRule func(gc *gateContext) []string

// gateRules run in declaration order; every rule runs so the block-reason
// list is complete for observability.
var gateRules = []gateRule{
	ruleLifecycle,
	ruleApplicationType,
	ruleTrainingProgram,
	ruleHospitalOnly,
	ruleOrgType,
	ruleBusinessStructure,
	ruleTRLRange,
	ruleHardRequirements,
	ruleSME,
	ruleExcludedDomain,
	ruleIndustryFit,
}

// EvaluateGate runs the stage-1 binary pre-filter for one program.
func EvaluateGate(org *catalog.Organization, p *catalog.Program, now time.Time, opts Options) GateResult {
	gc := &gateContext{
		org:        org,
		prog:       p,
		now:        now,
		opts:       opts,
		class:      classify.ClassifyProgram(p.Title, p.ProgramName, p.Ministry),
		appType:    classify.DetectApplicationType(p.Title, p.Description),
		orgSector:  taxonomy.NormalizeSectorCode(org.IndustrySector),
		progSector: "",
	}
	gc.progSector = taxonomy.NormalizeSectorCode(gc.class.Industry)
	gc.eligibility = eligibility.Check(org, p, now)

	var reasons []string
	for _, rule := range gateRules {
		reasons = append(reasons, rule(gc)...)
	}

	return GateResult{
		Passed:           len(reasons) == 0,
		BlockReasons:     reasons,
		ApplicationType:  gc.appType,
		Eligibility:      gc.eligibility,
		EligibilityLevel: gc.eligibility.Level,
	}
}

func ruleLifecycle(gc *gateContext) []string {
	if gc.opts.IncludeExpired {
		return nil
	}
	var out []string
	if gc.prog.Status != catalog.StatusActive {
		out = append(out, BlockStatusInactive)
	}
	if gc.prog.IsExpired(gc.now) {
		out = append(out, BlockDeadlinePassed)
	}
	return out
}

func ruleApplicationType(gc *gateContext) []string {
	if classify.IsConsolidatedAnnouncement(gc.prog) || gc.appType == classify.TypeConsolidated {
		return []string{BlockConsolidated}
	}
	switch gc.appType {
	case classify.TypeDesignated:
		return []string{BlockDesignated}
	case classify.TypeDemandSurvey:
		return []string{BlockDemandSurvey}
	case classify.TypeInstitutionalOnly:
		if gc.org.Type != catalog.OrgResearchInstitute {
			return []string{BlockInstitutionalOnly}
		}
	}
	return nil
}

func ruleTrainingProgram(gc *gateContext) []string {
	if gc.org.Type != catalog.OrgCompany {
		return nil
	}
	if trainingTitleRe.MatchString(gc.prog.Title) && !strongRDTitleRe.MatchString(gc.prog.Title) {
		return []string{BlockTrainingProgram}
	}
	return nil
}

func ruleHospitalOnly(gc *gateContext) []string {
	if gc.org.Type == catalog.OrgResearchInstitute {
		return nil
	}
	if hospitalTitleRe.MatchString(gc.prog.Title) {
		return []string{BlockHospitalOnly}
	}
	return nil
}

func ruleOrgType(gc *gateContext) []string {
	if !gc.prog.HasTargetTypes() {
		return nil
	}
	for _, t := range gc.prog.TargetOrgTypes {
		if t == gc.org.Type {
			return nil
		}
	}
	return []string{BlockOrgTypeMismatch}
}

func ruleBusinessStructure(gc *gateContext) []string {
	// SME catalog scale/lifecycle codes share the field with plain
	// structure names; only the latter constrain legal structure.
	var structures []string
	for _, s := range gc.prog.TargetBusinessStructures {
		if !smeCodeRe.MatchString(s) {
			structures = append(structures, s)
		}
	}
	if len(structures) == 0 {
		return nil
	}
	if gc.org.BusinessStructure == "" {
		return []string{BlockStructureUnknown}
	}
	for _, s := range structures {
		if strings.EqualFold(s, gc.org.BusinessStructure) {
			return nil
		}
	}
	return []string{BlockStructureMismatch}
}

func ruleTRLRange(gc *gateContext) []string {
	if !gc.prog.HasTRLRequirement() {
		return nil
	}
	t, ok := gc.org.MatchingTRL()
	if !ok {
		return nil
	}
	lo, hi := 1, 9
	if gc.prog.MinTRL != nil {
		lo = *gc.prog.MinTRL
	}
	if gc.prog.MaxTRL != nil {
		hi = *gc.prog.MaxTRL
	}
	if gc.opts.IncludeExpired {
		lo -= trlRelaxation
		hi += trlRelaxation
	}
	if t < lo || t > hi {
		return []string{BlockTRLOutOfRange}
	}
	return nil
}

func ruleHardRequirements(gc *gateContext) []string {
	if gc.eligibility.Level == eligibility.Ineligible {
		return []string{BlockHardRequirementFailed}
	}
	return nil
}

func ruleSME(gc *gateContext) []string {
	if gc.prog.Ministry != smeMinistry {
		return nil
	}
	var out []string

	// General SME programs exclude large enterprises outright.
	if gc.org.CompanyScale == catalog.ScaleLarge {
		out = append(out, BlockSMEScale)
	}

	if smeStartupTitleRe.MatchString(gc.prog.Title) {
		switch gc.org.CompanyScale {
		case catalog.ScaleSmallMedium, catalog.ScaleMedium, catalog.ScaleLarge:
			out = append(out, BlockSMEStartupOnly)
		}
	}

	if smeRegionalRe.MatchString(gc.prog.Title) && !gc.org.HasNonMetropolitanLocation() {
		out = append(out, BlockSMERegionNonMetroOnly)
	}

	if reason := smeRegionMismatch(gc); reason != "" {
		out = append(out, reason)
	}
	return out
}

// smeRegionMismatch blocks region-named programs when none of the
// organization's locations fall in the named region set.
func smeRegionMismatch(gc *gateContext) string {
	kws := classify.RegionalKeywordsIn(gc.prog.Title)
	if len(kws) == 0 {
		return ""
	}
	required := map[catalog.RegionCode]bool{}
	for _, kw := range kws {
		set, ok := classify.RegionsForKeyword(kw)
		if !ok || len(set) == 0 {
			continue
		}
		for _, r := range set {
			required[r] = true
		}
	}
	if len(required) == 0 {
		return ""
	}
	for _, loc := range gc.org.Locations {
		if required[loc] {
			return ""
		}
	}
	return BlockSMERegionMismatch
}

func ruleExcludedDomain(gc *gateContext) []string {
	for _, excluded := range gc.org.ExcludedDomains {
		if taxonomy.NormalizeSectorCode(excluded) == gc.progSector && gc.progSector != "" {
			return []string{BlockExcludedDomain}
		}
	}
	return nil
}

// ruleIndustryFit applies the strict industry filter to active programs.
// SME programs without an industry-specific classification bypass it.
func ruleIndustryFit(gc *gateContext) []string {
	if gc.opts.IncludeExpired && gc.prog.IsExpired(gc.now) {
		return nil
	}
	if gc.prog.Ministry == smeMinistry {
		industrySpecific := gc.class.Industry != taxonomy.General && len(gc.class.MatchedKeywords) > 0
		if !industrySpecific {
			return nil
		}
	}

	if gc.orgSector == "" || gc.progSector == "" || gc.progSector == taxonomy.General {
		if gc.progSector == taxonomy.General {
			return nil
		}
		return []string{BlockUnknownSector}
	}

	rel := taxonomy.GetIndustryRelevance(gc.orgSector, gc.progSector)
	if rel < industryRelevanceFloor {
		return []string{BlockIndustryMismatch}
	}
	if rel < 1.0 {
		if hasOrgKeywordData(gc.org) && !anyKeywordOverlap(gc.org, gc.prog) {
			return []string{BlockCrossIndustryNoKeyword}
		}
	}
	return nil
}

func hasOrgKeywordData(org *catalog.Organization) bool {
	return len(org.KeyTechnologies) > 0 || len(org.TechnologySubDomains) > 0 || len(org.ResearchFocusAreas) > 0
}

// anyKeywordOverlap looks for a single overlap between the organization's
// keyword-like data and the program's keywords or title tokens, after
// stop-word filtering.
func anyKeywordOverlap(org *catalog.Organization, p *catalog.Program) bool {
	var orgWords []string
	orgWords = append(orgWords, org.KeyTechnologies...)
	orgWords = append(orgWords, org.TechnologySubDomains...)
	orgWords = append(orgWords, org.ResearchFocusAreas...)

	var progWords []string
	progWords = append(progWords, p.Keywords...)
	progWords = append(progWords, titleTokens(p.Title)...)

	for _, ow := range orgWords {
		no := taxonomy.Normalize(ow)
		if no == "" || stopWords[no] {
			continue
		}
		for _, pw := range progWords {
			np := taxonomy.Normalize(pw)
			if np == "" || stopWords[np] {
				continue
			}
			if strings.Contains(np, no) || strings.Contains(no, np) {
				return true
			}
		}
	}
	return false
}

var tokenSplitRe = regexp.MustCompile(`[\s\p{P}]+`)

// titleTokens splits a title into tokens of at least two characters.
func titleTokens(title string) []string {
	var out []string
	for _, tok := range tokenSplitRe.Split(title, -1) {
		if len([]rune(tok)) >= 2 {
			out = append(out, tok)
		}
	}
	return out
}
