package profile

import (
	"grantmatch/internal/catalog"
	"grantmatch/internal/classify"
)

// smeScaleCodes translates SME catalog company-scale codes into scale
// enums. The codes come through on targetBusinessStructures for SME
// announcements.
var smeScaleCodes = map[string][]catalog.CompanyScale{
	"CC10": {catalog.ScaleSmallMedium},
	"CC20": {catalog.ScaleSmall},
	"CC30": {catalog.ScaleMedium},
	"CC40": {catalog.ScaleMicro},
	"CC50": {catalog.ScaleStartup},
}

// smeLifecycleCodes translates SME lifecycle codes into a preferred
// business stage with an implied age band.
var smeLifecycleCodes = map[string]struct {
	stage    string
	maxYears int
}{
	"LC01": {stage: "STARTUP_FOCUSED", maxYears: 7},
	"LC02": {stage: "GROWTH", maxYears: 10},
	"LC03": {stage: "SCALEUP", maxYears: 0},
	"LC04": {stage: "REESTABLISHMENT", maxYears: 0},
}

// GenerateRuleProfile builds the rule-tier IAP from structured program
// fields only; it never performs I/O. Every dimension it sets carries a
// per-dimension confidence of HIGH, MEDIUM, or INFERRED.
func GenerateRuleProfile(p *catalog.Program) *Profile {
	prof := &Profile{
		Version:     SchemaVersion,
		GeneratedBy: GeneratedByRule,
	}

	if len(p.TargetOrgTypes) > 0 {
		prof.OrganizationTypes = append([]catalog.OrgType(nil), p.TargetOrgTypes...)
		prof.setDimension("organizationTypes", ConfidenceHigh)
	}

	applyScaleCodes(p, prof)
	applyTRL(p, prof)
	applyCertifications(p, prof)
	applyFinancial(p, prof)
	applyBusinessAge(p, prof)
	applyRegion(p, prof)
	applyDomain(p, prof)

	if p.RequiresResearchInstitute {
		v := true
		prof.RequiresResearchInstitute = &v
		prof.setDimension("requiresResearchInstitute", ConfidenceHigh)
	}

	prof.Confidence = overallConfidence(prof.DimensionConfidence)
	return prof
}

func applyScaleCodes(p *catalog.Program, prof *Profile) {
	var preferred []catalog.CompanyScale
	for _, code := range p.TargetBusinessStructures {
		if scales, ok := smeScaleCodes[code]; ok {
			preferred = append(preferred, scales...)
		}
		if lc, ok := smeLifecycleCodes[code]; ok {
			age := &BusinessAge{PreferredStage: lc.stage}
			if lc.maxYears > 0 {
				max := lc.maxYears
				age.MaxYears = &max
			}
			prof.BusinessAge = age
			prof.setDimension("businessAge", ConfidenceHigh)
		}
	}
	if len(preferred) > 0 {
		prof.PreferredScales = preferred
		prof.setDimension("preferredScales", ConfidenceHigh)
	}
}

func applyTRL(p *catalog.Program, prof *Profile) {
	if !p.HasTRLRequirement() {
		return
	}
	r := &TRLRange{}
	lo, hi := 1, 9
	if p.MinTRL != nil {
		v := *p.MinTRL
		r.Min = &v
		lo = v
	}
	if p.MaxTRL != nil {
		v := *p.MaxTRL
		r.Max = &v
		hi = v
	}
	center := (lo + hi) / 2
	r.IdealCenter = &center
	prof.TRLRange = r
	prof.setDimension("trlRange", ConfidenceHigh)

	// Program stage is inferred from the TRL midpoint: 1-3 basic, 4-6
	// applied, 7-9 commercialization.
	switch {
	case center <= 3:
		prof.ProgramStage = StageBasicResearch
	case center <= 6:
		prof.ProgramStage = StageAppliedResearch
	default:
		prof.ProgramStage = StageCommercialization
	}
	prof.setDimension("programStage", ConfidenceInferred)
}

func applyCertifications(p *catalog.Program, prof *Profile) {
	if len(p.RequiredCertifications) > 0 {
		prof.RequiredCertifications = append([]string(nil), p.RequiredCertifications...)
		prof.setDimension("requiredCertifications", ConfidenceHigh)
	}
	if len(p.PreferredCertifications) > 0 {
		prof.PreferredCertifications = append([]string(nil), p.PreferredCertifications...)
		prof.setDimension("preferredCertifications", ConfidenceHigh)
	}
}

func applyFinancial(p *catalog.Program, prof *Profile) {
	var fin FinancialProfile
	set := false
	if p.MinRevenueKRW != nil {
		eok := *p.MinRevenueKRW / 100_000_000
		fin.MinRevenueEok = &eok
		set = true
	}
	if p.RequiredInvestmentKRW != nil {
		v := true
		fin.ExpectsPriorInvestment = &v
		set = true
	}
	if set {
		prof.FinancialProfile = &fin
		prof.setDimension("financialProfile", ConfidenceHigh)
	}
}

func applyBusinessAge(p *catalog.Program, prof *Profile) {
	if p.RequiredOperatingYears == nil && p.MaxOperatingYears == nil {
		return
	}
	age := prof.BusinessAge
	if age == nil {
		age = &BusinessAge{}
	}
	if p.RequiredOperatingYears != nil {
		v := *p.RequiredOperatingYears
		age.MinYears = &v
	}
	if p.MaxOperatingYears != nil {
		v := *p.MaxOperatingYears
		age.MaxYears = &v
	}
	prof.BusinessAge = age
	prof.setDimension("businessAge", ConfidenceHigh)
}

func applyRegion(p *catalog.Program, prof *Profile) {
	kws := classify.RegionalKeywordsIn(p.Title)
	if len(kws) == 0 {
		return
	}
	var regions []catalog.RegionCode
	nonMetro := false
	for _, kw := range kws {
		set, ok := classify.RegionsForKeyword(kw)
		if !ok {
			continue
		}
		if len(set) == 0 {
			nonMetro = true
			continue
		}
		regions = append(regions, set...)
	}
	switch {
	case len(regions) > 0:
		prof.RegionRequirement = RegionSpecificRegions
		prof.SpecificRegions = regions
	case nonMetro:
		prof.RegionRequirement = RegionNonMetropolitan
	default:
		return
	}
	prof.setDimension("regionRequirement", ConfidenceInferred)
}

func applyDomain(p *catalog.Program, prof *Profile) {
	cls := classify.ClassifyProgram(p.Title, p.ProgramName, p.Ministry)
	if cls.Industry != "" && cls.Score > 0 {
		prof.PrimaryDomain = cls.Industry
		conf := ConfidenceMedium
		if cls.Confidence >= 0.8 {
			conf = ConfidenceHigh
		}
		prof.setDimension("primaryDomain", conf)
	}
	if len(p.Keywords) > 0 {
		prof.TechnologyKeywords = append([]string(nil), p.Keywords...)
		prof.setDimension("technologyKeywords", ConfidenceHigh)
	} else if len(cls.MatchedKeywords) > 0 {
		prof.TechnologyKeywords = cls.MatchedKeywords
		prof.setDimension("technologyKeywords", ConfidenceMedium)
	}
}
