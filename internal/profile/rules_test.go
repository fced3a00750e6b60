package profile

import (
	"encoding/json"
	"testing"

	"grantmatch/internal/catalog"
	"grantmatch/internal/taxonomy"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestGenerateRuleProfileScaleCodes(t *testing.T) {
	p := &catalog.Program{TargetBusinessStructures: []string{"CC50", "LC01"}}
	prof := GenerateRuleProfile(p)

	if len(prof.PreferredScales) != 1 || prof.PreferredScales[0] != catalog.ScaleStartup {
		t.Fatalf("preferredScales = %v", prof.PreferredScales)
	}
	if prof.BusinessAge == nil || prof.BusinessAge.PreferredStage != "STARTUP_FOCUSED" {
		t.Fatalf("businessAge = %+v", prof.BusinessAge)
	}
	if prof.BusinessAge.MaxYears == nil || *prof.BusinessAge.MaxYears != 7 {
		t.Fatalf("LC01 must imply max 7 years, got %+v", prof.BusinessAge)
	}
	if prof.DimensionConfidence["preferredScales"] != ConfidenceHigh {
		t.Fatalf("scale dimension confidence %v", prof.DimensionConfidence)
	}
}

func TestGenerateRuleProfileTRLStage(t *testing.T) {
	p := &catalog.Program{MinTRL: intPtr(4), MaxTRL: intPtr(8)}
	prof := GenerateRuleProfile(p)
	if prof.TRLRange == nil || *prof.TRLRange.IdealCenter != 6 {
		t.Fatalf("trlRange = %+v", prof.TRLRange)
	}
	if prof.ProgramStage != StageAppliedResearch {
		t.Fatalf("center 6 must infer applied research, got %s", prof.ProgramStage)
	}
	if prof.DimensionConfidence["programStage"] != ConfidenceInferred {
		t.Fatalf("inferred stage must carry INFERRED, got %v", prof.DimensionConfidence["programStage"])
	}

	// Open-ended min only: center (7+9)/2 = 8 is commercialization.
	prof = GenerateRuleProfile(&catalog.Program{MinTRL: intPtr(7)})
	if *prof.TRLRange.IdealCenter != 8 || prof.ProgramStage != StageCommercialization {
		t.Fatalf("min-only TRL: center %v stage %s", *prof.TRLRange.IdealCenter, prof.ProgramStage)
	}

	// No TRL fields, no stage inference.
	prof = GenerateRuleProfile(&catalog.Program{})
	if prof.TRLRange != nil || prof.ProgramStage != "" {
		t.Fatalf("no TRL requirement must leave range and stage unset: %+v", prof)
	}
}

func TestGenerateRuleProfileFinancial(t *testing.T) {
	p := &catalog.Program{
		MinRevenueKRW:         int64Ptr(1_000_000_000),
		RequiredInvestmentKRW: int64Ptr(500_000_000),
	}
	prof := GenerateRuleProfile(p)
	if prof.FinancialProfile == nil {
		t.Fatal("financialProfile unset")
	}
	if *prof.FinancialProfile.MinRevenueEok != 10 {
		t.Fatalf("minRevenueEok = %d, want 10", *prof.FinancialProfile.MinRevenueEok)
	}
	if prof.FinancialProfile.ExpectsPriorInvestment == nil || !*prof.FinancialProfile.ExpectsPriorInvestment {
		t.Fatalf("investment requirement must set expectsPriorInvestment: %+v", prof.FinancialProfile)
	}
}

func TestGenerateRuleProfileOperatingYearsOverrideLifecycle(t *testing.T) {
	// An explicit operating-years bound beats the lifecycle-code band.
	p := &catalog.Program{
		TargetBusinessStructures: []string{"LC01"},
		MaxOperatingYears:        intPtr(5),
		RequiredOperatingYears:   intPtr(1),
	}
	prof := GenerateRuleProfile(p)
	if prof.BusinessAge == nil || *prof.BusinessAge.MaxYears != 5 || *prof.BusinessAge.MinYears != 1 {
		t.Fatalf("businessAge = %+v", prof.BusinessAge)
	}
	if prof.BusinessAge.PreferredStage != "STARTUP_FOCUSED" {
		t.Fatalf("lifecycle stage must survive the merge: %+v", prof.BusinessAge)
	}
}

func TestGenerateRuleProfileRegion(t *testing.T) {
	prof := GenerateRuleProfile(&catalog.Program{Title: "부산 지역 스마트공장 지원사업"})
	if prof.RegionRequirement != RegionSpecificRegions || len(prof.SpecificRegions) == 0 {
		t.Fatalf("region = %s %v", prof.RegionRequirement, prof.SpecificRegions)
	}

	prof = GenerateRuleProfile(&catalog.Program{Title: "비수도권 소재 기업 기술개발 지원"})
	if prof.RegionRequirement != RegionNonMetropolitan {
		t.Fatalf("region = %s", prof.RegionRequirement)
	}

	prof = GenerateRuleProfile(&catalog.Program{Title: "AI 플랫폼 기술개발"})
	if prof.RegionRequirement != "" {
		t.Fatalf("no regional keyword must leave requirement empty: %s", prof.RegionRequirement)
	}
}

func TestGenerateRuleProfileDomain(t *testing.T) {
	p := &catalog.Program{
		Title:    "AI 데이터 플랫폼 기술개발",
		Ministry: "과학기술정보통신부",
	}
	prof := GenerateRuleProfile(p)
	if prof.PrimaryDomain != taxonomy.ICT {
		t.Fatalf("primaryDomain = %s", prof.PrimaryDomain)
	}
	// Classifier confidence caps at 1.0 here, so the dimension is HIGH.
	if prof.DimensionConfidence["primaryDomain"] != ConfidenceHigh {
		t.Fatalf("primaryDomain confidence %v", prof.DimensionConfidence["primaryDomain"])
	}
	// No explicit keywords: matched classifier keywords at MEDIUM.
	if len(prof.TechnologyKeywords) == 0 || prof.DimensionConfidence["technologyKeywords"] != ConfidenceMedium {
		t.Fatalf("keywords = %v conf %v", prof.TechnologyKeywords, prof.DimensionConfidence["technologyKeywords"])
	}

	p.Keywords = []string{"인공지능", "빅데이터"}
	prof = GenerateRuleProfile(p)
	if prof.DimensionConfidence["technologyKeywords"] != ConfidenceHigh {
		t.Fatalf("explicit keywords must be HIGH, got %v", prof.DimensionConfidence["technologyKeywords"])
	}
	if len(prof.TechnologyKeywords) != 2 {
		t.Fatalf("keywords = %v", prof.TechnologyKeywords)
	}
}

func TestGenerateRuleProfileVersionAndConfidence(t *testing.T) {
	prof := GenerateRuleProfile(&catalog.Program{})
	if prof.Version != SchemaVersion || prof.GeneratedBy != GeneratedByRule {
		t.Fatalf("version %q generatedBy %q", prof.Version, prof.GeneratedBy)
	}
	if prof.Confidence != 0.1 {
		t.Fatalf("empty program confidence = %v, want floor 0.1", prof.Confidence)
	}

	rich := &catalog.Program{
		TargetOrgTypes:           []catalog.OrgType{catalog.OrgCompany},
		TargetBusinessStructures: []string{"CC50", "LC01"},
		MinTRL:                   intPtr(4),
		MaxTRL:                   intPtr(6),
		RequiredCertifications:   []string{"이노비즈"},
		MinRevenueKRW:            int64Ptr(1_000_000_000),
		Title:                    "AI 데이터 플랫폼 기술개발",
		Ministry:                 "과학기술정보통신부",
	}
	prof = GenerateRuleProfile(rich)
	if prof.Confidence <= 0.1 || prof.Confidence > 1 {
		t.Fatalf("rich program confidence = %v", prof.Confidence)
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	doc := json.RawMessage(`{"version":"0.9"}`)
	if _, err := Parse(doc); err == nil {
		t.Fatal("wrong schema version must be rejected")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatal("empty document must be rejected")
	}
	if _, err := Parse(json.RawMessage("null")); err == nil {
		t.Fatal("null document must be rejected")
	}
	if _, err := Parse(json.RawMessage(`{"version":"1.0"}`)); err != nil {
		t.Fatalf("current version rejected: %v", err)
	}
}

func TestFromProgram(t *testing.T) {
	p := &catalog.Program{}
	if FromProgram(p) != nil {
		t.Fatal("program without a profile must yield nil")
	}
	p.IdealProfile = json.RawMessage(`{"version":"0.9"}`)
	if FromProgram(p) != nil {
		t.Fatal("stale profile must yield nil")
	}
	p.IdealProfile = json.RawMessage(`{"version":"1.0","primaryDomain":"ICT"}`)
	prof := FromProgram(p)
	if prof == nil || prof.PrimaryDomain != taxonomy.ICT {
		t.Fatalf("profile = %+v", prof)
	}
}
