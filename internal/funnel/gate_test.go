package funnel

import (
	"testing"
	"time"

	"grantmatch/internal/catalog"
)

var gateNow = time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int              { return &v }
func int64Ptr(v int64) *int64        { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func gateOrg() *catalog.Organization {
	return &catalog.Organization{
		ID:              "org-1",
		Type:            catalog.OrgCompany,
		IndustrySector:  "ICT",
		CompanyScale:    catalog.ScaleSmallMedium,
		KeyTechnologies: []string{"AI", "빅데이터", "클라우드"},
		TRL:             intPtr(6),
	}
}

func gateProgram() *catalog.Program {
	return &catalog.Program{
		ID:       "prog-1",
		AgencyID: "KEIT-001",
		Title:    "AI 데이터 플랫폼 기술개발사업",
		Ministry: "과학기술정보통신부",
		Keywords: []string{"AI", "데이터", "플랫폼"},
		Status:   catalog.StatusActive,
		Deadline: timePtr(gateNow.Add(20 * 24 * time.Hour)),
	}
}

func blocked(t *testing.T, res GateResult, reason string) {
	t.Helper()
	if res.Passed {
		t.Fatalf("expected block %s, gate passed", reason)
	}
	for _, r := range res.BlockReasons {
		if r == reason {
			return
		}
	}
	t.Fatalf("reason %s missing from %v", reason, res.BlockReasons)
}

func TestEvaluateGatePasses(t *testing.T) {
	res := EvaluateGate(gateOrg(), gateProgram(), gateNow, Options{})
	if !res.Passed {
		t.Fatalf("gate blocked a clean pairing: %v", res.BlockReasons)
	}
}

func TestEvaluateGateLifecycle(t *testing.T) {
	p := gateProgram()
	p.Deadline = timePtr(gateNow.Add(-24 * time.Hour))
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockDeadlinePassed)

	p = gateProgram()
	p.Status = catalog.StatusClosed
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockStatusInactive)

	// Opting in rescues both.
	p.Deadline = timePtr(gateNow.Add(-24 * time.Hour))
	if res := EvaluateGate(gateOrg(), p, gateNow, Options{IncludeExpired: true}); !res.Passed {
		t.Fatalf("includeExpired must bypass lifecycle: %v", res.BlockReasons)
	}
}

func TestEvaluateGateApplicationTypes(t *testing.T) {
	p := gateProgram()
	p.Title = "2026년 지정과제 AI 플랫폼 기술개발"
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockDesignated)

	p = gateProgram()
	p.Title = "AI 플랫폼 기술수요조사 안내"
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockDemandSurvey)

	// Structural consolidated detection: no deadline, start, or budget.
	p = gateProgram()
	p.Deadline = nil
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockConsolidated)

	p = gateProgram()
	p.Description = "출연연구기관 한정 모집"
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockInstitutionalOnly)

	org := gateOrg()
	org.Type = catalog.OrgResearchInstitute
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("research institute blocked from institutional call: %v", res.BlockReasons)
	}
}

func TestEvaluateGateTrainingProgram(t *testing.T) {
	p := gateProgram()
	p.Title = "AI 전문인력 양성과정 모집"
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockTrainingProgram)

	// A strong R&D marker in the title overrides the training words.
	p.Title = "AI 역량강화 기술개발사업"
	res := EvaluateGate(gateOrg(), p, gateNow, Options{})
	for _, r := range res.BlockReasons {
		if r == BlockTrainingProgram {
			t.Fatal("R&D title must not count as training")
		}
	}
}

func TestEvaluateGateHospitalOnly(t *testing.T) {
	p := gateProgram()
	p.Title = "상급종합병원 AI 의사과학자 양성 기술개발"
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockHospitalOnly)
}

func TestEvaluateGateOrgType(t *testing.T) {
	p := gateProgram()
	p.TargetOrgTypes = []catalog.OrgType{catalog.OrgUniversity}
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockOrgTypeMismatch)

	p.TargetOrgTypes = []catalog.OrgType{catalog.OrgUniversity, catalog.OrgCompany}
	if res := EvaluateGate(gateOrg(), p, gateNow, Options{}); !res.Passed {
		t.Fatalf("listed org type blocked: %v", res.BlockReasons)
	}
}

func TestEvaluateGateBusinessStructure(t *testing.T) {
	p := gateProgram()
	p.TargetBusinessStructures = []string{"주식회사"}
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockStructureUnknown)

	org := gateOrg()
	org.BusinessStructure = "유한회사"
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockStructureMismatch)

	org.BusinessStructure = "주식회사"
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("matching structure blocked: %v", res.BlockReasons)
	}

	// SME scale and lifecycle codes sharing the field never constrain
	// legal structure.
	p.TargetBusinessStructures = []string{"CC10", "LC02"}
	org.BusinessStructure = ""
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("SME codes treated as structures: %v", res.BlockReasons)
	}
}

func TestEvaluateGateTRLRange(t *testing.T) {
	p := gateProgram()
	p.MinTRL = intPtr(4)
	p.MaxTRL = intPtr(7)
	org := gateOrg()
	org.TRL = intPtr(2)
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockTRLOutOfRange)

	// Relaxed by 3 in expired mode: 2 >= 4-3.
	if res := EvaluateGate(org, p, gateNow, Options{IncludeExpired: true}); !res.Passed {
		t.Fatalf("relaxed TRL still blocked: %v", res.BlockReasons)
	}

	// Target TRL takes precedence over current.
	org.TargetResearchTRL = intPtr(5)
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("target TRL in range blocked: %v", res.BlockReasons)
	}
}

func TestEvaluateGateHardRequirements(t *testing.T) {
	p := gateProgram()
	p.RequiredCertifications = []string{"이노비즈"}
	res := EvaluateGate(gateOrg(), p, gateNow, Options{})
	blocked(t, res, BlockHardRequirementFailed)
	if len(res.Eligibility.HardFailures) == 0 {
		t.Fatal("hard failure detail missing")
	}
}

func TestEvaluateGateSMERules(t *testing.T) {
	p := gateProgram()
	p.Title = "중소기업 혁신바우처 지원"
	p.Ministry = "중소벤처기업부"

	org := gateOrg()
	org.CompanyScale = catalog.ScaleLarge
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockSMEScale)

	p.Title = "창업성장 기술개발사업 TIPS 과제"
	org.CompanyScale = catalog.ScaleSmallMedium
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockSMEStartupOnly)

	org.CompanyScale = catalog.ScaleStartup
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("startup blocked from startup call: %v", res.BlockReasons)
	}

	p.Title = "지역혁신 선도기업 기술개발"
	org.Locations = []catalog.RegionCode{catalog.RegionSeoul}
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockSMERegionNonMetroOnly)

	org.Locations = []catalog.RegionCode{catalog.RegionBusan}
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("non-metro org blocked from regional call: %v", res.BlockReasons)
	}

	// A region named in the title requires a location in that region.
	p.Title = "부산 지역특화 산업 기술개발"
	org.Locations = []catalog.RegionCode{catalog.RegionGangwon}
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockSMERegionMismatch)
}

func TestEvaluateGateExcludedDomain(t *testing.T) {
	org := gateOrg()
	org.IndustrySector = "바이오"
	org.KeyTechnologies = []string{"신약", "임상"}
	org.ExcludedDomains = []string{"BIO_HEALTH"}
	p := gateProgram()
	p.Title = "신약 임상 플랫폼 기술개발"
	p.Ministry = "보건복지부"
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockExcludedDomain)
}

func TestEvaluateGateIndustryMismatch(t *testing.T) {
	p := gateProgram()
	p.Title = "치매의료기술연구개발사업"
	p.Ministry = "보건복지부"
	p.Keywords = nil
	blocked(t, EvaluateGate(gateOrg(), p, gateNow, Options{}), BlockIndustryMismatch)
}

func TestEvaluateGateUnknownSector(t *testing.T) {
	org := gateOrg()
	org.IndustrySector = ""
	blocked(t, EvaluateGate(org, gateProgram(), gateNow, Options{}), BlockUnknownSector)
}

func TestEvaluateGateCrossIndustryKeyword(t *testing.T) {
	// Energy to environment sits at 0.6 relevance; the keyword overlap
	// check decides.
	org := gateOrg()
	org.IndustrySector = "에너지"
	org.KeyTechnologies = []string{"수소", "태양광"}
	p := gateProgram()
	p.Title = "폐자원 재활용 공정 기술개발"
	p.Ministry = "환경부"
	p.Keywords = nil
	blocked(t, EvaluateGate(org, p, gateNow, Options{}), BlockCrossIndustryNoKeyword)

	org.KeyTechnologies = []string{"재활용", "수소"}
	if res := EvaluateGate(org, p, gateNow, Options{}); !res.Passed {
		t.Fatalf("overlapping keyword still blocked: %v", res.BlockReasons)
	}
}
