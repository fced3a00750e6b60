// Package proximity scores the distance between an organization and an
// ideal-applicant profile across seven weighted dimensions. Scores are
// deterministic; rounding is to one decimal per dimension (math.Round
// convention, documented in DESIGN.md).
package proximity

import (
	"fmt"
	"math"
	"strings"
	"time"

	"grantmatch/internal/catalog"
	"grantmatch/internal/profile"
	"grantmatch/internal/taxonomy"
)

// AlgorithmVersion is stamped on every result.
const AlgorithmVersion = "v5.0-ideal-profile"

// Dimension weights; they sum to 100.
const (
	WeightDomainFit       = 30.0
	WeightTechnologyFit   = 20.0
	WeightOrganizationFit = 15.0
	WeightCapabilityFit   = 15.0
	WeightComplianceFit   = 10.0
	WeightFinancialFit    = 5.0
	WeightDeadlineUrgency = 5.0
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Gap is one identified shortfall between the organization and the
// profile. Blockers come from compliance; soft gaps from any dimension
// scoring below 30% of its weight.
type Gap struct {
	Dimension   string   `json:"dimension"`
	Severity    Severity `json:"severity"`
	IsBlocker   bool     `json:"isBlocker"`
	Description string   `json:"description"`
}

// DimensionScore is one scored dimension with its Korean explanation.
type DimensionScore struct {
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

// Result is the full proximity evaluation.
type Result struct {
	Total            float64        `json:"total"`
	DomainFit        DimensionScore `json:"domainFit"`
	TechnologyFit    DimensionScore `json:"technologyFit"`
	OrganizationFit  DimensionScore `json:"organizationFit"`
	CapabilityFit    DimensionScore `json:"capabilityFit"`
	ComplianceFit    DimensionScore `json:"complianceFit"`
	FinancialFit     DimensionScore `json:"financialFit"`
	DeadlineUrgency  DimensionScore `json:"deadlineUrgency"`
	Gaps             []Gap          `json:"gaps,omitempty"`
	Summary          string         `json:"summary"`
	AlgorithmVersion string         `json:"algorithmVersion"`
}

// Score evaluates org against the profile. deadline may be nil; now
// anchors all time arithmetic so results stay reproducible.
func Score(org *catalog.Organization, iap *profile.Profile, deadline *time.Time, now time.Time) Result {
	res := Result{AlgorithmVersion: AlgorithmVersion}
	var gaps []Gap

	res.DomainFit = scoreDomainFit(org, iap)
	res.TechnologyFit = scoreTechnologyFit(org, iap)
	res.OrganizationFit = scoreOrganizationFit(org, iap, now)
	res.CapabilityFit = scoreCapabilityFit(org, iap)
	res.ComplianceFit, gaps = scoreComplianceFit(org, iap)
	res.FinancialFit = scoreFinancialFit(org, iap)
	res.DeadlineUrgency = scoreDeadlineUrgency(deadline, now)

	res.Total = round1(res.DomainFit.Score + res.TechnologyFit.Score +
		res.OrganizationFit.Score + res.CapabilityFit.Score +
		res.ComplianceFit.Score + res.FinancialFit.Score +
		res.DeadlineUrgency.Score)

	gaps = append(gaps, softGaps(&res)...)
	res.Gaps = gaps
	res.Summary = buildSummary(&res)
	return res
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// orgKeywordCorpus is the text pool capability and keyword overlap checks
// run against.
func orgKeywordCorpus(org *catalog.Organization) []string {
	var corpus []string
	corpus = append(corpus, org.KeyTechnologies...)
	corpus = append(corpus, org.TechnologySubDomains...)
	corpus = append(corpus, org.ResearchFocusAreas...)
	if org.PrimaryBusinessDomain != "" {
		corpus = append(corpus, org.PrimaryBusinessDomain)
	}
	return corpus
}

// orgCapabilityCorpus is the wider pool for expected-capability matching.
func orgCapabilityCorpus(org *catalog.Organization) []string {
	corpus := orgKeywordCorpus(org)
	corpus = append(corpus, org.Certifications...)
	corpus = append(corpus, org.GovernmentCertifications...)
	corpus = append(corpus, org.CommercializationCapabilities...)
	if org.Description != "" {
		corpus = append(corpus, org.Description)
	}
	return corpus
}

// matchFraction returns the fraction of targets that appear in the corpus
// by normalized substring containment in either direction.
func matchFraction(targets, corpus []string) float64 {
	if len(targets) == 0 {
		return 0
	}
	var normCorpus []string
	for _, c := range corpus {
		if n := taxonomy.Normalize(c); n != "" {
			normCorpus = append(normCorpus, n)
		}
	}
	hits := 0
	for _, t := range targets {
		nt := taxonomy.Normalize(t)
		if nt == "" {
			continue
		}
		for _, nc := range normCorpus {
			if strings.Contains(nc, nt) || strings.Contains(nt, nc) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(targets))
}

func scoreDomainFit(org *catalog.Organization, iap *profile.Profile) DimensionScore {
	corpus := orgKeywordCorpus(org)

	// Primary domain: relevance x 15. A profile without a primary domain
	// gets partial credit; an unconstrained program is not a bad match.
	var primary float64
	if iap.PrimaryDomain != "" {
		primary = taxonomy.GetIndustryRelevance(org.IndustrySector, iap.PrimaryDomain) * 15
	} else {
		primary = 9
	}

	var sub float64
	if len(iap.SubDomains) > 0 {
		sub = matchFraction(iap.SubDomains, corpus) * 10
	} else {
		sub = 6
	}

	var kw float64
	if len(iap.TechnologyKeywords) > 0 {
		kw = matchFraction(iap.TechnologyKeywords, corpus) * 5
	} else {
		kw = 3
	}

	score := round1(primary + sub + kw)
	return DimensionScore{
		Score:       score,
		Weight:      WeightDomainFit,
		Explanation: fmt.Sprintf("도메인 적합도 %.1f/30 (주력분야 %.1f, 세부분야 %.1f, 기술키워드 %.1f)", score, round1(primary), round1(sub), round1(kw)),
	}
}

func scoreTechnologyFit(org *catalog.Organization, iap *profile.Profile) DimensionScore {
	var center *int
	if iap.TRLRange != nil {
		center = iap.TRLRange.IdealCenter
	}

	var trlScore float64
	switch {
	case center == nil || org.TRL == nil:
		trlScore = 6
	default:
		d := abs(*org.TRL - *center)
		switch {
		case d == 0:
			trlScore = 12
		case d <= 1:
			trlScore = 10
		case d <= 2:
			trlScore = 7
		case d <= 3:
			trlScore = 4
		default:
			trlScore = 1
		}
	}

	var targetBonus float64
	if center != nil && org.TargetResearchTRL != nil && abs(*org.TargetResearchTRL-*center) <= 1 {
		targetBonus = 2
	}

	var rdBonus float64
	if org.RDExperience && iap.ProgramStage.IsResearchStage() {
		rdBonus = 4
	}

	var kwBonus float64
	if len(iap.TechnologyKeywords) > 0 {
		kwBonus = matchFraction(iap.TechnologyKeywords, org.KeyTechnologies) * 4
	}

	score := trlScore + targetBonus + rdBonus + kwBonus
	if score > WeightTechnologyFit {
		score = WeightTechnologyFit
	}
	score = round1(score)
	return DimensionScore{
		Score:       score,
		Weight:      WeightTechnologyFit,
		Explanation: fmt.Sprintf("기술 적합도 %.1f/20 (TRL %.1f, 목표TRL보너스 %.1f, R&D경험 %.1f, 키워드 %.1f)", score, trlScore, targetBonus, rdBonus, round1(kwBonus)),
	}
}

func scoreOrganizationFit(org *catalog.Organization, iap *profile.Profile, now time.Time) DimensionScore {
	// Scale: preferred 6, acceptable 4, otherwise proximity on the
	// ordered ladder times 3.
	var scale float64
	switch {
	case org.CompanyScale == "":
		scale = 3
	case containsScale(iap.PreferredScales, org.CompanyScale):
		scale = 6
	case containsScale(iap.AcceptableScales, org.CompanyScale):
		scale = 4
	case len(iap.PreferredScales) == 0 && len(iap.AcceptableScales) == 0:
		scale = 4
	default:
		scale = math.Round(scaleProximity(org.CompanyScale, nearestScale(iap, org.CompanyScale)) * 3)
	}

	// Business age: inside the band scores 5, decaying linearly by years
	// of overshoot or undershoot.
	var age float64
	switch {
	case iap.BusinessAge == nil || (iap.BusinessAge.MinYears == nil && iap.BusinessAge.MaxYears == nil):
		age = 3
	default:
		years, ok := org.OperatingYears(now)
		if !ok {
			age = 2
		} else {
			over := 0
			if iap.BusinessAge.MinYears != nil && years < *iap.BusinessAge.MinYears {
				over = *iap.BusinessAge.MinYears - years
			}
			if iap.BusinessAge.MaxYears != nil && years > *iap.BusinessAge.MaxYears {
				over = years - *iap.BusinessAge.MaxYears
			}
			age = 5 - float64(over)
			if age < 0 {
				age = 0
			}
		}
	}

	var orgType float64
	switch {
	case len(iap.OrganizationTypes) == 0:
		orgType = 3
	case containsOrgType(iap.OrganizationTypes, org.Type):
		orgType = 4
	default:
		orgType = 0
	}

	score := scale + age + orgType
	if score > WeightOrganizationFit {
		score = WeightOrganizationFit
	}
	score = round1(score)
	return DimensionScore{
		Score:       score,
		Weight:      WeightOrganizationFit,
		Explanation: fmt.Sprintf("조직 적합도 %.1f/15 (규모 %.1f, 업력 %.1f, 기관유형 %.1f)", score, scale, age, orgType),
	}
}

func scoreCapabilityFit(org *catalog.Organization, iap *profile.Profile) DimensionScore {
	var score float64
	if len(iap.ExpectedCapabilities) > 0 {
		score = matchFraction(iap.ExpectedCapabilities, orgCapabilityCorpus(org)) * WeightCapabilityFit
	} else {
		score = 9
	}
	score = round1(score)
	return DimensionScore{
		Score:       score,
		Weight:      WeightCapabilityFit,
		Explanation: fmt.Sprintf("역량 적합도 %.1f/15 (기대역량 %d건 대비)", score, len(iap.ExpectedCapabilities)),
	}
}

func scoreComplianceFit(org *catalog.Organization, iap *profile.Profile) (DimensionScore, []Gap) {
	score := WeightComplianceFit
	var gaps []Gap
	var notes []string

	if len(iap.RequiredCertifications) > 0 {
		held := map[string]bool{}
		for _, c := range org.Certifications {
			held[taxonomy.Normalize(c)] = true
		}
		for _, c := range org.GovernmentCertifications {
			held[taxonomy.Normalize(c)] = true
		}
		deducted := 0.0
		for _, c := range iap.RequiredCertifications {
			if held[taxonomy.Normalize(c)] {
				continue
			}
			// Each missing certification is a blocker; the score
			// deduction caps at 5.
			gaps = append(gaps, Gap{
				Dimension:   "complianceFit",
				Severity:    SeverityHigh,
				IsBlocker:   true,
				Description: fmt.Sprintf("필수 인증 미보유: %s", c),
			})
			if deducted < 5 {
				deducted += 5
				if deducted > 5 {
					deducted = 5
				}
			}
		}
		score -= deducted
		if deducted > 0 {
			notes = append(notes, "필수 인증 미충족")
		}
	}

	if iap.RequiresResearchInstitute != nil && *iap.RequiresResearchInstitute && !org.HasResearchInstitute {
		score -= 3
		notes = append(notes, "기업부설연구소 없음")
	}

	if len(iap.OrganizationTypes) > 0 && !containsOrgType(iap.OrganizationTypes, org.Type) {
		score -= 2
		notes = append(notes, "기관유형 불일치")
	}

	if score < 0 {
		score = 0
	}
	score = round1(score)
	expl := fmt.Sprintf("자격요건 적합도 %.1f/10", score)
	if len(notes) > 0 {
		expl += " (" + strings.Join(notes, ", ") + ")"
	}
	return DimensionScore{Score: score, Weight: WeightComplianceFit, Explanation: expl}, gaps
}

func scoreFinancialFit(org *catalog.Organization, iap *profile.Profile) DimensionScore {
	fin := iap.FinancialProfile

	var revenue float64
	switch {
	case fin == nil || fin.MinRevenueEok == nil:
		revenue = 2
	default:
		upper, ok := org.RevenueRange.UpperBoundEok()
		if ok && upper >= *fin.MinRevenueEok {
			revenue = 3
		}
	}

	var matching float64
	switch {
	case fin == nil || fin.RequiresMatchingFund == nil || !*fin.RequiresMatchingFund:
		matching = 1
	case org.RevenueRange != catalog.RevenueUnknown && org.RevenueRange != catalog.RevenueNone:
		matching = 2
	}

	score := revenue + matching
	if score > WeightFinancialFit {
		score = WeightFinancialFit
	}
	score = round1(score)
	return DimensionScore{
		Score:       score,
		Weight:      WeightFinancialFit,
		Explanation: fmt.Sprintf("재무 적합도 %.1f/5 (매출 %.1f, 대응자금 %.1f)", score, revenue, matching),
	}
}

func scoreDeadlineUrgency(deadline *time.Time, now time.Time) DimensionScore {
	var score float64
	var label string
	switch {
	case deadline == nil:
		score, label = 2, "마감일 미정"
	case deadline.Before(now):
		score, label = 0, "마감 경과"
	default:
		days := int(deadline.Sub(now).Hours() / 24)
		switch {
		case days <= 7:
			score, label = 5, "마감 임박 (7일 이내)"
		case days <= 14:
			score, label = 4, "마감 14일 이내"
		case days <= 30:
			score, label = 3, "마감 30일 이내"
		case days <= 60:
			score, label = 2, "마감 60일 이내"
		default:
			score, label = 1, "마감 여유"
		}
	}
	return DimensionScore{
		Score:       score,
		Weight:      WeightDeadlineUrgency,
		Explanation: fmt.Sprintf("마감 긴급도 %.1f/5 (%s)", score, label),
	}
}

// softGaps flags dimensions scoring below 30% of their weight.
func softGaps(res *Result) []Gap {
	dims := []struct {
		name string
		d    DimensionScore
	}{
		{"domainFit", res.DomainFit},
		{"technologyFit", res.TechnologyFit},
		{"organizationFit", res.OrganizationFit},
		{"capabilityFit", res.CapabilityFit},
		{"complianceFit", res.ComplianceFit},
		{"financialFit", res.FinancialFit},
		{"deadlineUrgency", res.DeadlineUrgency},
	}
	var gaps []Gap
	for _, dim := range dims {
		if dim.d.Score < dim.d.Weight*0.3 {
			gaps = append(gaps, Gap{
				Dimension:   dim.name,
				Severity:    SeverityMedium,
				IsBlocker:   false,
				Description: fmt.Sprintf("%s 점수가 기준(%.1f/%.0f) 미만", dim.name, dim.d.Score, dim.d.Weight),
			})
		}
	}
	return gaps
}

func buildSummary(res *Result) string {
	blockers := 0
	for _, g := range res.Gaps {
		if g.IsBlocker {
			blockers++
		}
	}
	if blockers > 0 {
		return fmt.Sprintf("총점 %.1f/100, 필수요건 미충족 %d건", res.Total, blockers)
	}
	return fmt.Sprintf("총점 %.1f/100", res.Total)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func containsScale(scales []catalog.CompanyScale, s catalog.CompanyScale) bool {
	for _, v := range scales {
		if v == s {
			return true
		}
	}
	return false
}

func containsOrgType(types []catalog.OrgType, t catalog.OrgType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// scaleProximity is 1 - |idx(a)-idx(b)| / (N-1) on the ordered scale
// ladder; unknown scales score 0.
func scaleProximity(a, b catalog.CompanyScale) float64 {
	ai, bi := catalog.ScaleIndex(a), catalog.ScaleIndex(b)
	if ai < 0 || bi < 0 {
		return 0
	}
	n := len(catalog.ScaleLadder)
	return 1 - float64(abs(ai-bi))/float64(n-1)
}

// nearestScale picks the profile scale closest to the organization's on
// the ladder, preferring the preferred list.
func nearestScale(iap *profile.Profile, s catalog.CompanyScale) catalog.CompanyScale {
	candidates := iap.PreferredScales
	if len(candidates) == 0 {
		candidates = iap.AcceptableScales
	}
	best := s
	bestDist := -1
	si := catalog.ScaleIndex(s)
	for _, c := range candidates {
		d := abs(catalog.ScaleIndex(c) - si)
		if bestDist < 0 || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
