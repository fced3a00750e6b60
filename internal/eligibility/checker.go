// Package eligibility implements the three-tier hard/soft requirement
// evaluation. A single hard failure makes a program INELIGIBLE; meeting
// every hard requirement plus at least one soft signal makes it
// FULLY_ELIGIBLE; hard-only makes it CONDITIONALLY_ELIGIBLE.
package eligibility

import (
	"fmt"
	"time"

	"grantmatch/internal/catalog"
)

type Level string

const (
	FullyEligible         Level = "FULLY_ELIGIBLE"
	ConditionallyEligible Level = "CONDITIONALLY_ELIGIBLE"
	Ineligible            Level = "INELIGIBLE"
)

// Result records the tier decision together with the localized reason
// lines for every requirement evaluated, pass or fail.
type Result struct {
	Level             Level
	HardFailures      []string
	Reasons           []string
	SoftMet           bool
	NeedsManualReview bool
}

func (r *Result) failHard(reason string) {
	r.HardFailures = append(r.HardFailures, reason)
	r.Reasons = append(r.Reasons, reason)
}

func (r *Result) pass(reason string) {
	r.Reasons = append(r.Reasons, reason)
}

// Check evaluates every hard and soft requirement of the program against
// the organization. Missing organization data on a hard requirement fails
// the requirement and flags the result for manual review.
func Check(org *catalog.Organization, p *catalog.Program, now time.Time) Result {
	res := Result{Level: ConditionallyEligible}

	checkRequiredCertifications(org, p, &res)
	checkInvestment(org, p, &res)
	checkEmployees(org, p, &res)
	checkRevenue(org, p, &res)
	checkOperatingYears(org, p, now, &res)

	res.SoftMet = checkSoftRequirements(org, p, &res)

	switch {
	case len(res.HardFailures) > 0:
		res.Level = Ineligible
	case res.SoftMet:
		res.Level = FullyEligible
	default:
		res.Level = ConditionallyEligible
	}
	return res
}

func certificationSet(org *catalog.Organization) map[string]bool {
	set := make(map[string]bool, len(org.Certifications)+len(org.GovernmentCertifications))
	for _, c := range org.Certifications {
		set[c] = true
	}
	for _, c := range org.GovernmentCertifications {
		set[c] = true
	}
	return set
}

func checkRequiredCertifications(org *catalog.Organization, p *catalog.Program, res *Result) {
	if len(p.RequiredCertifications) == 0 {
		return
	}
	held := certificationSet(org)
	var missing []string
	for _, c := range p.RequiredCertifications {
		if !held[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		res.failHard(fmt.Sprintf("필수 인증 미보유: %v", missing))
		return
	}
	res.pass("필수 인증 요건 충족")
}

func checkInvestment(org *catalog.Organization, p *catalog.Program, res *Result) {
	if p.RequiredInvestmentKRW == nil {
		return
	}
	if len(org.InvestmentHistory) == 0 {
		res.failHard("투자 이력 정보 없음 (수동 확인 필요)")
		res.NeedsManualReview = true
		return
	}
	total := org.VerifiedInvestmentKRW()
	if total < *p.RequiredInvestmentKRW {
		res.failHard(fmt.Sprintf("검증된 투자 총액 %d원이 요구액 %d원에 미달", total, *p.RequiredInvestmentKRW))
		return
	}
	res.pass("투자 유치 요건 충족")
}

func checkEmployees(org *catalog.Organization, p *catalog.Program, res *Result) {
	if p.MinEmployees == nil && p.MaxEmployees == nil {
		return
	}
	mid, ok := org.EmployeeRange.Midpoint()
	if !ok {
		res.failHard("종업원 수 정보 없음 (수동 확인 필요)")
		res.NeedsManualReview = true
		return
	}
	if p.MinEmployees != nil && mid < *p.MinEmployees {
		res.failHard(fmt.Sprintf("종업원 수 %d명이 최소 요건 %d명에 미달", mid, *p.MinEmployees))
		return
	}
	if p.MaxEmployees != nil && mid > *p.MaxEmployees {
		res.failHard(fmt.Sprintf("종업원 수 %d명이 최대 요건 %d명을 초과", mid, *p.MaxEmployees))
		return
	}
	res.pass("종업원 수 요건 충족")
}

func checkRevenue(org *catalog.Organization, p *catalog.Program, res *Result) {
	if p.MinRevenueKRW == nil && p.MaxRevenueKRW == nil {
		return
	}
	mid, ok := org.RevenueRange.MidpointKRW()
	if !ok {
		res.failHard("매출 정보 없음 (수동 확인 필요)")
		res.NeedsManualReview = true
		return
	}
	if p.MinRevenueKRW != nil && mid < *p.MinRevenueKRW {
		res.failHard(fmt.Sprintf("매출 %d원이 최소 요건 %d원에 미달", mid, *p.MinRevenueKRW))
		return
	}
	if p.MaxRevenueKRW != nil && mid > *p.MaxRevenueKRW {
		res.failHard(fmt.Sprintf("매출 %d원이 최대 요건 %d원을 초과", mid, *p.MaxRevenueKRW))
		return
	}
	res.pass("매출 요건 충족")
}

func checkOperatingYears(org *catalog.Organization, p *catalog.Program, now time.Time, res *Result) {
	if p.RequiredOperatingYears == nil && p.MaxOperatingYears == nil {
		return
	}
	years, ok := org.OperatingYears(now)
	if !ok {
		res.failHard("설립일 정보 없음 (수동 확인 필요)")
		res.NeedsManualReview = true
		return
	}
	if p.RequiredOperatingYears != nil && years < *p.RequiredOperatingYears {
		res.failHard(fmt.Sprintf("업력 %d년이 최소 요건 %d년에 미달", years, *p.RequiredOperatingYears))
		return
	}
	if p.MaxOperatingYears != nil && years > *p.MaxOperatingYears {
		res.failHard(fmt.Sprintf("업력 %d년이 최대 요건 %d년을 초과", years, *p.MaxOperatingYears))
		return
	}
	res.pass("업력 요건 충족")
}

func checkSoftRequirements(org *catalog.Organization, p *catalog.Program, res *Result) bool {
	met := false
	if len(p.PreferredCertifications) > 0 {
		held := certificationSet(org)
		for _, c := range p.PreferredCertifications {
			if held[c] {
				res.pass(fmt.Sprintf("우대 인증 보유: %s", c))
				met = true
				break
			}
		}
	}
	if org.PriorGrantWins > 0 {
		res.pass(fmt.Sprintf("정부과제 수행 실적 %d건", org.PriorGrantWins))
		met = true
	}
	if len(org.IndustryAwards) > 0 {
		res.pass("산업 수상 실적 보유")
		met = true
	}
	return met
}
