package funnel

import (
	"testing"

	"grantmatch/internal/catalog"
	"grantmatch/internal/profile"
	"grantmatch/internal/proximity"
	"grantmatch/internal/signals"
)

func TestScoreSemanticFallback(t *testing.T) {
	org := gateOrg()
	p := gateProgram()
	p.Intent = catalog.IntentAppliedResearch

	s := scoreSemantic(org, p, nil, nil, nil)
	if s.DomainRelevance != 25 {
		t.Errorf("domainRelevance = %v, want 25 for same-sector", s.DomainRelevance)
	}
	// AI matches exactly, 빅데이터 contains 데이터, 클라우드 misses: two
	// overlaps bucket to 10.
	if s.CapabilityFit != 10 {
		t.Errorf("capabilityFit = %v, want 10", s.CapabilityFit)
	}
	if s.IntentAlignment != 10 {
		t.Errorf("intentAlignment = %v, want 10 for TRL 6 applied call", s.IntentAlignment)
	}
	if s.Score != 45 {
		t.Errorf("score = %v, want 45", s.Score)
	}
}

func TestScoreSemanticPartialCredits(t *testing.T) {
	org := &catalog.Organization{Type: catalog.OrgCompany}
	s := scoreSemantic(org, gateProgram(), nil, nil, nil)
	if s.DomainRelevance != noSectorPartial {
		t.Errorf("no-sector org: domainRelevance = %v, want %v", s.DomainRelevance, noSectorPartial)
	}
	if s.CapabilityFit != noKeywordPartial {
		t.Errorf("no-keyword org: capabilityFit = %v, want %v", s.CapabilityFit, noKeywordPartial)
	}
	if s.IntentAlignment != defaultIntentScore {
		t.Errorf("missing intent data: %v, want %v", s.IntentAlignment, defaultIntentScore)
	}
}

func TestScoreSemanticNeverNegative(t *testing.T) {
	org := &catalog.Organization{Type: catalog.OrgCompany}
	sigs := []signals.Signal{
		{Code: signals.CodeDomainMismatchBio, Penalty: -8},
		{Code: signals.CodeScaleMismatchDemo, Penalty: -4},
	}
	s := scoreSemantic(org, gateProgram(), nil, nil, sigs)
	if s.NegativeSignals != -10 {
		t.Errorf("negativeSignals = %d, want clamped -10", s.NegativeSignals)
	}
	// 8 + 3 + 4 - 10 = 5; still above the floor here, but never below 0.
	if s.Score < 0 {
		t.Errorf("score %v went negative", s.Score)
	}
	if s.Score != 5 {
		t.Errorf("score = %v, want 5", s.Score)
	}
}

func TestScoreSemanticFromProximity(t *testing.T) {
	prox := &proximity.Result{
		DomainFit:     proximity.DimensionScore{Score: 24, Weight: proximity.WeightDomainFit},
		CapabilityFit: proximity.DimensionScore{Score: 12, Weight: proximity.WeightCapabilityFit},
	}
	iap := &profile.Profile{Confidence: 0.76}
	s := scoreSemantic(gateOrg(), gateProgram(), iap, prox, nil)
	if s.DomainRelevance != 20 { // 24/30 * 25
		t.Errorf("domainRelevance = %v, want 20", s.DomainRelevance)
	}
	if s.CapabilityFit != 12 {
		t.Errorf("capabilityFit = %v, want 12", s.CapabilityFit)
	}
	if s.ConfidenceBonus != 8 {
		t.Errorf("confidenceBonus = %d, want round(7.6)", s.ConfidenceBonus)
	}
}

func TestScoreIntentAlignment(t *testing.T) {
	mk := func(trl int) *catalog.Organization {
		return &catalog.Organization{TRL: intPtr(trl)}
	}
	cases := []struct {
		intent catalog.ProgramIntent
		trl    int
		want   float64
	}{
		{catalog.IntentBasicResearch, 2, 10},
		{catalog.IntentBasicResearch, 5, 5},
		{catalog.IntentBasicResearch, 8, 0},
		{catalog.IntentAppliedResearch, 5, 10},
		{catalog.IntentAppliedResearch, 7, 6},
		{catalog.IntentAppliedResearch, 3, 6},
		{catalog.IntentAppliedResearch, 1, 2},
		{catalog.IntentCommercialization, 8, 10},
		{catalog.IntentCommercialization, 5, 5},
		{catalog.IntentCommercialization, 2, 0},
		{catalog.IntentInfrastructure, 5, 6},
		{catalog.IntentPolicySupport, 2, 6},
	}
	for _, tc := range cases {
		if got := scoreIntentAlignment(tc.intent, mk(tc.trl)); got != tc.want {
			t.Errorf("%s trl=%d: got %v, want %v", tc.intent, tc.trl, got, tc.want)
		}
	}
	if got := scoreIntentAlignment(catalog.IntentBasicResearch, &catalog.Organization{}); got != defaultIntentScore {
		t.Errorf("no TRL: got %v, want neutral %v", got, defaultIntentScore)
	}
	if got := scoreIntentAlignment("", mk(5)); got != defaultIntentScore {
		t.Errorf("no intent: got %v, want neutral %v", got, defaultIntentScore)
	}
}
