package catalog

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestMatchingTRLPrefersTarget(t *testing.T) {
	org := &Organization{TRL: intPtr(7), TargetResearchTRL: intPtr(4)}
	got, ok := org.MatchingTRL()
	if !ok || got != 4 {
		t.Fatalf("want target TRL 4, got %d ok=%v", got, ok)
	}

	org = &Organization{TRL: intPtr(7)}
	got, ok = org.MatchingTRL()
	if !ok || got != 7 {
		t.Fatalf("want current TRL 7, got %d ok=%v", got, ok)
	}

	if _, ok := (&Organization{}).MatchingTRL(); ok {
		t.Fatal("no TRL data must report ok=false")
	}
}

func TestMatchingTRLSkipsOffScaleValues(t *testing.T) {
	// A bad target falls through to a valid current level.
	org := &Organization{TRL: intPtr(6), TargetResearchTRL: intPtr(42)}
	got, ok := org.MatchingTRL()
	if !ok || got != 6 {
		t.Fatalf("want fallback to current TRL 6, got %d ok=%v", got, ok)
	}

	for _, bad := range []int{0, -1, 10, 42} {
		org = &Organization{TRL: intPtr(bad)}
		if _, ok := org.MatchingTRL(); ok {
			t.Errorf("current TRL %d must report ok=false", bad)
		}
	}
}

func TestOperatingYearsFloors(t *testing.T) {
	now := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	est := now.AddDate(-3, 0, 10) // just under 3 years
	org := &Organization{BusinessEstablishedDate: &est}
	years, ok := org.OperatingYears(now)
	if !ok || years != 2 {
		t.Fatalf("want floored 2 years, got %d ok=%v", years, ok)
	}

	future := now.AddDate(1, 0, 0)
	org = &Organization{BusinessEstablishedDate: &future}
	years, ok = org.OperatingYears(now)
	if !ok || years != 0 {
		t.Fatalf("future establishment must be 0 years, got %d", years)
	}

	if _, ok := (&Organization{}).OperatingYears(now); ok {
		t.Fatal("missing establishment date must report ok=false")
	}
}

func TestHasNonMetropolitanLocation(t *testing.T) {
	metro := &Organization{Locations: []RegionCode{RegionSeoul, RegionGyeonggi}}
	if metro.HasNonMetropolitanLocation() {
		t.Fatal("수도권-only org reported as non-metro")
	}
	mixed := &Organization{Locations: []RegionCode{RegionSeoul, RegionBusan}}
	if !mixed.HasNonMetropolitanLocation() {
		t.Fatal("org with Busan site must count as non-metro")
	}
}

func TestVerifiedInvestmentKRW(t *testing.T) {
	org := &Organization{InvestmentHistory: []Investment{
		{AmountKRW: 300_000_000, Verified: true},
		{AmountKRW: 900_000_000, Verified: false},
		{AmountKRW: 200_000_000, Verified: true},
	}}
	if got := org.VerifiedInvestmentKRW(); got != 500_000_000 {
		t.Fatalf("want 500M verified, got %d", got)
	}
}

func TestHasIAP(t *testing.T) {
	p := &Program{}
	if p.HasIAP() {
		t.Fatal("empty profile must not count as enriched")
	}
	p.IdealProfile = []byte("null")
	if p.HasIAP() {
		t.Fatal("literal null must not count as enriched")
	}
	p.IdealProfile = []byte(`{"version":"1.0"}`)
	if !p.HasIAP() {
		t.Fatal("document present must count as enriched")
	}
}

func TestProgramIsExpired(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	if (&Program{}).IsExpired(now) {
		t.Fatal("program without deadline never expires")
	}
	if !(&Program{Deadline: &past}).IsExpired(now) {
		t.Fatal("past deadline must be expired")
	}
	if (&Program{Deadline: &future}).IsExpired(now) {
		t.Fatal("future deadline must not be expired")
	}
}

func TestScaleIndex(t *testing.T) {
	if ScaleIndex(ScaleMicro) != 0 || ScaleIndex(ScaleLarge) != len(ScaleLadder)-1 {
		t.Fatal("ladder endpoints misplaced")
	}
	if ScaleIndex("NOPE") != -1 {
		t.Fatal("unknown scale must return -1")
	}
}

func TestRangeMidpoints(t *testing.T) {
	if v, ok := Employees10To29.Midpoint(); !ok || v != 20 {
		t.Fatalf("employee midpoint: got %d ok=%v", v, ok)
	}
	if _, ok := EmployeesUnknown.Midpoint(); ok {
		t.Fatal("unknown employee range must not have a midpoint")
	}
	if v, ok := Revenue10To50.MidpointKRW(); !ok || v != 3_000_000_000 {
		t.Fatalf("revenue midpoint: got %d ok=%v", v, ok)
	}
	if v, ok := Revenue10To50.UpperBoundEok(); !ok || v != 50 {
		t.Fatalf("revenue upper bound: got %d ok=%v", v, ok)
	}
}
