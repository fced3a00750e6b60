package trl

import "testing"

func intPtr(v int) *int { return &v }

func TestScoreNeutralCases(t *testing.T) {
	r := Score(nil, intPtr(4), intPtr(6))
	if r.Score != 5 || r.Reason != ReasonNotProvided {
		t.Fatalf("missing org TRL: %+v", r)
	}
	r = Score(intPtr(5), nil, nil)
	if r.Score != 15 || r.Reason != ReasonNoRequirement {
		t.Fatalf("no requirement: %+v", r)
	}
}

// Values off the 1-9 scale behave like missing values: a bad org TRL
// must not pick up the no-requirement 15.
func TestScoreOffScaleValues(t *testing.T) {
	for _, bad := range []int{0, -3, 10, 42} {
		r := Score(intPtr(bad), nil, nil)
		if r.Score != 5 || r.Reason != ReasonNotProvided {
			t.Errorf("org TRL %d: got %+v, want score=5 reason=%s", bad, r, ReasonNotProvided)
		}
	}
	// A bad bound drops, leaving no requirement.
	r := Score(intPtr(5), intPtr(-1), nil)
	if r.Score != 15 || r.Reason != ReasonNoRequirement {
		t.Fatalf("off-scale minimum: %+v", r)
	}
	r = Score(intPtr(5), intPtr(4), intPtr(99))
	if r.Score != MaxScore {
		t.Fatalf("off-scale maximum must leave an open top end: %+v", r)
	}
}

func TestScoreGraduatedTable(t *testing.T) {
	cases := []struct {
		org        int
		wantScore  int
		wantReason string
	}{
		{5, 20, ReasonPerfectMatch},
		{4, 20, ReasonPerfectMatch},
		{6, 20, ReasonPerfectMatch},
		{3, 12, ReasonNearMatch}, // 1 below
		{7, 15, ReasonNearMatch}, // 1 above
		{2, 6, ReasonFarMatch},   // 2 below
		{8, 10, ReasonFarMatch},  // 2 above
		{1, 3, ReasonFarMatch},   // 3 below
		{9, 5, ReasonFarMatch},   // 3 above
	}
	for _, tc := range cases {
		r := Score(intPtr(tc.org), intPtr(4), intPtr(6))
		if r.Score != tc.wantScore || r.Reason != tc.wantReason {
			t.Errorf("TRL %d vs [4,6]: got %+v, want score=%d reason=%s", tc.org, r, tc.wantScore, tc.wantReason)
		}
	}
}

func TestScoreOutOfRange(t *testing.T) {
	r := Score(intPtr(9), intPtr(1), intPtr(3))
	if r.Score != 0 || r.Reason != ReasonOutOfRange || r.Difference != 6 {
		t.Fatalf("out of range: %+v", r)
	}
}

func TestScoreOpenEndedBounds(t *testing.T) {
	// Only a minimum: everything at or above scores perfect.
	if r := Score(intPtr(9), intPtr(4), nil); r.Score != MaxScore {
		t.Fatalf("min-only high TRL: %+v", r)
	}
	// Only a maximum: low TRL is fine.
	if r := Score(intPtr(1), nil, intPtr(3)); r.Score != MaxScore {
		t.Fatalf("max-only low TRL: %+v", r)
	}
}

// Closer to the range never scores worse, on either side.
func TestScoreMonotonicity(t *testing.T) {
	lo, hi := intPtr(4), intPtr(6)
	prev := -1
	for trl := 1; trl <= 4; trl++ { // approaching from below
		r := Score(intPtr(trl), lo, hi)
		if r.Score < prev {
			t.Fatalf("score decreased approaching range from below at TRL %d", trl)
		}
		prev = r.Score
	}
	prev = -1
	for trl := 9; trl >= 6; trl-- { // approaching from above
		r := Score(intPtr(trl), lo, hi)
		if r.Score < prev {
			t.Fatalf("score decreased approaching range from above at TRL %d", trl)
		}
		prev = r.Score
	}
}
