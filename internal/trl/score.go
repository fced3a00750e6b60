// Package trl scores how well an organization's technology readiness
// level fits a program's required range. The table is graduated: being
// over-qualified costs less than being under-qualified at the same
// distance.
package trl

// Reason codes for the score table.
const (
	ReasonNotProvided   = "TRL_NOT_PROVIDED"
	ReasonNoRequirement = "TRL_NO_REQUIREMENT"
	ReasonPerfectMatch  = "TRL_PERFECT_MATCH"
	ReasonNearMatch     = "TRL_NEAR_MATCH"
	ReasonFarMatch      = "TRL_FAR_MATCH"
	ReasonOutOfRange    = "TRL_OUT_OF_RANGE"
)

// MaxScore is the ceiling of the TRL compatibility score.
const MaxScore = 20

// Result is one scored (org TRL, program range) pair. Difference is the
// distance to the nearest range edge, zero inside the range.
type Result struct {
	Score      int
	Reason     string
	Difference int
}

// Score rates org TRL against [minTRL, maxTRL]. Either bound may be nil;
// a missing org TRL and a missing requirement get distinct neutral scores.
// Values off the 1-9 scale are treated as unset.
func Score(orgTRL *int, minTRL, maxTRL *int) Result {
	orgTRL, minTRL, maxTRL = onScale(orgTRL), onScale(minTRL), onScale(maxTRL)
	if orgTRL == nil {
		return Result{Score: 5, Reason: ReasonNotProvided}
	}
	if minTRL == nil && maxTRL == nil {
		return Result{Score: 15, Reason: ReasonNoRequirement}
	}

	t := *orgTRL
	lo, hi := bounds(minTRL, maxTRL)
	if t >= lo && t <= hi {
		return Result{Score: MaxScore, Reason: ReasonPerfectMatch}
	}

	below := t < lo
	var d int
	if below {
		d = lo - t
	} else {
		d = t - hi
	}

	var score int
	switch d {
	case 1:
		if below {
			score = 12
		} else {
			score = 15
		}
	case 2:
		if below {
			score = 6
		} else {
			score = 10
		}
	case 3:
		if below {
			score = 3
		} else {
			score = 5
		}
	default:
		return Result{Score: 0, Reason: ReasonOutOfRange, Difference: d}
	}

	reason := ReasonNearMatch
	if d >= 2 {
		reason = ReasonFarMatch
	}
	return Result{Score: score, Reason: reason, Difference: d}
}

func onScale(t *int) *int {
	if t != nil && (*t < 1 || *t > 9) {
		return nil
	}
	return t
}

func bounds(minTRL, maxTRL *int) (int, int) {
	lo, hi := 1, 9
	if minTRL != nil {
		lo = *minTRL
	}
	if maxTRL != nil {
		hi = *maxTRL
	}
	return lo, hi
}
