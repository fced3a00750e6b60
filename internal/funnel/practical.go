package funnel

import (
	"math"
	"time"

	"grantmatch/internal/catalog"
	"grantmatch/internal/proximity"
	"grantmatch/internal/trl"
)

const maxPracticalScore = 35.0

// scorePractical computes the stage-3 fit score from operational facts:
// TRL distance, company scale, R&D track record, deadline pressure, and
// certifications.
func scorePractical(org *catalog.Organization, p *catalog.Program, prox *proximity.Result, now time.Time) PracticalScore {
	var s PracticalScore

	trlRes := trl.Score(org.TRL, p.MinTRL, p.MaxTRL)
	s.TRLAlignment = int(math.Round(float64(trlRes.Score) / trl.MaxScore * 10))
	s.ScaleFit = scoreScaleFit(org, prox)
	s.RDTrack = scoreRDTrack(org)
	s.DeadlineUrgency = practicalDeadlineUrgency(p.Deadline, now)
	s.CertificationBonus = scoreCertificationBonus(org, p)

	total := float64(s.TRLAlignment + s.ScaleFit + s.RDTrack + s.DeadlineUrgency + s.CertificationBonus)
	if total > maxPracticalScore {
		total = maxPracticalScore
	}
	s.Score = total
	return s
}

// scoreScaleFit rescales the proximity organization and financial
// dimensions when an ideal profile was evaluated; otherwise it falls
// back on whether the organization declared a scale at all.
func scoreScaleFit(org *catalog.Organization, prox *proximity.Result) int {
	if prox != nil {
		v := int(math.Round(prox.OrganizationFit.Score/proximity.WeightOrganizationFit*6)) +
			int(math.Round(prox.FinancialFit.Score/proximity.WeightFinancialFit*2))
		if v > 8 {
			v = 8
		}
		return v
	}
	if org.CompanyScale != "" || org.EmployeeRange != catalog.EmployeesUnknown {
		return 4
	}
	return 2
}

func scoreRDTrack(org *catalog.Organization) int {
	v := 0
	if org.RDExperience {
		v += 3
	}
	switch {
	case org.CollaborationCount >= 3:
		v += 2
	case org.CollaborationCount >= 1:
		v++
	}
	if v > 5 {
		v = 5
	}
	return v
}

// practicalDeadlineUrgency rewards actionable windows. The scale differs
// from the proximity dimension on purpose: here a program without a
// deadline is still worth pursuing, and a closed one is worth nothing.
func practicalDeadlineUrgency(deadline *time.Time, now time.Time) int {
	if deadline == nil {
		return 3
	}
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return 0
	case days <= 7:
		return 7
	case days <= 30:
		return 6
	case days <= 60:
		return 4
	default:
		return 3
	}
}

// scoreCertificationBonus pays 3 points per preferred certification held
// (capped at 5); when the program lists none, holding every required
// certification is worth a flat 2.
func scoreCertificationBonus(org *catalog.Organization, p *catalog.Program) int {
	held := make(map[string]bool, len(org.Certifications)+len(org.GovernmentCertifications))
	for _, c := range org.Certifications {
		held[c] = true
	}
	for _, c := range org.GovernmentCertifications {
		held[c] = true
	}

	if len(p.PreferredCertifications) > 0 {
		v := 0
		for _, c := range p.PreferredCertifications {
			if held[c] {
				v += 3
			}
		}
		if v > 5 {
			v = 5
		}
		return v
	}

	if len(p.RequiredCertifications) == 0 {
		return 0
	}
	for _, c := range p.RequiredCertifications {
		if !held[c] {
			return 0
		}
	}
	return 2
}
