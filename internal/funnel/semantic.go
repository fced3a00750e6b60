package funnel

import (
	"math"
	"strings"

	"grantmatch/internal/catalog"
	"grantmatch/internal/classify"
	"grantmatch/internal/profile"
	"grantmatch/internal/proximity"
	"grantmatch/internal/signals"
	"grantmatch/internal/taxonomy"
)

// Semantic stage caps.
const (
	maxSemanticScore   = 65.0
	maxDomainRelevance = 25.0
	maxCapabilityFit   = 15.0
	unenrichedPenalty  = 15.0
	noSectorPartial    = 8.0
	noKeywordPartial   = 3.0
	defaultIntentScore = 4.0
)

// scoreSemantic computes the stage-2 relevance score. When the program
// carries an ideal profile the domain and capability components are
// rescaled from the proximity evaluation; otherwise the classifier-based
// fallbacks apply.
func scoreSemantic(org *catalog.Organization, p *catalog.Program, iap *profile.Profile, prox *proximity.Result, sigs []signals.Signal) SemanticScore {
	var s SemanticScore

	if prox != nil {
		s.DomainRelevance = round1(prox.DomainFit.Score / proximity.WeightDomainFit * maxDomainRelevance)
		s.CapabilityFit = round1(prox.CapabilityFit.Score)
	} else {
		s.DomainRelevance = fallbackDomainRelevance(org, p)
		s.CapabilityFit = fallbackCapabilityFit(org, p)
	}

	s.IntentAlignment = scoreIntentAlignment(p.Intent, org)
	s.NegativeSignals = signals.ClampTotal(sigs)
	if iap != nil {
		s.ConfidenceBonus = int(math.Round(iap.Confidence * 10))
	}

	total := s.DomainRelevance + s.CapabilityFit + s.IntentAlignment +
		float64(s.NegativeSignals) + float64(s.ConfidenceBonus)
	if total < 0 {
		total = 0
	}
	if total > maxSemanticScore {
		total = maxSemanticScore
	}
	s.Score = round1(total)
	return s
}

func fallbackDomainRelevance(org *catalog.Organization, p *catalog.Program) float64 {
	if taxonomy.NormalizeSectorCode(org.IndustrySector) == "" {
		return noSectorPartial
	}
	cls := classify.ClassifyProgram(p.Title, p.ProgramName, p.Ministry)
	return round1(taxonomy.GetIndustryRelevance(org.IndustrySector, cls.Industry) * maxDomainRelevance)
}

// fallbackCapabilityFit buckets the keyword overlap count between the
// organization's technology vocabulary and the program's keywords plus
// title tokens.
func fallbackCapabilityFit(org *catalog.Organization, p *catalog.Program) float64 {
	var orgWords []string
	orgWords = append(orgWords, org.KeyTechnologies...)
	orgWords = append(orgWords, org.TechnologySubDomains...)
	orgWords = append(orgWords, org.ResearchFocusAreas...)
	if len(orgWords) == 0 {
		return noKeywordPartial
	}

	var progWords []string
	progWords = append(progWords, p.Keywords...)
	progWords = append(progWords, titleTokens(p.Title)...)

	count := overlapCount(orgWords, progWords)
	switch {
	case count >= 4:
		return 15
	case count == 3:
		return 13
	case count == 2:
		return 10
	case count == 1:
		return 6
	default:
		return 0
	}
}

func overlapCount(orgWords, progWords []string) int {
	count := 0
	for _, ow := range orgWords {
		no := taxonomy.Normalize(ow)
		if no == "" || stopWords[no] {
			continue
		}
		for _, pw := range progWords {
			np := taxonomy.Normalize(pw)
			if np == "" || stopWords[np] {
				continue
			}
			if np == no || containsEither(np, no) {
				count++
				break
			}
		}
	}
	return count
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// scoreIntentAlignment buckets how well the organization's matching TRL
// fits the program's declared intent. Missing data scores the neutral
// default.
func scoreIntentAlignment(intent catalog.ProgramIntent, org *catalog.Organization) float64 {
	t, ok := org.MatchingTRL()
	if intent == "" || !ok {
		return defaultIntentScore
	}
	switch intent {
	case catalog.IntentBasicResearch:
		switch {
		case t <= 3:
			return 10
		case t <= 5:
			return 5
		default:
			return 0
		}
	case catalog.IntentAppliedResearch:
		switch {
		case t >= 4 && t <= 6:
			return 10
		case t == 3 || t == 7:
			return 6
		default:
			return 2
		}
	case catalog.IntentCommercialization:
		switch {
		case t >= 7:
			return 10
		case t >= 5:
			return 5
		default:
			return 0
		}
	case catalog.IntentInfrastructure, catalog.IntentPolicySupport:
		return 6
	default:
		return defaultIntentScore
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
