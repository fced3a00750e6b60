package funnel

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"grantmatch/internal/catalog"
	"grantmatch/internal/classify"
	"grantmatch/internal/eligibility"
	"grantmatch/internal/profile"
	"grantmatch/internal/proximity"
	"grantmatch/internal/signals"
)

// lowSemanticFloor marks matches whose relevance stage scored poorly;
// these are only counted for observability, not filtered.
const lowSemanticFloor = 20.0

// GenerateMatches runs the full funnel and returns the ranked matches.
func GenerateMatches(ctx context.Context, org *catalog.Organization, programs []*catalog.Program, limit int, opts Options) []MatchScore {
	matches, _ := GenerateMatchesWithStats(ctx, org, programs, limit, opts)
	return matches
}

// GenerateMatchesWithStats is GenerateMatches plus the per-run counters.
// With Options.Now set it is a pure function of its inputs apart from
// logging and tracing; two calls with the same arguments then produce
// identical output.
func GenerateMatchesWithStats(ctx context.Context, org *catalog.Organization, programs []*catalog.Program, limit int, opts Options) ([]MatchScore, Stats) {
	stats := Stats{Input: len(programs), BlockReasons: map[string]int{}}
	if org == nil || len(programs) == 0 {
		return nil, stats
	}

	tracer := otel.Tracer("grantmatch/funnel")
	ctx, span := tracer.Start(ctx, "funnel.generateMatches")
	defer span.End()

	now := opts.clock()
	deduped := catalog.DedupPrograms(programs)
	stats.AfterDedup = len(deduped)

	var scored []MatchScore
	for _, p := range deduped {
		if err := ctx.Err(); err != nil {
			break
		}
		stats.Processed++

		gate := EvaluateGate(org, p, now, opts)
		if !gate.Passed {
			stats.GateBlocked++
			for _, r := range gate.BlockReasons {
				stats.BlockReasons[r]++
			}
			continue
		}

		m, ok := scoreOne(org, p, gate, now, opts)
		if !ok {
			stats.Errored++
			continue
		}
		if m.Semantic.Score < lowSemanticFloor {
			stats.LowSemantic++
		}
		scored = append(scored, m)
	}

	threshold := opts.minScore()
	filtered := scored[:0]
	for _, m := range scored {
		if m.Score >= threshold {
			filtered = append(filtered, m)
		} else {
			stats.BelowThreshold++
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.EligibilityLevel != b.EligibilityLevel {
			return a.EligibilityLevel == eligibility.FullyEligible
		}
		return a.Score > b.Score
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	stats.Returned = len(filtered)

	log.Printf("funnel: input=%d deduped=%d blocked=%d errored=%d lowSemantic=%d belowThreshold=%d returned=%d",
		stats.Input, stats.AfterDedup, stats.GateBlocked, stats.Errored, stats.LowSemantic, stats.BelowThreshold, stats.Returned)
	span.SetAttributes(
		attribute.Int("funnel.input", stats.Input),
		attribute.Int("funnel.gate_blocked", stats.GateBlocked),
		attribute.Int("funnel.returned", stats.Returned),
	)
	return filtered, stats
}

// scoreOne evaluates the post-gate stages for a single program. A panic
// while scoring is logged and converted into a skip so one malformed
// record never aborts the batch.
func scoreOne(org *catalog.Organization, p *catalog.Program, gate GateResult, now time.Time, opts Options) (m MatchScore, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("funnel: program=%s panic during scoring: %v", p.ID, r)
			ok = false
		}
	}()

	iap := profile.FromProgram(p)
	var prox *proximity.Result
	if iap != nil {
		res := proximity.Score(org, iap, p.Deadline, now)
		prox = &res
	}

	cls := classify.ClassifyProgram(p.Title, p.ProgramName, p.Ministry)
	sigs := signals.Detect(org, cls.Industry, p.Title)

	semantic := scoreSemantic(org, p, iap, prox, sigs)
	if opts.PenalizeUnenriched && iap == nil && hasOrgKeywordData(org) {
		semantic.Score = math.Max(0, semantic.Score-unenrichedPenalty)
	}
	practical := scorePractical(org, p, prox, now)

	m = MatchScore{
		ProgramID:   p.ID,
		AgencyID:    p.AgencyID,
		Title:       p.Title,
		ProgramName: p.ProgramName,

		Score:     int(math.Round(semantic.Score + practical.Score)),
		Semantic:  semantic,
		Practical: practical,
		Breakdown: V4Breakdown{
			KeywordScore:  semantic.DomainRelevance,
			IndustryScore: semantic.CapabilityFit + semantic.IntentAlignment,
			TRLScore:      practical.TRLAlignment,
			TypeScore:     practical.ScaleFit,
			RDScore:       practical.RDTrack,
			DeadlineScore: practical.DeadlineUrgency,
		},

		EligibilityLevel:  gate.EligibilityLevel,
		NeedsManualReview: gate.Eligibility.NeedsManualReview,
		ReasonCodes:       gate.Eligibility.Reasons,
		NegativeSignals:   sigs,

		Proximity:        prox,
		AlgorithmVersion: AlgorithmVersion,
	}
	if prox != nil {
		m.Gaps = prox.Gaps
	}
	return m, true
}
