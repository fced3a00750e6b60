// Package engine selects the active matching algorithm from the
// environment and runs shadow-mode comparisons between the funnel and
// the proximity-only scorer.
package engine

import (
	"context"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"grantmatch/internal/catalog"
	"grantmatch/internal/eligibility"
	"grantmatch/internal/funnel"
	"grantmatch/internal/profile"
	"grantmatch/internal/proximity"
)

const (
	AlgorithmV4 = "v4.4"
	AlgorithmV5 = "v5.0-ideal-profile"
	AlgorithmV6 = "v6.0-funnel"

	EnvAlgorithm  = "MATCHING_ALGORITHM"
	EnvShadowMode = "MATCHING_SHADOW_MODE"
)

// Config is the request-boundary algorithm selection.
type Config struct {
	Algorithm  string
	ShadowMode bool
}

// ConfigFromEnv reads MATCHING_ALGORITHM and MATCHING_SHADOW_MODE.
// An unset or unrecognized algorithm falls back to the funnel.
func ConfigFromEnv() Config {
	cfg := Config{Algorithm: AlgorithmV6}
	switch v := os.Getenv(EnvAlgorithm); v {
	case "", AlgorithmV6:
	case AlgorithmV4, AlgorithmV5:
		cfg.Algorithm = v
	default:
		log.Printf("engine: unknown %s=%q, using %s", EnvAlgorithm, v, AlgorithmV6)
	}
	if v := os.Getenv(EnvShadowMode); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("engine: bad %s=%q: %v", EnvShadowMode, v, err)
		}
		cfg.ShadowMode = b
	}
	return cfg
}

// Engine dispatches match requests to the configured algorithm.
type Engine struct {
	cfg  Config
	sink ComparisonSink
}

func New(cfg Config, sink ComparisonSink) *Engine {
	if sink == nil {
		sink = LogSink{}
	}
	return &Engine{cfg: cfg, sink: sink}
}

// Match runs the configured algorithm. In shadow mode the other scorer
// runs too and a comparison record is emitted; shadow failures never
// affect the primary result.
func (e *Engine) Match(ctx context.Context, org *catalog.Organization, programs []*catalog.Program, limit int, opts funnel.Options) []funnel.MatchScore {
	primaryAlg := e.cfg.Algorithm
	if primaryAlg == AlgorithmV4 {
		log.Printf("engine: %s is retired; scoring with %s", AlgorithmV4, AlgorithmV6)
		primaryAlg = AlgorithmV6
	}

	var primary, shadow []funnel.MatchScore
	shadowAlg := ""
	switch primaryAlg {
	case AlgorithmV5:
		primary = matchProximityOnly(org, programs, limit, opts)
		if e.cfg.ShadowMode {
			shadowAlg = AlgorithmV6
			shadow = funnel.GenerateMatches(ctx, org, programs, limit, opts)
		}
	default:
		primary = funnel.GenerateMatches(ctx, org, programs, limit, opts)
		if e.cfg.ShadowMode {
			shadowAlg = AlgorithmV5
			shadow = matchProximityOnly(org, programs, limit, opts)
		}
	}

	if e.cfg.ShadowMode && org != nil {
		rec := buildComparison(org.ID, primaryAlg, shadowAlg, primary, shadow)
		if err := e.sink.Emit(ctx, rec); err != nil {
			log.Printf("engine: comparison emit failed: %v", err)
		}
	}
	return primary
}

// matchProximityOnly is the pre-funnel scorer: eligibility plus the
// weighted proximity total over enriched programs. Programs without an
// ideal profile cannot be scored and are skipped.
func matchProximityOnly(org *catalog.Organization, programs []*catalog.Program, limit int, opts funnel.Options) []funnel.MatchScore {
	if org == nil || len(programs) == 0 {
		return nil
	}
	now := time.Now()

	var out []funnel.MatchScore
	for _, p := range catalog.DedupPrograms(programs) {
		if !opts.IncludeExpired && (p.Status != catalog.StatusActive || p.IsExpired(now)) {
			continue
		}
		iap := profile.FromProgram(p)
		if iap == nil {
			continue
		}
		elig := eligibility.Check(org, p, now)
		if elig.Level == eligibility.Ineligible {
			continue
		}

		res := proximity.Score(org, iap, p.Deadline, now)
		out = append(out, funnel.MatchScore{
			ProgramID:         p.ID,
			AgencyID:          p.AgencyID,
			Title:             p.Title,
			ProgramName:       p.ProgramName,
			Score:             int(math.Round(res.Total)),
			EligibilityLevel:  elig.Level,
			NeedsManualReview: elig.NeedsManualReview,
			ReasonCodes:       elig.Reasons,
			Gaps:              res.Gaps,
			Proximity:         &res,
			AlgorithmVersion:  proximity.AlgorithmVersion,
		})
	}

	threshold := opts.MinimumScore
	if threshold <= 0 {
		threshold = funnel.DefaultMinimumScore
	}
	filtered := out[:0]
	for _, m := range out {
		if m.Score >= threshold {
			filtered = append(filtered, m)
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
	return filtered
}
