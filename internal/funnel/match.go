// Package funnel implements the staged matching pipeline: an eligibility
// gate, a semantic relevance score (0-65), and a practical fit score
// (0-35), orchestrated over a deduplicated program list.
package funnel

import (
	"time"

	"grantmatch/internal/classify"
	"grantmatch/internal/eligibility"
	"grantmatch/internal/proximity"
	"grantmatch/internal/signals"
)

// AlgorithmVersion is stamped on every match produced by the funnel.
const AlgorithmVersion = "v6.0-funnel"

// DefaultMinimumScore is the display threshold applied when options leave
// it unset.
const DefaultMinimumScore = 55

// Options are the enumerated knobs of a matching request.
type Options struct {
	// IncludeExpired scores expired and inactive programs too, with the
	// TRL gate relaxed by ±3.
	IncludeExpired bool
	// MinimumScore filters the ranked output; zero means the default.
	MinimumScore int
	// PenalizeUnenriched applies the legacy -15 semantic penalty when the
	// organization has semantic data but the program carries no ideal
	// profile. Off by default.
	PenalizeUnenriched bool
	// Now pins the reference time for deadline checks and urgency
	// scoring. Zero means the wall clock.
	Now time.Time
}

func (o Options) minScore() int {
	if o.MinimumScore <= 0 {
		return DefaultMinimumScore
	}
	return o.MinimumScore
}

func (o Options) clock() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// GateResult is the stage-1 outcome for one program.
type GateResult struct {
	Passed           bool                     `json:"passed"`
	BlockReasons     []string                 `json:"blockReasons,omitempty"`
	ApplicationType  classify.ApplicationType `json:"applicationType"`
	Eligibility      eligibility.Result       `json:"-"`
	EligibilityLevel eligibility.Level        `json:"eligibilityLevel"`
}

// SemanticScore is the stage-2 breakdown. Score is clamped to [0, 65].
type SemanticScore struct {
	DomainRelevance float64 `json:"domainRelevance"`
	CapabilityFit   float64 `json:"capabilityFit"`
	IntentAlignment float64 `json:"intentAlignment"`
	NegativeSignals int     `json:"negativeSignals"`
	ConfidenceBonus int     `json:"confidenceBonus"`
	Score           float64 `json:"score"`
}

// PracticalScore is the stage-3 breakdown. Score is capped at 35.
type PracticalScore struct {
	TRLAlignment       int     `json:"trlAlignment"`
	ScaleFit           int     `json:"scaleFit"`
	RDTrack            int     `json:"rdTrack"`
	DeadlineUrgency    int     `json:"deadlineUrgency"`
	CertificationBonus int     `json:"certificationBonus"`
	Score              float64 `json:"score"`
}

// V4Breakdown maps the funnel stages onto the legacy score shape so old
// consumers keep rendering. It duplicates v6 details through a rounding
// boundary; consumers must not rely on both being bit-identical.
type V4Breakdown struct {
	KeywordScore  float64 `json:"keywordScore"`
	IndustryScore float64 `json:"industryScore"`
	TRLScore      int     `json:"trlScore"`
	TypeScore     int     `json:"typeScore"`
	RDScore       int     `json:"rdScore"`
	DeadlineScore int     `json:"deadlineScore"`
}

// MatchScore is the per-(organization, program) output record.
type MatchScore struct {
	ProgramID   string `json:"programId"`
	AgencyID    string `json:"agencyId"`
	Title       string `json:"title"`
	ProgramName string `json:"programName,omitempty"`

	Score     int            `json:"score"`
	Semantic  SemanticScore  `json:"semantic"`
	Practical PracticalScore `json:"practical"`
	Breakdown V4Breakdown    `json:"breakdown"`

	EligibilityLevel  eligibility.Level `json:"eligibilityLevel"`
	NeedsManualReview bool              `json:"needsManualReview"`
	ReasonCodes       []string          `json:"reasonCodes,omitempty"`
	Gaps              []proximity.Gap   `json:"gaps,omitempty"`
	NegativeSignals   []signals.Signal  `json:"negativeSignals,omitempty"`

	// Proximity holds the full v5 evaluation when the program carried an
	// ideal profile; nil otherwise.
	Proximity *proximity.Result `json:"v6Details,omitempty"`

	AlgorithmVersion string `json:"algorithmVersion"`
}

// Stats counts what happened to each program in one funnel run.
type Stats struct {
	Input          int            `json:"input"`
	AfterDedup     int            `json:"afterDedup"`
	Processed      int            `json:"processed"`
	GateBlocked    int            `json:"gateBlocked"`
	BlockReasons   map[string]int `json:"blockReasons,omitempty"`
	Errored        int            `json:"errored"`
	LowSemantic    int            `json:"lowSemantic"`
	BelowThreshold int            `json:"belowThreshold"`
	Returned       int            `json:"returned"`
}
