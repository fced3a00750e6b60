package profile

import (
	"context"
	"log"
	"unicode/utf8"

	"grantmatch/internal/catalog"
)

// GenerateOptions controls one profile generation.
type GenerateOptions struct {
	UseLLM bool
	Model  string
}

// GenerateResult carries the profile with its per-call accounting.
type GenerateResult struct {
	Profile    *Profile
	LLMCostKRW int64
	Usage      Usage
	UsedLLM    bool
}

// Generator produces ideal-applicant profiles. The completer may be nil
// when LLM extraction is disabled.
type Generator struct {
	completer Completer
	rates     Rates
}

func NewGenerator(completer Completer, rates Rates) *Generator {
	return &Generator{completer: completer, rates: rates}
}

// Generate runs the rule tier and, when enabled and the announcement has
// enough text, the LLM tier, then merges. LLM failures are non-fatal: the
// rule-only profile is returned and cost stays zero.
func (g *Generator) Generate(ctx context.Context, p *catalog.Program, opts GenerateOptions) GenerateResult {
	prof := GenerateRuleProfile(p)
	source := buildSourceText(p.Title, p.Description, p.Keywords, p.EligibilityCriteria)
	sourceLen := utf8.RuneCountInString(source)
	prof.SourceTextLength = sourceLen

	if !opts.UseLLM || g.completer == nil {
		return GenerateResult{Profile: prof}
	}
	if sourceLen < minSourceTextChars {
		return GenerateResult{Profile: prof}
	}

	ext, usage, err := extractSemantic(ctx, g.completer, opts.Model, source)
	if err != nil {
		log.Printf("profile generation downgraded to rule-only program=%s err=%v", p.ID, err)
		return GenerateResult{Profile: prof}
	}

	mergeExtraction(prof, ext)
	prof.GeneratedBy = GeneratedByHybrid
	prof.Confidence = overallConfidence(prof.DimensionConfidence)
	return GenerateResult{
		Profile:    prof,
		LLMCostKRW: g.rates.CostKRW(usage),
		Usage:      usage,
		UsedLLM:    true,
	}
}

// mergeExtraction folds LLM-extracted dimensions into the rule profile.
// Rule values win except where rules cannot extract at all or produced
// only an inference.
func mergeExtraction(prof *Profile, ext semanticExtraction) {
	if ext.ProgramStage != nil {
		ruleConf, has := prof.DimensionConfidence["programStage"]
		if !has || ruleConf == ConfidenceInferred {
			prof.ProgramStage = *ext.ProgramStage
			prof.setDimension("programStage", ConfidenceMedium)
		}
	}

	// Purely semantic dimensions always come from the LLM.
	if len(ext.SubDomains) > 0 {
		prof.SubDomains = ext.SubDomains
		prof.setDimension("subDomains", ConfidenceMedium)
	}
	if len(ext.ExpectedCapabilities) > 0 {
		prof.ExpectedCapabilities = ext.ExpectedCapabilities
		prof.setDimension("expectedCapabilities", ConfidenceMedium)
	}
	if len(ext.DesiredOutcomes) > 0 {
		prof.DesiredOutcomes = ext.DesiredOutcomes
		prof.setDimension("desiredOutcomes", ConfidenceMedium)
	}

	if ext.CollaborationExpectation != nil && prof.CollaborationExpectation == "" {
		prof.CollaborationExpectation = *ext.CollaborationExpectation
		prof.setDimension("collaborationExpectation", ConfidenceMedium)
	}

	if ext.IdealTRLCenter != nil {
		if prof.TRLRange == nil {
			prof.TRLRange = &TRLRange{}
		}
		center := *ext.IdealTRLCenter
		prof.TRLRange.IdealCenter = &center
		if _, has := prof.DimensionConfidence["trlRange"]; !has {
			prof.setDimension("trlRange", ConfidenceMedium)
		}
	}

	if ext.FinancialRequiresMatchingFund != nil {
		if prof.FinancialProfile == nil {
			prof.FinancialProfile = &FinancialProfile{}
		}
		v := *ext.FinancialRequiresMatchingFund
		prof.FinancialProfile.RequiresMatchingFund = &v
		if _, has := prof.DimensionConfidence["financialProfile"]; !has {
			prof.setDimension("financialProfile", ConfidenceMedium)
		}
	}

	if ext.ExpectedOrgProfile != nil && prof.SupportPurpose == "" {
		prof.SupportPurpose = *ext.ExpectedOrgProfile
	}
}
