package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const extractionSystemPrompt = "You are an analyst for Korean government R&D and SME funding programs. " +
	"Given an announcement, describe the ideal applicant organization. Respond with strict JSON only."

const (
	maxDescriptionChars = 3000
	maxEligibilityChars = 500
	minSourceTextChars  = 50
	extractionMaxTokens = 800
	extractionTemp      = 0.1
	extractionTimeout   = 30 * time.Second
	maxListItems        = 5
)

const extractionSchemaPrompt = `Required JSON schema:
{
  "programStage": "BASIC_RESEARCH|APPLIED_RESEARCH|COMMERCIALIZATION|null",
  "subDomains": ["string"],
  "expectedCapabilities": ["string"],
  "desiredOutcomes": ["string"],
  "collaborationExpectation": "string|null",
  "idealTrlCenter": 1-9|null,
  "expectedOrgProfile": "string|null",
  "financialRequiresMatchingFund": true|false|null
}
Lists hold at most 5 items. Use Korean for free-text values. Use null for
anything the announcement does not support.`

// semanticExtraction is the LLM tier output.
type semanticExtraction struct {
	ProgramStage                  *ProgramStage `json:"programStage"`
	SubDomains                    []string      `json:"subDomains"`
	ExpectedCapabilities          []string      `json:"expectedCapabilities"`
	DesiredOutcomes               []string      `json:"desiredOutcomes"`
	CollaborationExpectation      *string       `json:"collaborationExpectation"`
	IdealTRLCenter                *int          `json:"idealTrlCenter"`
	ExpectedOrgProfile            *string       `json:"expectedOrgProfile"`
	FinancialRequiresMatchingFund *bool         `json:"financialRequiresMatchingFund"`
}

// buildSourceText concatenates the announcement fields the extraction
// prompt sees: title, truncated description, keywords, truncated
// eligibility criteria.
func buildSourceText(title, description string, keywords []string, eligibility string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(title))
	if d := strings.TrimSpace(description); d != "" {
		sb.WriteString("\n\n")
		sb.WriteString(truncateRunes(d, maxDescriptionChars))
	}
	if len(keywords) > 0 {
		sb.WriteString("\n\n키워드: ")
		sb.WriteString(strings.Join(keywords, ", "))
	}
	if e := strings.TrimSpace(eligibility); e != "" {
		sb.WriteString("\n\n지원자격: ")
		sb.WriteString(truncateRunes(e, maxEligibilityChars))
	}
	return sb.String()
}

// truncateRunes cuts s to at most limit characters on a rune boundary;
// the announcement text is Korean, so byte slicing would split Hangul.
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// extractSemantic performs the single-shot extraction call. The caller
// handles errors by downgrading to rule-only.
func extractSemantic(ctx context.Context, completer Completer, model, sourceText string) (semanticExtraction, Usage, error) {
	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	prompt := fmt.Sprintf("%s\n\n--- 공고 내용 ---\n%s\n\nRespond with only valid JSON matching the schema.", extractionSchemaPrompt, sourceText)
	comp, err := completer.Complete(ctx, extractionSystemPrompt, prompt, CompleteOptions{
		Model:       model,
		MaxTokens:   extractionMaxTokens,
		Temperature: extractionTemp,
	})
	if err != nil {
		return semanticExtraction{}, Usage{}, fmt.Errorf("semantic extraction: %w", err)
	}

	var out semanticExtraction
	clean := stripCodeFences(comp.Text)
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return semanticExtraction{}, comp.Usage, fmt.Errorf("semantic extraction json parse: %w", err)
	}
	out.SubDomains = capList(out.SubDomains)
	out.ExpectedCapabilities = capList(out.ExpectedCapabilities)
	out.DesiredOutcomes = capList(out.DesiredOutcomes)
	if out.IdealTRLCenter != nil && (*out.IdealTRLCenter < 1 || *out.IdealTRLCenter > 9) {
		out.IdealTRLCenter = nil
	}
	return out, comp.Usage, nil
}

func capList(items []string) []string {
	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
