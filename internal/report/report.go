// Package report renders a match run as a markdown document and as a
// standalone HTML page for admin and debug review.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"grantmatch/internal/catalog"
	"grantmatch/internal/eligibility"
	"grantmatch/internal/funnel"
)

// BuildMarkdown produces the full match report for one organization.
func BuildMarkdown(org *catalog.Organization, matches []funnel.MatchScore, stats funnel.Stats, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 매칭 결과 보고서\n\n")
	fmt.Fprintf(&b, "- 기관: %s (%s)\n", sanitize(org.Name), org.ID)
	fmt.Fprintf(&b, "- 생성 시각: %s\n", generatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- 알고리즘: %s\n\n", funnel.AlgorithmVersion)

	// --- Funnel counters ---
	fmt.Fprintf(&b, "## 처리 요약\n\n")
	fmt.Fprintf(&b, "| 단계 | 건수 |\n|------|------|\n")
	fmt.Fprintf(&b, "| 입력 공고 | %d |\n", stats.Input)
	fmt.Fprintf(&b, "| 중복 제거 후 | %d |\n", stats.AfterDedup)
	fmt.Fprintf(&b, "| 자격 게이트 차단 | %d |\n", stats.GateBlocked)
	fmt.Fprintf(&b, "| 점수 미달 | %d |\n", stats.BelowThreshold)
	fmt.Fprintf(&b, "| 최종 반환 | %d |\n\n", stats.Returned)

	if len(stats.BlockReasons) > 0 {
		fmt.Fprintf(&b, "### 차단 사유 분포\n\n")
		fmt.Fprintf(&b, "| 사유 코드 | 건수 |\n|-----------|------|\n")
		for _, code := range sortedReasonCodes(stats.BlockReasons) {
			fmt.Fprintf(&b, "| `%s` | %d |\n", code, stats.BlockReasons[code])
		}
		fmt.Fprintf(&b, "\n")
	}

	// --- Ranked matches ---
	fmt.Fprintf(&b, "## 추천 공고 (%d건)\n\n", len(matches))
	if len(matches) == 0 {
		fmt.Fprintf(&b, "조건을 충족하는 공고가 없습니다.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "| 순위 | 공고 | 점수 | 자격 | 검토 필요 |\n")
	fmt.Fprintf(&b, "|------|------|------|------|----------|\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "| %d | %s | %d | %s | %s |\n",
			i+1, sanitize(m.Title), m.Score, eligibilityLabel(m.EligibilityLevel), reviewLabel(m.NeedsManualReview))
	}
	fmt.Fprintf(&b, "\n---\n\n")

	for i, m := range matches {
		writeMatchDetail(&b, i+1, m)
	}
	return b.String()
}

func writeMatchDetail(b *strings.Builder, rank int, m funnel.MatchScore) {
	fmt.Fprintf(b, "## %d. %s\n\n", rank, sanitize(m.Title))
	if m.ProgramName != "" {
		fmt.Fprintf(b, "- 사업명: %s\n", sanitize(m.ProgramName))
	}
	fmt.Fprintf(b, "- 총점: **%d** / 100 (관련성 %.1f + 실무 적합성 %.1f)\n",
		m.Score, m.Semantic.Score, m.Practical.Score)
	fmt.Fprintf(b, "- 자격: %s\n\n", eligibilityLabel(m.EligibilityLevel))

	fmt.Fprintf(b, "| 구성 요소 | 점수 |\n|-----------|------|\n")
	fmt.Fprintf(b, "| 도메인 관련성 | %.1f / 25 |\n", m.Semantic.DomainRelevance)
	fmt.Fprintf(b, "| 역량 적합성 | %.1f / 15 |\n", m.Semantic.CapabilityFit)
	fmt.Fprintf(b, "| 사업 목적 정합성 | %.1f / 10 |\n", m.Semantic.IntentAlignment)
	if m.Semantic.NegativeSignals != 0 {
		fmt.Fprintf(b, "| 부정 신호 | %d |\n", m.Semantic.NegativeSignals)
	}
	if m.Semantic.ConfidenceBonus != 0 {
		fmt.Fprintf(b, "| 프로파일 신뢰도 가산 | %d |\n", m.Semantic.ConfidenceBonus)
	}
	fmt.Fprintf(b, "| TRL 정합성 | %d / 10 |\n", m.Practical.TRLAlignment)
	fmt.Fprintf(b, "| 규모 적합성 | %d / 8 |\n", m.Practical.ScaleFit)
	fmt.Fprintf(b, "| R&D 이력 | %d / 5 |\n", m.Practical.RDTrack)
	fmt.Fprintf(b, "| 마감 임박도 | %d / 7 |\n", m.Practical.DeadlineUrgency)
	if m.Practical.CertificationBonus != 0 {
		fmt.Fprintf(b, "| 인증 가산 | %d / 5 |\n", m.Practical.CertificationBonus)
	}
	fmt.Fprintf(b, "\n")

	for _, sig := range m.NegativeSignals {
		fmt.Fprintf(b, "- [!] `%s` (%d): %s\n", sig.Code, sig.Penalty, sanitize(sig.Detail))
	}
	for _, gap := range m.Gaps {
		marker := "보완 권장"
		if gap.IsBlocker {
			marker = "지원 불가 요인"
		}
		fmt.Fprintf(b, "- [%s] %s: %s\n", marker, gap.Dimension, sanitize(gap.Description))
	}
	if len(m.ReasonCodes) > 0 {
		fmt.Fprintf(b, "\n<details><summary>자격 검토 상세</summary>\n\n")
		for _, r := range m.ReasonCodes {
			fmt.Fprintf(b, "- %s\n", sanitize(r))
		}
		fmt.Fprintf(b, "\n</details>\n")
	}
	fmt.Fprintf(b, "\n")
}

// RenderHTML converts the report markdown into a standalone HTML page.
func RenderHTML(markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	return "<!doctype html><html><head><meta charset='utf-8'><title>매칭 결과 보고서</title>" +
		"<style>" +
		"body{font-family:'Noto Sans KR',sans-serif;max-width:900px;margin:0 auto;padding:1rem;color:#1c1917;}" +
		"table{width:100%;border-collapse:collapse;font-size:0.85rem;}" +
		"th,td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}" +
		"thead th{background:#f1f5f9;font-weight:700;}" +
		"code{background:#f5f5f4;padding:0.1rem 0.3rem;border-radius:3px;font-size:0.85em;}" +
		"h2{border-bottom:1px solid #e7e5e4;padding-bottom:0.3rem;}" +
		"</style></head><body>" + content.String() + "</body></html>", nil
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func eligibilityLabel(l eligibility.Level) string {
	switch l {
	case eligibility.FullyEligible:
		return "완전 적격"
	case eligibility.ConditionallyEligible:
		return "조건부 적격"
	default:
		return string(l)
	}
}

func reviewLabel(needed bool) string {
	if needed {
		return "예"
	}
	return "아니오"
}

func sortedReasonCodes(m map[string]int) []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
