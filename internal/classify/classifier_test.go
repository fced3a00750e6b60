package classify

import (
	"testing"

	"grantmatch/internal/taxonomy"
)

func TestClassifyProgramMinistryPrior(t *testing.T) {
	c := ClassifyProgram("첨단기술 지원사업", "", "과학기술정보통신부")
	if c.Industry != taxonomy.ICT {
		t.Fatalf("ministry prior should win: %+v", c)
	}
	if !c.MinistryBased || c.Score != 10 {
		t.Fatalf("expected ministry-based score 10, got %+v", c)
	}
}

func TestClassifyProgramKeywordsAndMinistry(t *testing.T) {
	c := ClassifyProgram("AI 데이터 플랫폼 기술개발", "", "과학기술정보통신부")
	if c.Industry != taxonomy.ICT {
		t.Fatalf("industry = %s", c.Industry)
	}
	// ministry 10 + AI/데이터/플랫폼 keywords at 5 each
	if c.Score < 25 {
		t.Fatalf("score = %d, want >= 25", c.Score)
	}
	if c.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want capped 1.0", c.Confidence)
	}
	if len(c.MatchedKeywords) < 3 {
		t.Fatalf("matched keywords = %v", c.MatchedKeywords)
	}
}

func TestClassifyProgramFallback(t *testing.T) {
	c := ClassifyProgram("중소기업 경영안정 지원", "", "")
	if c.Industry != taxonomy.General || c.Confidence != 0.5 {
		t.Fatalf("no-signal fallback: %+v", c)
	}
}

func TestClassifyProgramConfidenceRange(t *testing.T) {
	titles := []string{
		"AI 플랫폼", "치매 임상", "수소 에너지", "아무 신호 없는 공고", "스마트팜 농업 데이터",
	}
	for _, title := range titles {
		c := ClassifyProgram(title, "", "")
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("%q: confidence %v out of [0,1]", title, c.Confidence)
		}
	}
}

func TestClassifyProgramTieBreakByDeclarationOrder(t *testing.T) {
	// One ICT keyword and one BioHealth keyword: equal scores, ICT is
	// declared first in the table.
	c := ClassifyProgram("AI 의료 지원", "", "")
	if c.Industry != taxonomy.ICT {
		t.Fatalf("tie must break to earliest declared industry, got %s", c.Industry)
	}
}

func TestClassifyProgramDeterminism(t *testing.T) {
	for i := 0; i < 20; i++ {
		c := ClassifyProgram("치매의료기술연구개발사업", "", "보건복지부")
		if c.Industry != taxonomy.BioHealth {
			t.Fatalf("run %d: industry %s", i, c.Industry)
		}
	}
}

func TestClassifyProgramExtendedRegional(t *testing.T) {
	ec := ClassifyProgramExtended("부산 지역 스마트공장 지원", "", "", "")
	if !ec.RequiresRegionalFilter || len(ec.RegionalKeywords) == 0 {
		t.Fatalf("regional keyword must set the filter flag: %+v", ec)
	}
	ec = ClassifyProgramExtended("AI 플랫폼 개발", "", "", "")
	if ec.RequiresRegionalFilter {
		t.Fatalf("no regional keyword must not set the flag: %+v", ec)
	}
}
