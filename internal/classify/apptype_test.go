package classify

import (
	"testing"

	"grantmatch/internal/catalog"
)

func TestDetectApplicationType(t *testing.T) {
	cases := []struct {
		name  string
		title string
		desc  string
		want  ApplicationType
	}{
		{"designated title", "2026년 지정과제 연구개발", "", TypeDesignated},
		{"demand survey", "2026년도 수요조사 안내", "", TypeDemandSurvey},
		{"consolidated", "2026년도 중소기업 지원사업 통합공고", "", TypeConsolidated},
		{"institutional", "연구 장비 구축", "출연연구기관 한정 모집", TypeInstitutionalOnly},
		{"open", "기술개발 자유공모", "", TypeOpenCompetition},
		{"unknown", "일반 안내문", "", TypeUnknown},
	}
	for _, tc := range cases {
		if got := DetectApplicationType(tc.title, tc.desc); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

// A designated pattern in the title is authoritative even when the text
// reads like an R&D call; only a description-level hit gets downgraded.
func TestDetectApplicationTypeDesignatedDowngrade(t *testing.T) {
	if got := DetectApplicationType("2026년 지정과제 연구개발", ""); got != TypeDesignated {
		t.Fatalf("title-level designated downgraded: %s", got)
	}
	if got := DetectApplicationType("신기술 개발 지원", "본 사업은 지정과제 방식의 기술개발 과제를 포함합니다"); got != TypeOpenCompetition {
		t.Fatalf("description-level designated with R&D context must downgrade: %s", got)
	}
	if got := DetectApplicationType("설비 구매 지원", "지정과제 방식으로 운영"); got != TypeDesignated {
		t.Fatalf("description-level designated without R&D context: %s", got)
	}
}

func TestIsConsolidatedAnnouncement(t *testing.T) {
	p := &catalog.Program{}
	if !IsConsolidatedAnnouncement(p) {
		t.Fatal("no deadline, start, or budget must detect as consolidated")
	}
	budget := int64(1_000_000_000)
	p.BudgetAmountKRW = &budget
	if IsConsolidatedAnnouncement(p) {
		t.Fatal("budget present must not detect as consolidated")
	}
}
