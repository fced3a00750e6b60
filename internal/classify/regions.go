package classify

import (
	"strings"

	"grantmatch/internal/catalog"
	"grantmatch/internal/taxonomy"
)

// regionalKeywords maps location words appearing in announcement titles to
// the region codes they imply. Broader groupings (호남, 영남, 충청) expand
// to every member region.
var regionalKeywords = map[string][]catalog.RegionCode{
	"서울":   {catalog.RegionSeoul},
	"경기":   {catalog.RegionGyeonggi},
	"인천":   {catalog.RegionIncheon},
	"부산":   {catalog.RegionBusan},
	"대구":   {catalog.RegionDaegu},
	"광주":   {catalog.RegionGwangju},
	"대전":   {catalog.RegionDaejeon},
	"울산":   {catalog.RegionUlsan},
	"세종":   {catalog.RegionSejong},
	"강원":   {catalog.RegionGangwon},
	"충북":   {catalog.RegionChungbuk},
	"충남":   {catalog.RegionChungnam},
	"전북":   {catalog.RegionJeonbuk},
	"전남":   {catalog.RegionJeonnam},
	"경북":   {catalog.RegionGyeongbuk},
	"경남":   {catalog.RegionGyeongnam},
	"제주":   {catalog.RegionJeju},
	"충청권":  {catalog.RegionDaejeon, catalog.RegionSejong, catalog.RegionChungbuk, catalog.RegionChungnam},
	"호남권":  {catalog.RegionGwangju, catalog.RegionJeonbuk, catalog.RegionJeonnam},
	"영남권":  {catalog.RegionBusan, catalog.RegionDaegu, catalog.RegionUlsan, catalog.RegionGyeongbuk, catalog.RegionGyeongnam},
	"강원권":  {catalog.RegionGangwon},
	"동남권":  {catalog.RegionBusan, catalog.RegionUlsan, catalog.RegionGyeongnam},
	"비수도권": {},
}

// regionalKeywordOrder fixes scan order for deterministic output.
var regionalKeywordOrder = []string{
	"서울", "경기", "인천", "부산", "대구", "광주", "대전", "울산", "세종",
	"강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
	"충청권", "호남권", "영남권", "강원권", "동남권", "비수도권",
}

func matchRegionalKeywords(text string) []string {
	norm := taxonomy.Normalize(text)
	var out []string
	for _, kw := range regionalKeywordOrder {
		if strings.Contains(norm, taxonomy.Normalize(kw)) {
			out = append(out, kw)
		}
	}
	return out
}

// RegionsForKeyword expands a matched regional keyword to its region set.
// An empty set (비수도권) means "any non-metropolitan region".
func RegionsForKeyword(kw string) ([]catalog.RegionCode, bool) {
	regions, ok := regionalKeywords[kw]
	return regions, ok
}

// RegionalKeywordsIn exposes the title scan for gate rules.
func RegionalKeywordsIn(text string) []string {
	return matchRegionalKeywords(text)
}
