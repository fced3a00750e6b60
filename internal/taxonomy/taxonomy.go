// Package taxonomy holds the closed industry hierarchy and the
// cross-industry relevance matrix. All tables are package-level constants
// initialized at load; nothing here mutates after startup.
package taxonomy

import "strings"

// Industry codes form a closed set. Two canonical sectors exist for energy
// and environment; they are related but distinct.
const (
	ICT           = "ICT"
	BioHealth     = "BIO_HEALTH"
	Manufacturing = "MANUFACTURING"
	Materials     = "MATERIALS"
	Energy        = "ENERGY"
	Environment   = "ENVIRONMENT"
	Agriculture   = "AGRICULTURE"
	Marine        = "MARINE"
	Defense       = "DEFENSE"
	Construction  = "CONSTRUCTION"
	Contents      = "CONTENTS"
	General       = "GENERAL"
)

// Sector is one node of the industry hierarchy.
type Sector struct {
	Code       string
	Keywords   []string
	SubSectors []SubSector
}

type SubSector struct {
	Name     string
	Keywords []string
}

// Sectors is the full hierarchy, keyed by industry code. Declaration order
// in keywordTable (see classify) decides tie-breaks, not map order here.
var Sectors = map[string]Sector{
	ICT: {
		Code:     ICT,
		Keywords: []string{"ICT", "정보통신", "소프트웨어", "SW", "인공지능", "AI", "빅데이터", "데이터", "클라우드", "IoT", "사물인터넷", "통신", "반도체설계", "디지털"},
		SubSectors: []SubSector{
			{Name: "인공지능", Keywords: []string{"머신러닝", "딥러닝", "생성형AI", "LLM", "컴퓨터비전", "자연어처리"}},
			{Name: "플랫폼", Keywords: []string{"플랫폼", "SaaS", "핀테크", "모빌리티플랫폼"}},
			{Name: "보안", Keywords: []string{"정보보호", "사이버보안", "암호", "블록체인"}},
			{Name: "통신", Keywords: []string{"5G", "6G", "위성통신", "네트워크"}},
		},
	},
	BioHealth: {
		Code:     BioHealth,
		Keywords: []string{"바이오", "헬스케어", "의료", "제약", "신약", "진단", "임상", "보건", "의료기기", "디지털헬스"},
		SubSectors: []SubSector{
			{Name: "신약개발", Keywords: []string{"치료제", "항체", "백신", "세포치료", "유전자치료"}},
			{Name: "의료기기", Keywords: []string{"진단기기", "영상의료", "체외진단"}},
			{Name: "디지털헬스", Keywords: []string{"원격의료", "건강관리", "의료AI", "의료데이터"}},
		},
	},
	Manufacturing: {
		Code:     Manufacturing,
		Keywords: []string{"제조", "생산", "스마트공장", "공정", "기계", "장비", "로봇", "자동화", "금형", "뿌리산업"},
		SubSectors: []SubSector{
			{Name: "스마트제조", Keywords: []string{"스마트팩토리", "디지털트윈", "공정혁신"}},
			{Name: "로봇", Keywords: []string{"산업용로봇", "협동로봇", "서비스로봇"}},
		},
	},
	Materials: {
		Code:     Materials,
		Keywords: []string{"소재", "부품", "소부장", "신소재", "나노", "금속", "화학소재", "세라믹", "반도체소재"},
		SubSectors: []SubSector{
			{Name: "반도체", Keywords: []string{"반도체", "디스플레이", "이차전지소재"}},
		},
	},
	Energy: {
		Code:     Energy,
		Keywords: []string{"에너지", "신재생", "태양광", "풍력", "수소", "연료전지", "이차전지", "배터리", "원자력", "전력"},
		SubSectors: []SubSector{
			{Name: "수소경제", Keywords: []string{"수전해", "수소충전", "암모니아"}},
			{Name: "에너지저장", Keywords: []string{"ESS", "전고체전지"}},
		},
	},
	Environment: {
		Code:     Environment,
		Keywords: []string{"환경", "탄소중립", "기후", "순환경제", "재활용", "폐기물", "대기", "수질", "미세먼지"},
		SubSectors: []SubSector{
			{Name: "탄소포집", Keywords: []string{"CCUS", "탄소포집", "온실가스"}},
		},
	},
	Agriculture: {
		Code:     Agriculture,
		Keywords: []string{"농업", "농식품", "축산", "스마트팜", "식품", "종자", "임업"},
		SubSectors: []SubSector{
			{Name: "스마트농업", Keywords: []string{"스마트팜", "정밀농업", "농업로봇"}},
		},
	},
	Marine: {
		Code:     Marine,
		Keywords: []string{"해양", "수산", "조선", "항만", "양식", "선박"},
		SubSectors: []SubSector{
			{Name: "친환경선박", Keywords: []string{"친환경선박", "자율운항"}},
		},
	},
	Defense: {
		Code:     Defense,
		Keywords: []string{"국방", "방위", "방산", "군수", "무기체계"},
		SubSectors: []SubSector{
			{Name: "국방ICT", Keywords: []string{"사이버전", "국방AI", "무인체계"}},
		},
	},
	Construction: {
		Code:     Construction,
		Keywords: []string{"건설", "건축", "토목", "인프라", "도시", "교통", "철도", "도로"},
		SubSectors: []SubSector{
			{Name: "스마트시티", Keywords: []string{"스마트시티", "스마트건설", "BIM"}},
		},
	},
	Contents: {
		Code:     Contents,
		Keywords: []string{"콘텐츠", "문화", "게임", "영상", "관광", "미디어", "메타버스"},
		SubSectors: []SubSector{
			{Name: "실감콘텐츠", Keywords: []string{"VR", "AR", "XR", "실감미디어"}},
		},
	},
	General: {
		Code:     General,
		Keywords: []string{},
	},
}

// relevanceMatrix holds the explicit cross-industry relevance values.
// Lookups fall back to the symmetric cell, then to defaultRelevance.
// R[x][x] is always 1.
var relevanceMatrix = map[string]map[string]float64{
	ICT: {
		ICT:           1.0,
		Manufacturing: 0.6,
		Contents:      0.6,
		Defense:       0.5,
		Construction:  0.5,
		BioHealth:     0.4,
		Energy:        0.4,
		Environment:   0.35,
		Materials:     0.35,
		Agriculture:   0.3,
		Marine:        0.3,
	},
	BioHealth: {
		BioHealth:   1.0,
		Agriculture: 0.45,
		Environment: 0.4,
		Materials:   0.35,
	},
	Manufacturing: {
		Manufacturing: 1.0,
		Materials:     0.7,
		Energy:        0.5,
		Marine:        0.45,
		Defense:       0.45,
	},
	Materials: {
		Materials: 1.0,
		Energy:    0.55,
	},
	Energy: {
		Energy:      1.0,
		Environment: 0.6,
		Marine:      0.4,
	},
	Environment: {
		Environment: 1.0,
		Agriculture: 0.45,
		Marine:      0.45,
		Construction: 0.4,
	},
	Agriculture: {
		Agriculture: 1.0,
		Marine:      0.4,
	},
	Construction: {
		Construction: 1.0,
		Energy:       0.4,
	},
	Contents: {
		Contents: 1.0,
	},
	Defense: {
		Defense: 1.0,
	},
	Marine: {
		Marine: 1.0,
	},
	General: {
		General: 1.0,
	},
}

const defaultRelevance = 0.3

// Normalize reduces a keyword to comparison form: uppercase with all
// whitespace removed.
func Normalize(kw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(kw), ""))
}

// containsEither reports substring containment in either direction on
// normalized forms.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// sectorOrder fixes the scan order so FindIndustrySector is deterministic.
var sectorOrder = []string{ICT, BioHealth, Manufacturing, Materials, Energy, Environment, Agriculture, Marine, Defense, Construction, Contents}

// FindIndustrySector resolves free text to a sector code. It tries, in
// order: a direct code match, sector keyword containment, sub-sector
// keyword containment. Returns "" when nothing matches.
func FindIndustrySector(freeText string) string {
	norm := Normalize(freeText)
	if norm == "" {
		return ""
	}
	if _, ok := Sectors[norm]; ok {
		return norm
	}
	for _, code := range sectorOrder {
		for _, kw := range Sectors[code].Keywords {
			if containsEither(norm, Normalize(kw)) {
				return code
			}
		}
	}
	for _, code := range sectorOrder {
		for _, sub := range Sectors[code].SubSectors {
			for _, kw := range sub.Keywords {
				if containsEither(norm, Normalize(kw)) {
					return code
				}
			}
		}
	}
	return ""
}

// CalculateIndustryRelevance returns the matrix cell for (a, b), the
// symmetric cell when only the reverse direction is declared, and the
// default otherwise.
func CalculateIndustryRelevance(a, b string) float64 {
	if row, ok := relevanceMatrix[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	if row, ok := relevanceMatrix[b]; ok {
		if v, ok := row[a]; ok {
			return v
		}
	}
	return defaultRelevance
}

// sectorAliases maps free-form sector spellings to canonical codes.
var sectorAliases = map[string]string{
	"BIO":            BioHealth,
	"BIOHEALTH":      BioHealth,
	"HEALTH":         BioHealth,
	"HEALTHCARE":     BioHealth,
	"MEDICAL":        BioHealth,
	"바이오":            BioHealth,
	"의료":             BioHealth,
	"IT":             ICT,
	"SW":             ICT,
	"SOFTWARE":       ICT,
	"정보통신":           ICT,
	"소프트웨어":          ICT,
	"MANUFACTURE":    Manufacturing,
	"제조":             Manufacturing,
	"제조업":            Manufacturing,
	"MATERIAL":       Materials,
	"소재":             Materials,
	"소재부품":           Materials,
	"ENERGY_ENV":     Energy,
	"에너지":            Energy,
	"환경":             Environment,
	"ENV":            Environment,
	"농업":             Agriculture,
	"AGRI":           Agriculture,
	"해양":             Marine,
	"수산":             Marine,
	"국방":             Defense,
	"건설":             Construction,
	"문화":             Contents,
	"콘텐츠":            Contents,
	"CONTENT":        Contents,
	"CULTURE":        Contents,
}

// NormalizeSectorCode maps an organization's free-form sector to one of
// the closed industry codes. Unresolvable input returns "".
func NormalizeSectorCode(sector string) string {
	norm := Normalize(sector)
	if norm == "" {
		return ""
	}
	if _, ok := Sectors[norm]; ok {
		return norm
	}
	if code, ok := sectorAliases[norm]; ok {
		return code
	}
	return FindIndustrySector(sector)
}

// GetIndustryRelevance scores how relevant an organization's sector is to
// a program's classified industry: 1.0 on exact match, the explicit matrix
// value in either direction, and 0.2 when the pair is unrelated.
func GetIndustryRelevance(orgSector, programIndustry string) float64 {
	a := NormalizeSectorCode(orgSector)
	b := NormalizeSectorCode(programIndustry)
	if a == "" || b == "" {
		return 0.2
	}
	if a == b {
		return 1.0
	}
	if row, ok := relevanceMatrix[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	if row, ok := relevanceMatrix[b]; ok {
		if v, ok := row[a]; ok {
			return v
		}
	}
	return 0.2
}
