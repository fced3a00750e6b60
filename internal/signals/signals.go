// Package signals detects active anti-correlations between an
// organization and a program: sector pairs where a superficial keyword
// match hides a real mismatch. The catalog is closed and rule-based; the
// caller sums penalties and clamps before applying.
package signals

import (
	"fmt"
	"strings"

	"grantmatch/internal/catalog"
	"grantmatch/internal/taxonomy"
)

// Signal is one fired penalty rule.
type Signal struct {
	Code    string `json:"code"`
	Penalty int    `json:"penalty"`
	Detail  string `json:"detail"`
}

// Codes of the rule catalog.
const (
	CodeDomainMismatchBio         = "DOMAIN_MISMATCH_BIO"
	CodeTechIrrelevantManufacture = "TECH_IRRELEVANT_MANUFACTURING"
	CodeDomainMismatchMarine      = "DOMAIN_MISMATCH_MARINE"
	CodeDomainMismatchAgri        = "DOMAIN_MISMATCH_AGRICULTURE"
	CodeDomainMismatchDefense     = "DOMAIN_MISMATCH_DEFENSE"
	CodeScaleMismatchDemo         = "SCALE_MISMATCH_DEMONSTRATION"
)

// MinTotal is the clamp floor applied to the summed penalties.
const MinTotal = -10

var bioHardNegatives = []string{
	"임상", "치매", "신약", "약물", "치료제", "세포치료", "유전자치료", "백신",
	"항체", "의약품", "의료기기인허가", "독성시험", "동물실험", "전임상", "신의료기술",
}

var manufacturingHardNegatives = []string{
	"양산", "제조공정", "공정개선", "소재", "부품", "소부장",
}

var marineHardNegatives = []string{
	"양식", "어선", "항만건설", "해양플랜트", "수산물", "어업",
}

var agricultureHardNegatives = []string{
	"노지재배", "축사", "병해충", "비료", "종자생산", "영농",
}

// agricultureExemptions keep smart-farm digitalization calls scorable for
// ICT organizations.
var agricultureExemptions = []string{"스마트팜", "스마트농업", "정보화", "디지털"}

var defenseHardNegatives = []string{
	"무기체계", "탄약", "함정건조", "군수품", "화력",
}

// defenseExemptions keep cyber/software defense calls scorable.
var defenseExemptions = []string{"사이버", "보안", "소프트웨어", "SW", "AI", "인공지능"}

var demonstrationPatterns = []string{"대규모 실증", "대형 실증", "실증단지"}

func containsAny(text string, keywords []string) (string, bool) {
	norm := taxonomy.Normalize(text)
	for _, kw := range keywords {
		if strings.Contains(norm, taxonomy.Normalize(kw)) {
			return kw, true
		}
	}
	return "", false
}

// Detect runs the rule catalog for one (organization, program) pair.
// programIndustry is the classifier's label; title is the raw
// announcement title.
func Detect(org *catalog.Organization, programIndustry, title string) []Signal {
	var out []Signal
	orgSector := taxonomy.NormalizeSectorCode(org.IndustrySector)

	if orgSector == taxonomy.ICT {
		switch programIndustry {
		case taxonomy.BioHealth:
			if kw, hit := containsAny(title, bioHardNegatives); hit {
				out = append(out, Signal{
					Code:    CodeDomainMismatchBio,
					Penalty: -8,
					Detail:  fmt.Sprintf("ICT 기업과 바이오 전문 과제 간 불일치 (키워드: %s)", kw),
				})
			}
		case taxonomy.Manufacturing:
			if kw, hit := containsAny(title, manufacturingHardNegatives); hit {
				out = append(out, Signal{
					Code:    CodeTechIrrelevantManufacture,
					Penalty: -5,
					Detail:  fmt.Sprintf("ICT 기업과 제조 현장 과제 간 불일치 (키워드: %s)", kw),
				})
			}
		case taxonomy.Marine:
			if kw, hit := containsAny(title, marineHardNegatives); hit {
				out = append(out, Signal{
					Code:    CodeDomainMismatchMarine,
					Penalty: -5,
					Detail:  fmt.Sprintf("ICT 기업과 해양수산 현장 과제 간 불일치 (키워드: %s)", kw),
				})
			}
		case taxonomy.Agriculture:
			if _, exempt := containsAny(title, agricultureExemptions); !exempt {
				if kw, hit := containsAny(title, agricultureHardNegatives); hit {
					out = append(out, Signal{
						Code:    CodeDomainMismatchAgri,
						Penalty: -5,
						Detail:  fmt.Sprintf("ICT 기업과 농업 현장 과제 간 불일치 (키워드: %s)", kw),
					})
				}
			}
		case taxonomy.Defense:
			if _, exempt := containsAny(title, defenseExemptions); !exempt {
				if kw, hit := containsAny(title, defenseHardNegatives); hit {
					out = append(out, Signal{
						Code:    CodeDomainMismatchDefense,
						Penalty: -5,
						Detail:  fmt.Sprintf("ICT 기업과 재래식 국방 과제 간 불일치 (키워드: %s)", kw),
					})
				}
			}
		}
	}

	if org.CompanyScale == catalog.ScaleStartup || org.CompanyScale == catalog.ScaleMicro {
		if kw, hit := containsAny(title, demonstrationPatterns); hit {
			out = append(out, Signal{
				Code:    CodeScaleMismatchDemo,
				Penalty: -4,
				Detail:  fmt.Sprintf("창업기업과 대규모 실증 과제 간 규모 불일치 (키워드: %s)", kw),
			})
		}
	}

	return out
}

// ClampTotal sums penalties and clamps to [MinTotal, 0].
func ClampTotal(sigs []Signal) int {
	total := 0
	for _, s := range sigs {
		total += s.Penalty
	}
	if total < MinTotal {
		total = MinTotal
	}
	if total > 0 {
		total = 0
	}
	return total
}
