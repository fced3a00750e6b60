package classify

import (
	"regexp"

	"grantmatch/internal/catalog"
)

// ApplicationType classifies how an announcement accepts applicants.
type ApplicationType string

const (
	TypeOpenCompetition   ApplicationType = "OPEN_COMPETITION"
	TypeDesignated        ApplicationType = "DESIGNATED"
	TypeDemandSurvey      ApplicationType = "DEMAND_SURVEY"
	TypeInstitutionalOnly ApplicationType = "INSTITUTIONAL_ONLY"
	TypeConsolidated      ApplicationType = "CONSOLIDATED"
	TypeUnknown           ApplicationType = "UNKNOWN"
)

var (
	designatedRe    = regexp.MustCompile(`지정\s*과제|지정\s*공모|수의\s*계약|지명\s*공모`)
	demandSurveyRe  = regexp.MustCompile(`수요\s*조사|기술\s*수요|수요조사\s*안내|니즈\s*조사`)
	institutionalRe = regexp.MustCompile(`출연\s*연구?기관\s*(한정|대상)|국공립\s*연구기관|공공기관\s*한정`)
	consolidatedRe  = regexp.MustCompile(`통합\s*공고|통합\s*시행\s*계획`)
	openRe          = regexp.MustCompile(`자유\s*공모|공개\s*모집|자유\s*응모`)

	// rdContextRe downgrades a description-level designated hit when the
	// text is a genuine R&D call; many ministries reuse 지정과제 phrasing
	// inside open technology-development announcements. A designated
	// pattern in the title itself is authoritative and never downgraded.
	rdContextRe = regexp.MustCompile(`기술개발|R&D|연구개발|과제공모|기술혁신`)
)

// DetectApplicationType classifies an announcement by regex over the
// combined title and description.
func DetectApplicationType(title, description string) ApplicationType {
	text := title + " " + description
	switch {
	case demandSurveyRe.MatchString(text):
		return TypeDemandSurvey
	case consolidatedRe.MatchString(text):
		return TypeConsolidated
	case institutionalRe.MatchString(text):
		return TypeInstitutionalOnly
	case designatedRe.MatchString(title):
		return TypeDesignated
	case designatedRe.MatchString(description):
		if rdContextRe.MatchString(text) {
			return TypeOpenCompetition
		}
		return TypeDesignated
	case openRe.MatchString(text):
		return TypeOpenCompetition
	default:
		return TypeUnknown
	}
}

// IsConsolidatedAnnouncement detects umbrella postings structurally: no
// deadline, no application start, and no budget means the posting refers
// applicants elsewhere for the real calls.
func IsConsolidatedAnnouncement(p *catalog.Program) bool {
	return p.Deadline == nil && p.ApplicationStart == nil && p.BudgetAmountKRW == nil
}
