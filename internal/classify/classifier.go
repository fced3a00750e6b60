// Package classify labels funding announcements with an industry code and
// derived signals. Classification is deterministic: a single pass over
// fixed keyword and ministry tables, no I/O.
package classify

import (
	"strings"

	"grantmatch/internal/taxonomy"
)

const (
	ministryWeight   = 10
	keywordWeight    = 5
	confidenceDenom  = 25.0
	fallbackConfidence = 0.5
)

// ministrySectors maps an announcing ministry to the industry codes it is
// a strong prior for. A ministry may point to several sectors.
var ministrySectors = map[string][]string{
	"과학기술정보통신부": {taxonomy.ICT},
	"보건복지부":     {taxonomy.BioHealth},
	"식품의약품안전처":  {taxonomy.BioHealth},
	"질병관리청":     {taxonomy.BioHealth},
	"산업통상자원부":   {taxonomy.Manufacturing, taxonomy.Materials, taxonomy.Energy},
	"환경부":       {taxonomy.Environment},
	"기상청":       {taxonomy.Environment},
	"농림축산식품부":   {taxonomy.Agriculture},
	"농촌진흥청":     {taxonomy.Agriculture},
	"산림청":       {taxonomy.Agriculture},
	"해양수산부":     {taxonomy.Marine},
	"방위사업청":     {taxonomy.Defense},
	"국방부":       {taxonomy.Defense},
	"국토교통부":     {taxonomy.Construction},
	"문화체육관광부":   {taxonomy.Contents},
}

type keywordEntry struct {
	keyword  string
	industry string
}

// keywordTable drives the title scan. Declaration order breaks score ties:
// the industry declared earliest wins.
var keywordTable = []keywordEntry{
	{"인공지능", taxonomy.ICT},
	{"AI", taxonomy.ICT},
	{"빅데이터", taxonomy.ICT},
	{"데이터", taxonomy.ICT},
	{"클라우드", taxonomy.ICT},
	{"소프트웨어", taxonomy.ICT},
	{"SW", taxonomy.ICT},
	{"ICT", taxonomy.ICT},
	{"정보통신", taxonomy.ICT},
	{"사물인터넷", taxonomy.ICT},
	{"IoT", taxonomy.ICT},
	{"플랫폼", taxonomy.ICT},
	{"디지털", taxonomy.ICT},
	{"블록체인", taxonomy.ICT},
	{"사이버보안", taxonomy.ICT},
	{"정보보호", taxonomy.ICT},
	{"메타버스", taxonomy.ICT},
	{"5G", taxonomy.ICT},
	{"6G", taxonomy.ICT},
	{"바이오", taxonomy.BioHealth},
	{"의료", taxonomy.BioHealth},
	{"헬스케어", taxonomy.BioHealth},
	{"제약", taxonomy.BioHealth},
	{"신약", taxonomy.BioHealth},
	{"임상", taxonomy.BioHealth},
	{"진단", taxonomy.BioHealth},
	{"치료제", taxonomy.BioHealth},
	{"백신", taxonomy.BioHealth},
	{"의료기기", taxonomy.BioHealth},
	{"치매", taxonomy.BioHealth},
	{"보건", taxonomy.BioHealth},
	{"제조", taxonomy.Manufacturing},
	{"스마트공장", taxonomy.Manufacturing},
	{"스마트팩토리", taxonomy.Manufacturing},
	{"공정", taxonomy.Manufacturing},
	{"양산", taxonomy.Manufacturing},
	{"로봇", taxonomy.Manufacturing},
	{"기계", taxonomy.Manufacturing},
	{"뿌리산업", taxonomy.Manufacturing},
	{"소재", taxonomy.Materials},
	{"부품", taxonomy.Materials},
	{"소부장", taxonomy.Materials},
	{"나노", taxonomy.Materials},
	{"반도체", taxonomy.Materials},
	{"디스플레이", taxonomy.Materials},
	{"에너지", taxonomy.Energy},
	{"신재생", taxonomy.Energy},
	{"태양광", taxonomy.Energy},
	{"풍력", taxonomy.Energy},
	{"수소", taxonomy.Energy},
	{"이차전지", taxonomy.Energy},
	{"배터리", taxonomy.Energy},
	{"원자력", taxonomy.Energy},
	{"탄소중립", taxonomy.Environment},
	{"환경", taxonomy.Environment},
	{"기후", taxonomy.Environment},
	{"순환경제", taxonomy.Environment},
	{"재활용", taxonomy.Environment},
	{"미세먼지", taxonomy.Environment},
	{"농업", taxonomy.Agriculture},
	{"농식품", taxonomy.Agriculture},
	{"스마트팜", taxonomy.Agriculture},
	{"축산", taxonomy.Agriculture},
	{"식품", taxonomy.Agriculture},
	{"해양", taxonomy.Marine},
	{"수산", taxonomy.Marine},
	{"조선", taxonomy.Marine},
	{"항만", taxonomy.Marine},
	{"국방", taxonomy.Defense},
	{"방위", taxonomy.Defense},
	{"방산", taxonomy.Defense},
	{"건설", taxonomy.Construction},
	{"스마트시티", taxonomy.Construction},
	{"교통", taxonomy.Construction},
	{"철도", taxonomy.Construction},
	{"콘텐츠", taxonomy.Contents},
	{"게임", taxonomy.Contents},
	{"문화", taxonomy.Contents},
	{"관광", taxonomy.Contents},
	{"영상", taxonomy.Contents},
}

// industryDeclOrder caches the first declaration index of each industry in
// keywordTable for tie-breaking.
var industryDeclOrder = func() map[string]int {
	order := make(map[string]int)
	for i, e := range keywordTable {
		if _, seen := order[e.industry]; !seen {
			order[e.industry] = i
		}
	}
	return order
}()

// Classification is the classifier output for one announcement.
type Classification struct {
	Industry        string
	Confidence      float64
	MinistryBased   bool
	Score           int
	MatchedKeywords []string
}

// ExtendedClassification adds the regional-filter signal used for SME
// announcements.
type ExtendedClassification struct {
	Classification
	RequiresRegionalFilter bool
	RegionalKeywords       []string
}

// ClassifyProgram scores (title, programName, ministry) against the
// ministry and keyword tables and returns the winning industry. With no
// signal at all the result is GENERAL at confidence 0.5.
func ClassifyProgram(title, programName, ministry string) Classification {
	scores := map[string]int{}
	ministryBased := false
	if sectors, ok := ministrySectors[strings.TrimSpace(ministry)]; ok {
		for _, s := range sectors {
			scores[s] += ministryWeight
		}
		ministryBased = true
	}

	text := taxonomy.Normalize(title + " " + programName)
	var matched []string
	for _, e := range keywordTable {
		if strings.Contains(text, taxonomy.Normalize(e.keyword)) {
			scores[e.industry] += keywordWeight
			matched = append(matched, e.keyword)
		}
	}

	if len(scores) == 0 {
		return Classification{Industry: taxonomy.General, Confidence: fallbackConfidence}
	}

	best := ""
	bestScore := -1
	for industry, score := range scores {
		if score > bestScore || (score == bestScore && declaredBefore(industry, best)) {
			best = industry
			bestScore = score
		}
	}

	conf := float64(bestScore) / confidenceDenom
	if conf > 1.0 {
		conf = 1.0
	}
	return Classification{
		Industry:        best,
		Confidence:      conf,
		MinistryBased:   ministryBased,
		Score:           bestScore,
		MatchedKeywords: matched,
	}
}

// ClassifyProgramExtended additionally scans title+description for
// regional keywords, flagging announcements that need a location filter.
func ClassifyProgramExtended(title, programName, ministry, description string) ExtendedClassification {
	base := ClassifyProgram(title, programName, ministry)
	regional := matchRegionalKeywords(title + " " + description)
	return ExtendedClassification{
		Classification:         base,
		RequiresRegionalFilter: len(regional) > 0,
		RegionalKeywords:       regional,
	}
}

func declaredBefore(a, b string) bool {
	if b == "" {
		return true
	}
	ai, aok := industryDeclOrder[a]
	bi, bok := industryDeclOrder[b]
	if !aok || !bok {
		return aok
	}
	return ai < bi
}
