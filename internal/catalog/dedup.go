package catalog

import (
	"regexp"
	"strings"
)

var (
	leadingYearRe  = regexp.MustCompile(`^\d{4}년도?\s+`)
	trailingParenRe = regexp.MustCompile(`\s*[(（][^()（）]*[)）]\s*$`)
	yearSuffixRe   = regexp.MustCompile(`\s*[(（]?\d{4}년도?[)）]?\s*$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces an announcement title to its dedup form: the
// leading year prefix, trailing parentheticals and year suffixes are
// stripped, whitespace is collapsed, and the result is lowercased.
// The function is idempotent.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	t = leadingYearRe.ReplaceAllString(t, "")
	for {
		next := trailingParenRe.ReplaceAllString(t, "")
		next = yearSuffixRe.ReplaceAllString(next, "")
		if next == t {
			break
		}
		t = next
	}
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}

// DedupKey identifies announcements that are re-postings of the same
// program: same agency, same normalized title.
func (p *Program) DedupKey() string {
	return p.AgencyID + "|" + NormalizeTitle(p.Title)
}

// DedupPrograms collapses each dedup group to its best representative.
// Within a group the pick order is: has a deadline, then has a budget,
// then earliest scrape time. Input order does not affect the outcome.
func DedupPrograms(programs []*Program) []*Program {
	best := make(map[string]*Program, len(programs))
	order := make([]string, 0, len(programs))
	for _, p := range programs {
		key := p.DedupKey()
		cur, seen := best[key]
		if !seen {
			best[key] = p
			order = append(order, key)
			continue
		}
		if betterDedupPick(p, cur) {
			best[key] = p
		}
	}
	out := make([]*Program, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func betterDedupPick(a, b *Program) bool {
	if (a.Deadline != nil) != (b.Deadline != nil) {
		return a.Deadline != nil
	}
	if (a.BudgetAmountKRW != nil) != (b.BudgetAmountKRW != nil) {
		return a.BudgetAmountKRW != nil
	}
	return a.ScrapedAt.Before(b.ScrapedAt)
}
