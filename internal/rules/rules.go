package rules

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"WooFeedSync/internal/feed"
)

// MinKeywordLen drops keywords shorter than this many characters.
const MinKeywordLen = 3

var keywordSep = regexp.MustCompile(`[,|;]`)

// Rule maps keywords to a category term.
type Rule struct {
	TermName   string
	ParentName string
	ExplicitID int
	Keywords   []string
	Level      int
	// Line is the sheet row the rule was read from.
	Line int
}

// SplitKeywords lowercases s and splits it on "," "|" and ";".
func SplitKeywords(s string) []string {
	parts := keywordSep.Split(strings.ToLower(s), -1)
	return lo.FilterMap(parts, func(k string, _ int) (string, bool) {
		k = strings.TrimSpace(k)
		return k, utf8.RuneCountInString(k) >= MinKeywordLen
	})
}

// FromRecord parses one rule row. Rows without term_name give false.
func FromRecord(r *feed.Record) (Rule, bool) {
	term := r.Value(feed.ColTermName)
	if term == "" {
		return Rule{}, false
	}
	rule := Rule{
		TermName:   term,
		ParentName: r.Value(feed.ColParentName),
		Line:       r.Line(),
	}
	if id, ok := r.Int(feed.ColWooCatID); ok && id > 0 {
		rule.ExplicitID = id
	}
	if lvl, ok := r.Int(feed.ColLevel); ok {
		rule.Level = lvl
	}
	kw := r.Value(feed.ColAmazonKeywords)
	if kw == "" {
		kw = r.Value(feed.ColRuleKeywords)
	}
	rule.Keywords = SplitKeywords(kw)
	return rule, true
}

// FromTable parses every rule row in table order.
func FromTable(t *feed.Table) []Rule {
	return lo.FilterMap(t.Records(), func(r *feed.Record, _ int) (Rule, bool) {
		return FromRecord(r)
	})
}

// Score sums the lengths of the keywords found in text and adds Level*2.
// A rule with no keyword found scores 0. text must already be lowercased.
func (r Rule) Score(text string) int {
	score, matched := 0, false
	for _, k := range r.Keywords {
		if strings.Contains(text, k) {
			score += utf8.RuneCountInString(k)
			matched = true
		}
	}
	if !matched {
		return 0
	}
	return score + r.Level*2
}

// Best returns the rule with the strictly highest positive score. Ties keep
// the earlier rule.
func Best(rules []Rule, text string) (*Rule, int) {
	text = strings.ToLower(text)
	var best *Rule
	bestScore := 0
	for i := range rules {
		if s := rules[i].Score(text); s > bestScore {
			best, bestScore = &rules[i], s
		}
	}
	return best, bestScore
}
