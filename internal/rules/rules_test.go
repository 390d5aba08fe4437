package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/feed"
)

func TestBest_MoreKeywordsWin(t *testing.T) {
	rs := []Rule{
		{TermName: "A", Keywords: []string{"phone"}},
		{TermName: "B", Keywords: []string{"smart", "phone"}},
	}
	best, score := Best(rs, "Smartphone case")
	require.NotNil(t, best)
	assert.Equal(t, "B", best.TermName)
	assert.Equal(t, 10, score)
}

func TestBest_TieKeepsTableOrder(t *testing.T) {
	rs := []Rule{
		{TermName: "first", Keywords: []string{"case"}},
		{TermName: "second", Keywords: []string{"case"}},
	}
	best, _ := Best(rs, "phone case")
	require.NotNil(t, best)
	assert.Equal(t, "first", best.TermName)
}

func TestBest_LevelBonusNeedsMatch(t *testing.T) {
	rs := []Rule{
		{TermName: "heavy", Keywords: []string{"laptop"}, Level: 10},
		{TermName: "light", Keywords: []string{"case"}, Level: 1},
	}
	best, score := Best(rs, "phone case")
	require.NotNil(t, best)
	assert.Equal(t, "light", best.TermName)
	assert.Equal(t, 6, score)

	best, score = Best(rs, "nothing here")
	assert.Nil(t, best)
	assert.Zero(t, score)
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"smart", "phone", "móvil"}, SplitKeywords("Smart| phone ;TV,Móvil"))
	assert.Empty(t, SplitKeywords(""))
}

func TestFromTable(t *testing.T) {
	tbl := feed.NewTable("CATEGORÍAS",
		[]string{"term_name", "parent_name", "woo_cat_id", "rule_keywords", "amazon_keywords", "level"},
		[][]string{
			{"Phones", "Electronics", "", "phone,mobile", "", "2"},
			{"", "", "", "x", "", ""},
			{"Cases", "", "15", "case", "cover|sleeve", ""},
		})

	rs := FromTable(tbl)
	require.Len(t, rs, 2)
	assert.Equal(t, Rule{TermName: "Phones", ParentName: "Electronics", Keywords: []string{"phone", "mobile"}, Level: 2, Line: 2}, rs[0])
	assert.Equal(t, 15, rs[1].ExplicitID)
	assert.Equal(t, []string{"cover", "sleeve"}, rs[1].Keywords, "amazon_keywords takes precedence")
}
