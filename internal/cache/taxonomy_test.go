package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/rules"
)

func TestTaxonomy_GetOrLoadAndInvalidate(t *testing.T) {
	calls := 0
	remote := []CategoryRef{{ID: 1, Name: "Phones", Parent: 0}, {ID: 2, Name: "Phones", Parent: 9}}
	tx := NewTaxonomy(Loaders{Categories: func() ([]CategoryRef, error) {
		calls++
		return remote, nil
	}})

	c, err := tx.GetCategory("PHONES", 9)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.ID, "identity is (name, parent)")

	c, err = tx.GetCategory("phones", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ID)

	c, err = tx.GetCategory("phones", 5)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 1, calls)

	remote = append(remote, CategoryRef{ID: 3, Name: "Cases"})
	tx.InvalidateCategories()
	c, err = tx.GetCategoryByName("cases")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, calls)
}

func TestTaxonomy_BrandsByName(t *testing.T) {
	tx := NewTaxonomy(Loaders{Brands: func() ([]BrandRef, error) {
		return []BrandRef{{ID: 7, Name: "Acme"}}, nil
	}})
	b, err := tx.GetBrand(" acme ")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 7, b.ID)
}

func TestTaxonomy_RulesFailureMeansNoRules(t *testing.T) {
	tx := NewTaxonomy(Loaders{
		Categories: func() ([]CategoryRef, error) { return nil, nil },
		Rules:      func() ([]rules.Rule, error) { return nil, errors.New("no sheet") },
	})
	require.NoError(t, tx.Warm())
	rs, err := tx.GetRules()
	require.NoError(t, err)
	assert.Empty(t, rs)
}
