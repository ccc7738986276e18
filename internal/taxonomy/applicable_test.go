package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicableFilters(t *testing.T) {
	subject := &Filter{ID: 1, Name: "Subject", SortOrder: 1, Options: []*FilterOption{
		{ID: 12, FilterID: 1, Name: "Landscape", SortOrder: 2, IsActive: true},
		{ID: 10, FilterID: 1, Name: "Portrait", SortOrder: 0, IsActive: true},
		{ID: 11, FilterID: 1, Name: "Retired", SortOrder: 1, IsActive: false},
	}}
	style := &Filter{ID: 2, Name: "Style", SortOrder: 0, Options: []*FilterOption{}}

	out := ApplicableFilters([]*Filter{subject, style})

	assert.Len(t, out, 2)
	assert.Equal(t, "Style", out[0].Name)
	assert.Equal(t, "Subject", out[1].Name)

	names := []string{}
	for _, o := range out[1].Options {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"Portrait", "Landscape"}, names)

	// input untouched
	assert.Len(t, subject.Options, 3)
	assert.Equal(t, int64(12), subject.Options[0].ID)
}

func TestApplicableFilters_Empty(t *testing.T) {
	assert.Empty(t, ApplicableFilters(nil))
}

func TestBuildTree(t *testing.T) {
	catalogues := []*Catalogue{{ID: 2, Name: "Merch"}, {ID: 1, Name: "Art"}}
	categories := []*Category{
		{ID: 10, CatalogueID: 1, Name: "Illustration"},
		{ID: 11, CatalogueID: 1, Name: "Painting"},
		{ID: 12, CatalogueID: 3, Name: "Orphan"},
	}

	tree := buildTree(catalogues, categories)

	assert.Len(t, tree, 2)
	assert.Equal(t, "Merch", tree[0].Name)
	assert.Empty(t, tree[0].Categories)
	assert.Len(t, tree[1].Categories, 2)
	assert.Nil(t, catalogues[1].Categories)
}
