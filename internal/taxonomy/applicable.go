package taxonomy

import "sort"

// ApplicableFilters turns the filters assigned to a category into what a
// shopper is offered: each filter keeps only its active options, ordered by
// sort order. The input is not modified.
func ApplicableFilters(assigned []*Filter) []*Filter {
	out := make([]*Filter, 0, len(assigned))
	for _, f := range assigned {
		cp := *f
		cp.Options = make([]*FilterOption, 0, len(f.Options))
		for _, o := range f.Options {
			if o.IsActive {
				cp.Options = append(cp.Options, o)
			}
		}
		sort.SliceStable(cp.Options, func(i, j int) bool {
			a, b := cp.Options[i], cp.Options[j]
			if a.SortOrder != b.SortOrder {
				return a.SortOrder < b.SortOrder
			}
			return a.ID < b.ID
		})
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// buildTree nests categories under their catalogues, preserving the order
// of both inputs.
func buildTree(catalogues []*Catalogue, categories []*Category) []*Catalogue {
	byCatalogue := make(map[int64][]*Category, len(catalogues))
	for _, c := range categories {
		byCatalogue[c.CatalogueID] = append(byCatalogue[c.CatalogueID], c)
	}

	tree := make([]*Catalogue, 0, len(catalogues))
	for _, cat := range catalogues {
		cp := *cat
		cp.Categories = byCatalogue[cat.ID]
		if cp.Categories == nil {
			cp.Categories = []*Category{}
		}
		tree = append(tree, &cp)
	}
	return tree
}
