// Package browse decides which listings a shopper sees for a given taxonomy
// selection.
package browse

// SearchCategoryData is the discovery snapshot a listing carries: where it
// sits in the taxonomy and which filter options it is tagged with.
type SearchCategoryData struct {
	IsDiscoverable        *bool   `json:"isDiscoverable"`
	CatalogueID           *int64  `json:"catalogueId"`
	CategoryID            *int64  `json:"categoryId"`
	SubCategorySelections []int64 `json:"subCategorySelections"`
}

// Discoverable reports the opt-out flag; unset means discoverable.
func (d SearchCategoryData) Discoverable() bool {
	return d.IsDiscoverable == nil || *d.IsDiscoverable
}

// FilterState is a shopper's current selection. A nil or empty field places
// no constraint on that axis.
type FilterState struct {
	CatalogueID           *int64  `json:"catalogueId"`
	CategoryID            *int64  `json:"categoryId"`
	SubCategorySelections []int64 `json:"subCategorySelections"`
}

// SetCatalogue selects a catalogue. Choosing a different one clears the
// category and option selections beneath it.
func (f *FilterState) SetCatalogue(id *int64) {
	if sameID(f.CatalogueID, id) {
		return
	}
	f.CatalogueID = copyID(id)
	f.CategoryID = nil
	f.SubCategorySelections = []int64{}
}

// SetCategory selects a category. Choosing a different one clears the
// option selections only.
func (f *FilterState) SetCategory(id *int64) {
	if sameID(f.CategoryID, id) {
		return
	}
	f.CategoryID = copyID(id)
	f.SubCategorySelections = []int64{}
}

// ToggleSelection adds optionID to the selections, or removes it if present.
func (f *FilterState) ToggleSelection(optionID int64) {
	for i, id := range f.SubCategorySelections {
		if id == optionID {
			f.SubCategorySelections = append(f.SubCategorySelections[:i:i], f.SubCategorySelections[i+1:]...)
			return
		}
	}
	f.SubCategorySelections = append(f.SubCategorySelections, optionID)
}

// Clear drops every constraint.
func (f *FilterState) Clear() {
	*f = FilterState{SubCategorySelections: []int64{}}
}

// Active reports whether any axis constrains the result set.
func (f FilterState) Active() bool {
	return f.CatalogueID != nil || f.CategoryID != nil || len(f.SubCategorySelections) > 0
}

// Matches decides whether a listing belongs in the filtered result set.
// Opted-out listings never match. Option selections are OR-ed: one shared
// option is enough. Option ids the listing carries but that no longer exist
// simply never match anything.
func Matches(f FilterState, d SearchCategoryData) bool {
	if !d.Discoverable() {
		return false
	}
	if !f.Active() {
		return true
	}
	if f.CatalogueID != nil && !sameID(f.CatalogueID, d.CatalogueID) {
		return false
	}
	if f.CategoryID != nil && !sameID(f.CategoryID, d.CategoryID) {
		return false
	}
	if len(f.SubCategorySelections) > 0 && !intersects(f.SubCategorySelections, d.SubCategorySelections) {
		return false
	}
	return true
}

func intersects(selected, tagged []int64) bool {
	set := make(map[int64]struct{}, len(tagged))
	for _, id := range tagged {
		set[id] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
