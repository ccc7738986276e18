package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arkom-be/internal/browse"
	"arkom-be/internal/commission"
	"arkom-be/internal/listing"
	"arkom-be/internal/taxonomy"
	"arkom-be/internal/theme"
	"arkom-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/* ---------- MOCKS ---------- */

type MockTaxonomy struct {
	mock.Mock
}

func (m *MockTaxonomy) Tree(ctx context.Context) ([]*taxonomy.Catalogue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Catalogue), args.Error(1)
}

func (m *MockTaxonomy) FiltersForCategory(ctx context.Context, categoryID int64) ([]*taxonomy.Filter, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) ListCatalogues(ctx context.Context) ([]*taxonomy.Catalogue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Catalogue), args.Error(1)
}

func (m *MockTaxonomy) CreateCatalogue(ctx context.Context, input taxonomy.CreateCatalogueInput) (*taxonomy.Catalogue, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Catalogue), args.Error(1)
}

func (m *MockTaxonomy) UpdateCatalogue(ctx context.Context, id int64, input taxonomy.UpdateCatalogueInput) (*taxonomy.Catalogue, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Catalogue), args.Error(1)
}

func (m *MockTaxonomy) DeleteCatalogue(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaxonomy) ReorderCatalogues(ctx context.Context, ids []int64) ([]*taxonomy.Catalogue, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Catalogue), args.Error(1)
}

func (m *MockTaxonomy) ListCategories(ctx context.Context, catalogueID int64) ([]*taxonomy.Category, error) {
	args := m.Called(ctx, catalogueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Category), args.Error(1)
}

func (m *MockTaxonomy) GetCategory(ctx context.Context, id int64) (*taxonomy.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Category), args.Error(1)
}

func (m *MockTaxonomy) CreateCategory(ctx context.Context, input taxonomy.CreateCategoryInput) (*taxonomy.Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Category), args.Error(1)
}

func (m *MockTaxonomy) UpdateCategory(ctx context.Context, id int64, input taxonomy.UpdateCategoryInput) (*taxonomy.Category, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Category), args.Error(1)
}

func (m *MockTaxonomy) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaxonomy) ReorderCategories(ctx context.Context, catalogueID int64, ids []int64) ([]*taxonomy.Category, error) {
	args := m.Called(ctx, catalogueID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Category), args.Error(1)
}

func (m *MockTaxonomy) ListFilters(ctx context.Context) ([]*taxonomy.Filter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) CreateFilter(ctx context.Context, input taxonomy.CreateFilterInput) (*taxonomy.Filter, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) UpdateFilter(ctx context.Context, id int64, input taxonomy.UpdateFilterInput) (*taxonomy.Filter, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) DeleteFilter(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaxonomy) ReorderFilters(ctx context.Context, ids []int64) ([]*taxonomy.Filter, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) CreateOption(ctx context.Context, input taxonomy.CreateOptionInput) (*taxonomy.FilterOption, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.FilterOption), args.Error(1)
}

func (m *MockTaxonomy) UpdateOption(ctx context.Context, id int64, input taxonomy.UpdateOptionInput) (*taxonomy.FilterOption, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.FilterOption), args.Error(1)
}

func (m *MockTaxonomy) DeleteOption(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaxonomy) ReorderOptions(ctx context.Context, filterID int64, ids []int64) ([]*taxonomy.FilterOption, error) {
	args := m.Called(ctx, filterID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.FilterOption), args.Error(1)
}

func (m *MockTaxonomy) AssignedFilters(ctx context.Context, categoryID int64) ([]*taxonomy.Filter, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*taxonomy.Filter), args.Error(1)
}

func (m *MockTaxonomy) AssignFilter(ctx context.Context, categoryID, filterID int64) error {
	return m.Called(ctx, categoryID, filterID).Error(0)
}

func (m *MockTaxonomy) UnassignFilter(ctx context.Context, categoryID, filterID int64) error {
	return m.Called(ctx, categoryID, filterID).Error(0)
}

type MockListings struct {
	mock.Mock
}

func (m *MockListings) Create(ctx context.Context, artistID int64, input listing.CreateListingInput) (*listing.Listing, error) {
	args := m.Called(ctx, artistID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListings) Update(ctx context.Context, artistID, id int64, input listing.UpdateListingInput) (*listing.Listing, error) {
	args := m.Called(ctx, artistID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListings) Get(ctx context.Context, id int64) (*listing.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListings) Delete(ctx context.Context, artistID, id int64) error {
	return m.Called(ctx, artistID, id).Error(0)
}

func (m *MockListings) ListByArtist(ctx context.Context, artistID int64) ([]*listing.Listing, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*listing.Listing), args.Error(1)
}

func (m *MockListings) Browse(ctx context.Context, state browse.FilterState, page, limit int) (*listing.BrowseResult, error) {
	args := m.Called(ctx, state, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.BrowseResult), args.Error(1)
}

type MockThemes struct {
	mock.Mock
}

func (m *MockThemes) Get(ctx context.Context, userID int64) (theme.Palette, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(theme.Palette), args.Error(1)
}

func (m *MockThemes) Update(ctx context.Context, userID int64, p theme.Palette) (theme.Palette, error) {
	args := m.Called(ctx, userID, p)
	return args.Get(0).(theme.Palette), args.Error(1)
}

/* ---------- HELPERS ---------- */

type testResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   bool            `json:"error"`
	Meta    *Pagination     `json:"meta"`
}

type caller struct {
	id   int64
	role string
}

var (
	anonymous = caller{}
	member    = caller{id: 7, role: utils.RoleUser}
	admin     = caller{id: 1, role: utils.RoleAdmin}
)

func newTestRouter(svc Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(svc, []string{"http://localhost:3000"})
}

func do(t *testing.T, r http.Handler, who caller, method, path, body string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if who.id > 0 {
		req = req.WithContext(utils.SetUserContext(req.Context(), who.id, "u@example.com", who.role))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

/* ---------- TESTS ---------- */

func TestHealthz(t *testing.T) {
	r := newTestRouter(Services{})
	rec, _ := do(t, r, anonymous, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouterWithoutCORSOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var r *gin.Engine
	require.NotPanics(t, func() { r = NewRouter(Services{}, nil) })

	rec, _ := do(t, r, anonymous, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessControl(t *testing.T) {
	r := newTestRouter(Services{Taxonomy: new(MockTaxonomy), Listings: new(MockListings)})

	t.Run("anonymous write is rejected", func(t *testing.T) {
		rec, resp := do(t, r, anonymous, http.MethodPost, "/api/v1/listings", `{"title":"x"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.True(t, resp.Error)
	})

	t.Run("admin route needs admin role", func(t *testing.T) {
		rec, resp := do(t, r, member, http.MethodGet, "/api/v1/admin/catalogues", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "admin access required", resp.Message)
	})

	t.Run("admin route rejects anonymous with 401", func(t *testing.T) {
		rec, _ := do(t, r, anonymous, http.MethodGet, "/api/v1/admin/catalogues", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCatalogueTree(t *testing.T) {
	tax := new(MockTaxonomy)
	r := newTestRouter(Services{Taxonomy: tax})

	tax.On("Tree", mock.Anything).Return([]*taxonomy.Catalogue{
		{ID: 1, Name: "Art", Categories: []*taxonomy.Category{{ID: 10, CatalogueID: 1, Name: "Portrait"}}},
	}, nil)

	rec, resp := do(t, r, anonymous, http.MethodGet, "/api/v1/catalogues", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tree []taxonomy.Catalogue
	require.NoError(t, json.Unmarshal(resp.Data, &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "Art", tree[0].Name)
	assert.Len(t, tree[0].Categories, 1)
	tax.AssertExpectations(t)
}

func TestCategoryFilters(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		tax := new(MockTaxonomy)
		r := newTestRouter(Services{Taxonomy: tax})
		tax.On("FiltersForCategory", mock.Anything, int64(99)).Return(nil, taxonomy.ErrCategoryNotFound)

		rec, resp := do(t, r, anonymous, http.MethodGet, "/api/v1/categories/99/filters", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, taxonomy.ErrCategoryNotFound.Error(), resp.Message)
	})

	t.Run("bad id", func(t *testing.T) {
		r := newTestRouter(Services{Taxonomy: new(MockTaxonomy)})
		rec, _ := do(t, r, anonymous, http.MethodGet, "/api/v1/categories/abc/filters", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReorderCatalogues(t *testing.T) {
	t.Run("success returns new order", func(t *testing.T) {
		tax := new(MockTaxonomy)
		r := newTestRouter(Services{Taxonomy: tax})
		tax.On("ReorderCatalogues", mock.Anything, []int64{2, 1}).Return([]*taxonomy.Catalogue{
			{ID: 2, SortOrder: 0}, {ID: 1, SortOrder: 1},
		}, nil)

		rec, resp := do(t, r, admin, http.MethodPut, "/api/v1/admin/catalogues/order", `{"ids":[2,1]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []taxonomy.Catalogue
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.Equal(t, int64(2), list[0].ID)
		tax.AssertExpectations(t)
	})

	t.Run("stale order is a conflict", func(t *testing.T) {
		tax := new(MockTaxonomy)
		r := newTestRouter(Services{Taxonomy: tax})
		tax.On("ReorderCatalogues", mock.Anything, []int64{1}).Return(nil, taxonomy.ErrStaleOrder)

		rec, resp := do(t, r, admin, http.MethodPut, "/api/v1/admin/catalogues/order", `{"ids":[1]}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.True(t, resp.Error)
	})

	t.Run("write failure returns reloaded list", func(t *testing.T) {
		tax := new(MockTaxonomy)
		r := newTestRouter(Services{Taxonomy: tax})
		reloaded := []*taxonomy.Catalogue{{ID: 1, SortOrder: 0}, {ID: 2, SortOrder: 1}}
		tax.On("ReorderCatalogues", mock.Anything, []int64{2, 1}).
			Return(reloaded, fmt.Errorf("%w: %w", taxonomy.ErrReorderWrite, errors.New("connection reset")))

		rec, resp := do(t, r, admin, http.MethodPut, "/api/v1/admin/catalogues/order", `{"ids":[2,1]}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.True(t, resp.Error)
		assert.NotContains(t, resp.Message, "connection reset")

		var list []taxonomy.Catalogue
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		require.Len(t, list, 2)
		assert.Equal(t, int64(1), list[0].ID)
	})

	t.Run("missing ids", func(t *testing.T) {
		r := newTestRouter(Services{Taxonomy: new(MockTaxonomy)})
		rec, _ := do(t, r, admin, http.MethodPut, "/api/v1/admin/catalogues/order", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReorderCategoriesUsesPathScope(t *testing.T) {
	tax := new(MockTaxonomy)
	r := newTestRouter(Services{Taxonomy: tax})
	tax.On("ReorderCategories", mock.Anything, int64(4), []int64{11, 10}).
		Return([]*taxonomy.Category{{ID: 11}, {ID: 10}}, nil)

	rec, _ := do(t, r, admin, http.MethodPut, "/api/v1/admin/catalogues/4/categories/order", `{"ids":[11,10]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	tax.AssertExpectations(t)
}

func TestAssignFilter(t *testing.T) {
	tax := new(MockTaxonomy)
	r := newTestRouter(Services{Taxonomy: tax})
	tax.On("AssignFilter", mock.Anything, int64(3), int64(8)).Return(taxonomy.ErrFilterAlreadyAssigned)

	rec, _ := do(t, r, admin, http.MethodPut, "/api/v1/admin/categories/3/filters/8", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	tax.AssertExpectations(t)
}

func TestCreateOptionTakesFilterFromPath(t *testing.T) {
	tax := new(MockTaxonomy)
	r := newTestRouter(Services{Taxonomy: tax})
	tax.On("CreateOption", mock.Anything, taxonomy.CreateOptionInput{FilterID: 5, Name: "Anime"}).
		Return(&taxonomy.FilterOption{ID: 20, FilterID: 5, Name: "Anime"}, nil)

	rec, _ := do(t, r, admin, http.MethodPost, "/api/v1/admin/filters/5/options", `{"name":"Anime","filterId":999}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	tax.AssertExpectations(t)
}

func TestBrowseListings(t *testing.T) {
	t.Run("query is parsed into filter state", func(t *testing.T) {
		ls := new(MockListings)
		r := newTestRouter(Services{Listings: ls})

		cat, sub := int64(1), int64(2)
		want := browse.FilterState{CatalogueID: &cat, CategoryID: &sub, SubCategorySelections: []int64{5, 6}}
		ls.On("Browse", mock.Anything, want, 2, 1).Return(&listing.BrowseResult{
			Items: []*listing.Listing{{ID: 42, Title: "Chibi"}},
			Total: 3,
			Page:  2,
			Limit: 1,
		}, nil)

		rec, resp := do(t, r, anonymous, http.MethodGet,
			"/api/v1/listings?catalogueId=1&categoryId=2&options=5,6&page=2&limit=1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.NotNil(t, resp.Meta)
		assert.Equal(t, 3, resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.TotalPages)

		var items []listing.Listing
		require.NoError(t, json.Unmarshal(resp.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, int64(42), items[0].ID)
		ls.AssertExpectations(t)
	})

	t.Run("no query means no constraint", func(t *testing.T) {
		ls := new(MockListings)
		r := newTestRouter(Services{Listings: ls})
		ls.On("Browse", mock.Anything, browse.FilterState{SubCategorySelections: []int64{}}, 1, listing.DefaultLimit).
			Return(&listing.BrowseResult{Items: []*listing.Listing{}, Page: 1, Limit: listing.DefaultLimit}, nil)

		rec, resp := do(t, r, anonymous, http.MethodGet, "/api/v1/listings", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, string(resp.Data))
		ls.AssertExpectations(t)
	})

	t.Run("bad option id", func(t *testing.T) {
		r := newTestRouter(Services{Listings: new(MockListings)})
		rec, _ := do(t, r, anonymous, http.MethodGet, "/api/v1/listings?options=1,x", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListingOwnership(t *testing.T) {
	ls := new(MockListings)
	r := newTestRouter(Services{Listings: ls})
	ls.On("Delete", mock.Anything, member.id, int64(9)).Return(listing.ErrForbidden)

	rec, _ := do(t, r, member, http.MethodDelete, "/api/v1/listings/9", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	ls.AssertExpectations(t)
}

func TestRespondCommissionNeedsDecision(t *testing.T) {
	r := newTestRouter(Services{})
	rec, _ := do(t, r, member, http.MethodPost, "/api/v1/commissions/3/respond", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPollNotificationsRejectsBadSince(t *testing.T) {
	r := newTestRouter(Services{})
	rec, _ := do(t, r, member, http.MethodGet, "/api/v1/notifications?since=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestThemeCSS(t *testing.T) {
	th := new(MockThemes)
	r := newTestRouter(Services{Themes: th})
	th.On("Get", mock.Anything, member.id).Return(theme.DefaultPalette, nil)

	rec, _ := do(t, r, member, http.MethodGet, "/api/v1/theme/css", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
	assert.Contains(t, rec.Body.String(), "--color-primary: #6C5CE7;")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{taxonomy.ErrCatalogueNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", listing.ErrListingNotFound), http.StatusNotFound},
		{listing.ErrCategoryMismatch, http.StatusBadRequest},
		{theme.ErrInvalidColor, http.StatusBadRequest},
		{commission.ErrForbidden, http.StatusForbidden},
		{taxonomy.ErrStaleOrder, http.StatusConflict},
		{commission.ErrNotPending, http.StatusConflict},
		{taxonomy.ErrReorderWrite, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
