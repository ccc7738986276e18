package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"arkom-be/internal/logger"
	"arkom-be/internal/metrics"
	"arkom-be/internal/reorder"

	"go.uber.org/zap"
)

// Service defines the admin and browse operations on the taxonomy.
type Service interface {
	Tree(ctx context.Context) ([]*Catalogue, error)
	FiltersForCategory(ctx context.Context, categoryID int64) ([]*Filter, error)

	ListCatalogues(ctx context.Context) ([]*Catalogue, error)
	CreateCatalogue(ctx context.Context, input CreateCatalogueInput) (*Catalogue, error)
	UpdateCatalogue(ctx context.Context, id int64, input UpdateCatalogueInput) (*Catalogue, error)
	DeleteCatalogue(ctx context.Context, id int64) error
	ReorderCatalogues(ctx context.Context, ids []int64) ([]*Catalogue, error)

	ListCategories(ctx context.Context, catalogueID int64) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ReorderCategories(ctx context.Context, catalogueID int64, ids []int64) ([]*Category, error)

	ListFilters(ctx context.Context) ([]*Filter, error)
	CreateFilter(ctx context.Context, input CreateFilterInput) (*Filter, error)
	UpdateFilter(ctx context.Context, id int64, input UpdateFilterInput) (*Filter, error)
	DeleteFilter(ctx context.Context, id int64) error
	ReorderFilters(ctx context.Context, ids []int64) ([]*Filter, error)

	CreateOption(ctx context.Context, input CreateOptionInput) (*FilterOption, error)
	UpdateOption(ctx context.Context, id int64, input UpdateOptionInput) (*FilterOption, error)
	DeleteOption(ctx context.Context, id int64) error
	ReorderOptions(ctx context.Context, filterID int64, ids []int64) ([]*FilterOption, error)

	AssignedFilters(ctx context.Context, categoryID int64) ([]*Filter, error)
	AssignFilter(ctx context.Context, categoryID, filterID int64) error
	UnassignFilter(ctx context.Context, categoryID, filterID int64) error
}

type service struct {
	repo  Repository
	cache Cache
	locks *scopeLocks
}

func NewService(repo Repository, cache Cache) Service {
	if cache == nil {
		cache = NewNopCache()
	}
	return &service{repo: repo, cache: cache, locks: newScopeLocks()}
}

func (s *service) log(ctx context.Context, method string, fields ...zap.Field) *zap.Logger {
	return logger.FromCtx(ctx).With(
		append([]zap.Field{zap.String("layer", "service"), zap.String("method", method)}, fields...)...,
	)
}

// invalidate drops every cached taxonomy view. Failures only cost freshness
// until the TTL expires, so they are logged, not returned.
func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		logger.FromCtx(ctx).Warn("taxonomy cache invalidation failed", zap.Error(err))
	}
}

// ---------- BROWSE ----------

// Tree returns the active catalogues with their active categories.
func (s *service) Tree(ctx context.Context) ([]*Catalogue, error) {
	log := s.log(ctx, "Tree")

	var cached []*Catalogue
	if err := s.cache.Get(ctx, treeKey, &cached); err == nil {
		log.Debug("Tree cache hit")
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn("Tree cache read failed", zap.Error(err))
	}

	catalogues, err := s.repo.ListCatalogues(ctx, true)
	if err != nil {
		log.Error("failed to list catalogues", zap.Error(err))
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx, nil, true)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	tree := buildTree(catalogues, categories)
	if err := s.cache.Set(ctx, treeKey, tree, CacheTTL); err != nil {
		log.Warn("Tree cache write failed", zap.Error(err))
	}
	return tree, nil
}

// FiltersForCategory returns the filters a shopper can narrow a category by.
func (s *service) FiltersForCategory(ctx context.Context, categoryID int64) ([]*Filter, error) {
	log := s.log(ctx, "FiltersForCategory", zap.Int64("category_id", categoryID))
	key := categoryFiltersKey(categoryID)

	var cached []*Filter
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn("filters cache read failed", zap.Error(err))
	}

	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	assigned, err := s.repo.ListFiltersForCategory(ctx, categoryID)
	if err != nil {
		log.Error("failed to list filters for category", zap.Error(err))
		return nil, err
	}

	filters := ApplicableFilters(assigned)
	if err := s.cache.Set(ctx, key, filters, CacheTTL); err != nil {
		log.Warn("filters cache write failed", zap.Error(err))
	}
	return filters, nil
}

// ---------- CATALOGUES ----------

func (s *service) ListCatalogues(ctx context.Context) ([]*Catalogue, error) {
	return s.repo.ListCatalogues(ctx, false)
}

func (s *service) CreateCatalogue(ctx context.Context, input CreateCatalogueInput) (*Catalogue, error) {
	log := s.log(ctx, "CreateCatalogue", zap.String("name", input.Name))
	log.Info("CreateCatalogue started")

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidName
	}

	c, err := s.repo.CreateCatalogue(ctx, input)
	if err != nil {
		log.Error("failed to create catalogue", zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("CreateCatalogue success", zap.Int64("catalogue_id", c.ID))
	return c, nil
}

func (s *service) UpdateCatalogue(ctx context.Context, id int64, input UpdateCatalogueInput) (*Catalogue, error) {
	name, err := normalizeRename(input.Name)
	if err != nil {
		return nil, err
	}
	input.Name = name
	c, err := s.repo.UpdateCatalogue(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *service) DeleteCatalogue(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCatalogue(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log(ctx, "DeleteCatalogue").Info("DeleteCatalogue success", zap.Int64("catalogue_id", id))
	return nil
}

func (s *service) ReorderCatalogues(ctx context.Context, ids []int64) ([]*Catalogue, error) {
	load := func(ctx context.Context) ([]*Catalogue, error) { return s.repo.ListCatalogues(ctx, false) }
	return reorderSiblings(ctx, s, "catalogues", ids, load,
		func(c *Catalogue) (int64, int) { return c.ID, c.SortOrder },
		func(c *Catalogue, i int) { c.SortOrder = i },
		s.repo.UpdateCatalogueSortOrder,
	)
}

// ---------- CATEGORIES ----------

func (s *service) ListCategories(ctx context.Context, catalogueID int64) ([]*Category, error) {
	if _, err := s.repo.GetCatalogue(ctx, catalogueID); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, &catalogueID, false)
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	log := s.log(ctx, "CreateCategory",
		zap.Int64("catalogue_id", input.CatalogueID),
		zap.String("name", input.Name),
	)
	log.Info("CreateCategory started")

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidName
	}

	c, err := s.repo.CreateCategory(ctx, input)
	if err != nil {
		log.Error("failed to create category", zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx)

	log.Info("CreateCategory success", zap.Int64("category_id", c.ID))
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*Category, error) {
	name, err := normalizeRename(input.Name)
	if err != nil {
		return nil, err
	}
	input.Name = name
	c, err := s.repo.UpdateCategory(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ReorderCategories(ctx context.Context, catalogueID int64, ids []int64) ([]*Category, error) {
	load := func(ctx context.Context) ([]*Category, error) {
		return s.repo.ListCategories(ctx, &catalogueID, false)
	}
	return reorderSiblings(ctx, s, fmt.Sprintf("catalogue:%d:categories", catalogueID), ids, load,
		func(c *Category) (int64, int) { return c.ID, c.SortOrder },
		func(c *Category, i int) { c.SortOrder = i },
		s.repo.UpdateCategorySortOrder,
	)
}

// ---------- FILTERS ----------

func (s *service) ListFilters(ctx context.Context) ([]*Filter, error) {
	return s.repo.ListFilters(ctx)
}

func (s *service) CreateFilter(ctx context.Context, input CreateFilterInput) (*Filter, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidName
	}
	f, err := s.repo.CreateFilter(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log(ctx, "CreateFilter").Info("CreateFilter success", zap.Int64("filter_id", f.ID))
	return f, nil
}

func (s *service) UpdateFilter(ctx context.Context, id int64, input UpdateFilterInput) (*Filter, error) {
	name, err := normalizeRename(input.Name)
	if err != nil {
		return nil, err
	}
	input.Name = name
	f, err := s.repo.UpdateFilter(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return f, nil
}

func (s *service) DeleteFilter(ctx context.Context, id int64) error {
	if err := s.repo.DeleteFilter(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ReorderFilters(ctx context.Context, ids []int64) ([]*Filter, error) {
	return reorderSiblings(ctx, s, "filters", ids, s.repo.ListFilters,
		func(f *Filter) (int64, int) { return f.ID, f.SortOrder },
		func(f *Filter, i int) { f.SortOrder = i },
		s.repo.UpdateFilterSortOrder,
	)
}

// ---------- OPTIONS ----------

func (s *service) CreateOption(ctx context.Context, input CreateOptionInput) (*FilterOption, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidName
	}
	o, err := s.repo.CreateOption(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return o, nil
}

func (s *service) UpdateOption(ctx context.Context, id int64, input UpdateOptionInput) (*FilterOption, error) {
	name, err := normalizeRename(input.Name)
	if err != nil {
		return nil, err
	}
	input.Name = name
	o, err := s.repo.UpdateOption(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return o, nil
}

func (s *service) DeleteOption(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOption(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ReorderOptions(ctx context.Context, filterID int64, ids []int64) ([]*FilterOption, error) {
	load := func(ctx context.Context) ([]*FilterOption, error) { return s.repo.ListOptions(ctx, filterID) }
	return reorderSiblings(ctx, s, fmt.Sprintf("filter:%d:options", filterID), ids, load,
		func(o *FilterOption) (int64, int) { return o.ID, o.SortOrder },
		func(o *FilterOption, i int) { o.SortOrder = i },
		s.repo.UpdateOptionSortOrder,
	)
}

// ---------- ASSIGNMENTS ----------

func (s *service) AssignedFilters(ctx context.Context, categoryID int64) ([]*Filter, error) {
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.repo.ListFiltersForCategory(ctx, categoryID)
}

func (s *service) AssignFilter(ctx context.Context, categoryID, filterID int64) error {
	log := s.log(ctx, "AssignFilter",
		zap.Int64("category_id", categoryID),
		zap.Int64("filter_id", filterID),
	)
	log.Info("AssignFilter started")

	if err := s.repo.AssignFilter(ctx, categoryID, filterID); err != nil {
		log.Warn("failed to assign filter", zap.Error(err))
		return err
	}
	s.invalidate(ctx)

	log.Info("AssignFilter success")
	return nil
}

func (s *service) UnassignFilter(ctx context.Context, categoryID, filterID int64) error {
	if err := s.repo.UnassignFilter(ctx, categoryID, filterID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ---------- REORDER ----------

// reorderSiblings persists ids as the new order of one sibling scope. ids
// must name exactly the current siblings. On a failed write the returned
// list is the freshly reloaded store state, never the requested order.
func reorderSiblings[T any](
	ctx context.Context,
	s *service,
	scope string,
	ids []int64,
	load func(context.Context) ([]T, error),
	key func(T) (int64, int),
	setOrder func(T, int),
	update reorder.UpdateFunc,
) ([]T, error) {
	log := s.log(ctx, "Reorder", zap.String("scope", scope), zap.Int64s("ids", ids))
	log.Info("Reorder started")

	unlock := s.locks.lock(scope)
	defer unlock()

	current, err := load(ctx)
	if err != nil {
		log.Error("failed to load siblings", zap.Error(err))
		return nil, err
	}

	ordered, err := arrange(ids, current, key)
	if err != nil {
		log.Warn("reorder rejected", zap.Error(err))
		return nil, err
	}

	items := make([]reorder.Item, len(ordered))
	for i, e := range ordered {
		id, sortOrder := key(e)
		items[i] = reorder.Item{ID: id, SortOrder: sortOrder}
	}

	var reloaded []T
	reload := func(ctx context.Context) error {
		var err error
		reloaded, err = load(ctx)
		return err
	}

	res, err := reorder.Reconcile(ctx, items, update, reload)
	metrics.ReorderWrites.Add(uint64(res.Applied))
	// partial writes may have landed even on failure
	if res.Applied > 0 {
		s.invalidate(ctx)
	}
	if err != nil {
		metrics.ReorderFailures.Inc()
		log.Error("Reorder failed",
			zap.Int("planned", res.Planned),
			zap.Int("applied", res.Applied),
			zap.Error(err),
		)
		return reloaded, fmt.Errorf("%w: %w", ErrReorderWrite, err)
	}

	for i, e := range ordered {
		setOrder(e, i)
	}

	log.Info("Reorder success", zap.Int("writes", res.Applied))
	return ordered, nil
}

// arrange returns current in the order given by ids, which must be a
// permutation of the current ids.
func arrange[T any](ids []int64, current []T, key func(T) (int64, int)) ([]T, error) {
	if len(ids) != len(current) {
		return nil, ErrStaleOrder
	}

	byID := make(map[int64]T, len(current))
	for _, e := range current {
		id, _ := key(e)
		byID[id] = e
	}

	out := make([]T, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, ErrStaleOrder
		}
		if _, dup := seen[id]; dup {
			return nil, ErrStaleOrder
		}
		seen[id] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// normalizeRename trims an optional new name. A blank one is rejected.
func normalizeRename(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, ErrInvalidName
	}
	return &trimmed, nil
}

// scopeLocks serializes reorders of the same sibling scope within this
// process.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *scopeLocks) lock(scope string) func() {
	l.mu.Lock()
	m, ok := l.locks[scope]
	if !ok {
		m = &sync.Mutex{}
		l.locks[scope] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
