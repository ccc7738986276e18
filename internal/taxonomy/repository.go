package taxonomy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"arkom-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	ListCatalogues(ctx context.Context, onlyActive bool) ([]*Catalogue, error)
	GetCatalogue(ctx context.Context, id int64) (*Catalogue, error)
	CreateCatalogue(ctx context.Context, input CreateCatalogueInput) (*Catalogue, error)
	UpdateCatalogue(ctx context.Context, id int64, input UpdateCatalogueInput) (*Catalogue, error)
	UpdateCatalogueSortOrder(ctx context.Context, id int64, sortOrder int) error
	DeleteCatalogue(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, catalogueID *int64, onlyActive bool) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*Category, error)
	UpdateCategorySortOrder(ctx context.Context, id int64, sortOrder int) error
	DeleteCategory(ctx context.Context, id int64) error

	ListFilters(ctx context.Context) ([]*Filter, error)
	CreateFilter(ctx context.Context, input CreateFilterInput) (*Filter, error)
	UpdateFilter(ctx context.Context, id int64, input UpdateFilterInput) (*Filter, error)
	UpdateFilterSortOrder(ctx context.Context, id int64, sortOrder int) error
	DeleteFilter(ctx context.Context, id int64) error

	ListOptions(ctx context.Context, filterID int64) ([]*FilterOption, error)
	CreateOption(ctx context.Context, input CreateOptionInput) (*FilterOption, error)
	UpdateOption(ctx context.Context, id int64, input UpdateOptionInput) (*FilterOption, error)
	UpdateOptionSortOrder(ctx context.Context, id int64, sortOrder int) error
	DeleteOption(ctx context.Context, id int64) error

	AssignFilter(ctx context.Context, categoryID, filterID int64) error
	UnassignFilter(ctx context.Context, categoryID, filterID int64) error
	ListFiltersForCategory(ctx context.Context, categoryID int64) ([]*Filter, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const (
	catalogueColumns = "id, name, sort_order, is_active, created_at, updated_at"
	categoryColumns  = "id, catalogue_id, name, sort_order, is_active, created_at, updated_at"
	filterColumns    = "id, name, sort_order, is_active, created_at, updated_at"
	optionColumns    = "id, filter_id, name, sort_order, is_active"
)

func scanCatalogue(row rowScanner) (*Catalogue, error) {
	var c Catalogue
	if err := row.Scan(&c.ID, &c.Name, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCategory(row rowScanner) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.CatalogueID, &c.Name, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanFilter(row rowScanner) (*Filter, error) {
	f := Filter{Options: []*FilterOption{}}
	if err := row.Scan(&f.ID, &f.Name, &f.SortOrder, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanOption(row rowScanner) (*FilterOption, error) {
	var o FilterOption
	if err := row.Scan(&o.ID, &o.FilterID, &o.Name, &o.SortOrder, &o.IsActive); err != nil {
		return nil, err
	}
	return &o, nil
}

// assignment is one "column = $n" entry of a partial UPDATE.
type assignment struct {
	column string
	value  interface{}
}

// buildUpdate renders a partial UPDATE for the given columns. The id is
// always the last placeholder.
func buildUpdate(table string, id int64, sets []assignment, returning string, touch bool) (string, []interface{}) {
	parts := make([]string, 0, len(sets)+1)
	args := make([]interface{}, 0, len(sets)+1)
	for _, s := range sets {
		args = append(args, s.value)
		parts = append(parts, fmt.Sprintf("%s = $%d", s.column, len(args)))
	}
	if touch {
		parts = append(parts, "updated_at = NOW()")
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(parts, ", "), len(args), returning)
	return query, args
}

func nameActiveOrder(name *string, isActive *bool, sortOrder *int) []assignment {
	var sets []assignment
	if name != nil {
		sets = append(sets, assignment{"name", strings.TrimSpace(*name)})
	}
	if isActive != nil {
		sets = append(sets, assignment{"is_active", *isActive})
	}
	if sortOrder != nil {
		sets = append(sets, assignment{"sort_order", *sortOrder})
	}
	return sets
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// ---------- CATALOGUES ----------

func (r *repository) ListCatalogues(ctx context.Context, onlyActive bool) ([]*Catalogue, error) {
	query := "SELECT " + catalogueColumns + " FROM catalogues"
	if onlyActive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListCatalogues", zap.Error(err))
		return nil, fmt.Errorf("list catalogues: %w", err)
	}
	defer rows.Close()

	catalogues := []*Catalogue{}
	for rows.Next() {
		c, err := scanCatalogue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalogue: %w", err)
		}
		catalogues = append(catalogues, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalogues: %w", err)
	}
	return catalogues, nil
}

func (r *repository) GetCatalogue(ctx context.Context, id int64) (*Catalogue, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+catalogueColumns+" FROM catalogues WHERE id = $1", id)
	c, err := scanCatalogue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCatalogueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get catalogue: %w", err)
	}
	return c, nil
}

func (r *repository) CreateCatalogue(ctx context.Context, input CreateCatalogueInput) (*Catalogue, error) {
	log := logger.FromCtx(ctx).With(zap.String("catalogue_name", input.Name))

	query := `
		INSERT INTO catalogues (name, is_active, sort_order)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM catalogues))
		RETURNING ` + catalogueColumns

	log.Debug("Executing CreateCatalogue query", zap.String("query", query))

	c, err := scanCatalogue(r.db.QueryRowContext(ctx, query, input.Name, activeOrDefault(input.IsActive)))
	if err != nil {
		log.Error("CreateCatalogue DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create catalogue failed: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateCatalogue(ctx context.Context, id int64, input UpdateCatalogueInput) (*Catalogue, error) {
	sets := nameActiveOrder(input.Name, input.IsActive, input.SortOrder)
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}

	query, args := buildUpdate("catalogues", id, sets, catalogueColumns, true)
	c, err := scanCatalogue(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCatalogueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update catalogue failed: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateCatalogueSortOrder(ctx context.Context, id int64, sortOrder int) error {
	return r.updateSortOrder(ctx, "catalogues", id, sortOrder, ErrCatalogueNotFound)
}

func (r *repository) DeleteCatalogue(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "catalogues", id, ErrCatalogueNotFound)
}

// ---------- CATEGORIES ----------

func (r *repository) ListCategories(ctx context.Context, catalogueID *int64, onlyActive bool) ([]*Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories"
	where := []string{}
	args := []interface{}{}

	if catalogueID != nil {
		args = append(args, *catalogueID)
		where = append(where, fmt.Sprintf("catalogue_id = $%d", len(args)))
	}
	if onlyActive {
		where = append(where, "is_active = TRUE")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY catalogue_id ASC, sort_order ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListCategories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *repository) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("catalogue_id", input.CatalogueID),
		zap.String("category_name", input.Name),
	)

	query := `
		INSERT INTO categories (catalogue_id, name, is_active, sort_order)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories WHERE catalogue_id = $1))
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, input.CatalogueID, input.Name, activeOrDefault(input.IsActive)))
	if err != nil {
		if pqCode(err) == PgForeignKeyViolation {
			return nil, ErrCatalogueNotFound
		}
		log.Error("CreateCategory DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create category failed: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id int64, input UpdateCategoryInput) (*Category, error) {
	sets := nameActiveOrder(input.Name, input.IsActive, input.SortOrder)
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}

	query, args := buildUpdate("categories", id, sets, categoryColumns, true)
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category failed: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	return r.updateSortOrder(ctx, "categories", id, sortOrder, ErrCategoryNotFound)
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id, ErrCategoryNotFound)
}

// ---------- FILTERS & OPTIONS ----------

func (r *repository) ListFilters(ctx context.Context) ([]*Filter, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+filterColumns+" FROM sub_category_filters ORDER BY sort_order ASC, id ASC")
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListFilters", zap.Error(err))
		return nil, fmt.Errorf("list filters: %w", err)
	}
	filters, err := collectFilters(rows)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return filters, nil
	}

	if err := r.attachOptions(ctx, filters); err != nil {
		return nil, err
	}
	return filters, nil
}

func (r *repository) ListFiltersForCategory(ctx context.Context, categoryID int64) ([]*Filter, error) {
	query := `
		SELECT f.id, f.name, f.sort_order, f.is_active, f.created_at, f.updated_at
		FROM sub_category_filters f
		JOIN category_filters cf ON cf.filter_id = f.id
		WHERE cf.category_id = $1
		ORDER BY f.sort_order ASC, f.id ASC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListFiltersForCategory",
			zap.Int64("category_id", categoryID), zap.Error(err))
		return nil, fmt.Errorf("list filters for category: %w", err)
	}
	filters, err := collectFilters(rows)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return filters, nil
	}

	if err := r.attachOptions(ctx, filters); err != nil {
		return nil, err
	}
	return filters, nil
}

func collectFilters(rows *sql.Rows) ([]*Filter, error) {
	defer rows.Close()

	filters := []*Filter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return filters, nil
}

// attachOptions loads the options of all given filters in one query.
func (r *repository) attachOptions(ctx context.Context, filters []*Filter) error {
	ids := make([]int64, 0, len(filters))
	byID := make(map[int64]*Filter, len(filters))
	for _, f := range filters {
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+optionColumns+" FROM sub_category_filter_options WHERE filter_id = ANY($1) ORDER BY filter_id ASC, sort_order ASC, id ASC",
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list filter options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return fmt.Errorf("scan filter option: %w", err)
		}
		if f, ok := byID[o.FilterID]; ok {
			f.Options = append(f.Options, o)
		}
	}
	return rows.Err()
}

func (r *repository) CreateFilter(ctx context.Context, input CreateFilterInput) (*Filter, error) {
	query := `
		INSERT INTO sub_category_filters (name, is_active, sort_order)
		VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM sub_category_filters))
		RETURNING ` + filterColumns

	f, err := scanFilter(r.db.QueryRowContext(ctx, query, input.Name, activeOrDefault(input.IsActive)))
	if err != nil {
		logger.FromCtx(ctx).Error("CreateFilter DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create filter failed: %w", err)
	}
	return f, nil
}

func (r *repository) UpdateFilter(ctx context.Context, id int64, input UpdateFilterInput) (*Filter, error) {
	sets := nameActiveOrder(input.Name, input.IsActive, input.SortOrder)
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}

	query, args := buildUpdate("sub_category_filters", id, sets, filterColumns, true)
	f, err := scanFilter(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFilterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update filter failed: %w", err)
	}
	return f, nil
}

func (r *repository) UpdateFilterSortOrder(ctx context.Context, id int64, sortOrder int) error {
	return r.updateSortOrder(ctx, "sub_category_filters", id, sortOrder, ErrFilterNotFound)
}

// DeleteFilter relies on ON DELETE CASCADE for options and assignments.
func (r *repository) DeleteFilter(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "sub_category_filters", id, ErrFilterNotFound)
}

func (r *repository) ListOptions(ctx context.Context, filterID int64) ([]*FilterOption, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+optionColumns+" FROM sub_category_filter_options WHERE filter_id = $1 ORDER BY sort_order ASC, id ASC",
		filterID)
	if err != nil {
		return nil, fmt.Errorf("list filter options: %w", err)
	}
	defer rows.Close()

	options := []*FilterOption{}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filter option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filter options: %w", err)
	}
	return options, nil
}

func (r *repository) CreateOption(ctx context.Context, input CreateOptionInput) (*FilterOption, error) {
	query := `
		INSERT INTO sub_category_filter_options (filter_id, name, is_active, sort_order)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM sub_category_filter_options WHERE filter_id = $1))
		RETURNING ` + optionColumns

	o, err := scanOption(r.db.QueryRowContext(ctx, query, input.FilterID, input.Name, activeOrDefault(input.IsActive)))
	if err != nil {
		if pqCode(err) == PgForeignKeyViolation {
			return nil, ErrFilterNotFound
		}
		logger.FromCtx(ctx).Error("CreateOption DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create filter option failed: %w", err)
	}
	return o, nil
}

func (r *repository) UpdateOption(ctx context.Context, id int64, input UpdateOptionInput) (*FilterOption, error) {
	sets := nameActiveOrder(input.Name, input.IsActive, input.SortOrder)
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}

	query, args := buildUpdate("sub_category_filter_options", id, sets, optionColumns, false)
	o, err := scanOption(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update filter option failed: %w", err)
	}
	return o, nil
}

func (r *repository) UpdateOptionSortOrder(ctx context.Context, id int64, sortOrder int) error {
	return r.updateSortOrderNoTouch(ctx, "sub_category_filter_options", id, sortOrder, ErrOptionNotFound)
}

func (r *repository) DeleteOption(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "sub_category_filter_options", id, ErrOptionNotFound)
}

// ---------- ASSIGNMENTS ----------

func (r *repository) AssignFilter(ctx context.Context, categoryID, filterID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.Int64("category_id", categoryID),
		zap.Int64("filter_id", filterID),
	)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_filters (category_id, filter_id) VALUES ($1, $2)`,
		categoryID, filterID)
	if err != nil {
		switch pqCode(err) {
		case PgUniqueViolation:
			log.Warn("AssignFilter conflict")
			return ErrFilterAlreadyAssigned
		case PgForeignKeyViolation:
			return fmt.Errorf("%w or %w", ErrCategoryNotFound, ErrFilterNotFound)
		}
		log.Error("AssignFilter DB query failed", zap.Error(err))
		return fmt.Errorf("assign filter failed: %w", err)
	}
	return nil
}

func (r *repository) UnassignFilter(ctx context.Context, categoryID, filterID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM category_filters WHERE category_id = $1 AND filter_id = $2`,
		categoryID, filterID)
	if err != nil {
		return fmt.Errorf("unassign filter failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// ---------- HELPERS ----------

func (r *repository) updateSortOrder(ctx context.Context, table string, id int64, sortOrder int, notFound error) error {
	query := fmt.Sprintf("UPDATE %s SET sort_order = $1, updated_at = NOW() WHERE id = $2", table)
	return r.execOne(ctx, query, notFound, sortOrder, id)
}

func (r *repository) updateSortOrderNoTouch(ctx context.Context, table string, id int64, sortOrder int, notFound error) error {
	query := fmt.Sprintf("UPDATE %s SET sort_order = $1 WHERE id = $2", table)
	return r.execOne(ctx, query, notFound, sortOrder, id)
}

func (r *repository) deleteByID(ctx context.Context, table string, id int64, notFound error) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	return r.execOne(ctx, query, notFound, id)
}

// execOne runs a single-row statement and maps zero affected rows to notFound.
func (r *repository) execOne(ctx context.Context, query string, notFound error, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("DB exec failed", zap.String("query", query), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
