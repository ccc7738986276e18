package listing

import (
	"context"
	"errors"
	"strings"

	"arkom-be/internal/browse"
	"arkom-be/internal/logger"
	"arkom-be/internal/metrics"
	"arkom-be/internal/taxonomy"

	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// CategoryLookup resolves the category a listing is filed under.
type CategoryLookup interface {
	GetCategory(ctx context.Context, id int64) (*taxonomy.Category, error)
}

type Service interface {
	Create(ctx context.Context, artistID int64, input CreateListingInput) (*Listing, error)
	Update(ctx context.Context, artistID, id int64, input UpdateListingInput) (*Listing, error)
	Get(ctx context.Context, id int64) (*Listing, error)
	Delete(ctx context.Context, artistID, id int64) error
	ListByArtist(ctx context.Context, artistID int64) ([]*Listing, error)
	Browse(ctx context.Context, state browse.FilterState, page, limit int) (*BrowseResult, error)
}

type service struct {
	repo       Repository
	categories CategoryLookup
}

func NewService(repo Repository, categories CategoryLookup) Service {
	return &service{repo: repo, categories: categories}
}

func (s *service) Create(ctx context.Context, artistID int64, input CreateListingInput) (*Listing, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateListing"),
		zap.Int64("artist_id", artistID),
	)
	log.Info("CreateListing started")

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, ErrInvalidTitle
	}
	if input.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	input.Currency = currency
	if input.Status != nil && !validStatus(*input.Status) {
		return nil, ErrInvalidStatus
	}

	discovery, err := s.checkDiscovery(ctx, input.SearchCategoryData)
	if err != nil {
		log.Warn("invalid discovery data", zap.Error(err))
		return nil, err
	}
	input.SearchCategoryData = discovery

	l, err := s.repo.Create(ctx, artistID, input)
	if err != nil {
		log.Error("failed to create listing", zap.Error(err))
		return nil, err
	}

	log.Info("CreateListing success", zap.Int64("listing_id", l.ID))
	return l, nil
}

func (s *service) Update(ctx context.Context, artistID, id int64, input UpdateListingInput) (*Listing, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateListing"),
		zap.Int64("artist_id", artistID),
		zap.Int64("listing_id", id),
	)

	if input.empty() {
		return nil, ErrNoChanges
	}
	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		if t == "" {
			return nil, ErrInvalidTitle
		}
		input.Title = &t
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Currency != nil {
		c, err := normalizeCurrency(*input.Currency)
		if err != nil {
			return nil, err
		}
		input.Currency = &c
	}
	if input.Status != nil && !validStatus(*input.Status) {
		return nil, ErrInvalidStatus
	}

	if _, err := s.owned(ctx, artistID, id); err != nil {
		log.Warn("update rejected", zap.Error(err))
		return nil, err
	}

	if input.Discovery != nil {
		d, err := s.checkDiscovery(ctx, *input.Discovery)
		if err != nil {
			return nil, err
		}
		input.Discovery = &d
	}

	l, err := s.repo.Update(ctx, id, input)
	if err != nil {
		log.Error("failed to update listing", zap.Error(err))
		return nil, err
	}

	log.Info("UpdateListing success")
	return l, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Listing, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, artistID, id int64) error {
	if _, err := s.owned(ctx, artistID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("DeleteListing success",
		zap.String("layer", "service"),
		zap.Int64("listing_id", id),
	)
	return nil
}

func (s *service) ListByArtist(ctx context.Context, artistID int64) ([]*Listing, error) {
	return s.repo.ListByArtist(ctx, artistID)
}

// Browse returns one page of the listings matching state. The repository
// narrows in SQL; browse.Matches has the final say, and pagination applies
// to the matched set.
func (s *service) Browse(ctx context.Context, state browse.FilterState, page, limit int) (*BrowseResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Browse"),
	)
	timer := metrics.StartTimer()

	/* ---------- INPUT NORMALIZATION ---------- */

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}

	/* ---------- FETCH + MATCH ---------- */

	candidates, err := s.repo.ListDiscoverable(ctx, state)
	if err != nil {
		log.Error("failed to fetch listings", zap.Error(err))
		return nil, err
	}

	matched := make([]*Listing, 0, len(candidates))
	for _, l := range candidates {
		if browse.Matches(state, l.SearchCategoryData) {
			matched = append(matched, l)
		}
	}

	/* ---------- PAGINATE ---------- */

	// page-1 is checked against the page count before multiplying, so a
	// huge page cannot overflow the offset.
	items := []*Listing{}
	if pages := (len(matched) + limit - 1) / limit; page-1 < pages {
		offset := (page - 1) * limit
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		items = matched[offset:end]
	}

	log.Info("Browse success",
		zap.Int("candidates", len(candidates)),
		zap.Int("matched", len(matched)),
		zap.Int("page", page),
		zap.Int("limit", limit),
		zap.Duration("duration", timer.Duration()),
	)

	return &BrowseResult{Items: items, Total: len(matched), Page: page, Limit: limit}, nil
}

func (s *service) owned(ctx context.Context, artistID, id int64) (*Listing, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.ArtistID != artistID {
		return nil, ErrForbidden
	}
	return l, nil
}

// checkDiscovery enforces the catalogue > category hierarchy and drops
// duplicate option ids. A category requires its own catalogue.
func (s *service) checkDiscovery(ctx context.Context, d browse.SearchCategoryData) (browse.SearchCategoryData, error) {
	if d.CategoryID != nil {
		if d.CatalogueID == nil {
			return d, ErrCategoryMismatch
		}
		c, err := s.categories.GetCategory(ctx, *d.CategoryID)
		if err != nil {
			if errors.Is(err, taxonomy.ErrCategoryNotFound) {
				return d, ErrCategoryMismatch
			}
			return d, err
		}
		if c.CatalogueID != *d.CatalogueID {
			return d, ErrCategoryMismatch
		}
	}

	seen := make(map[int64]struct{}, len(d.SubCategorySelections))
	selections := make([]int64, 0, len(d.SubCategorySelections))
	for _, id := range d.SubCategorySelections {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		selections = append(selections, id)
	}
	d.SubCategorySelections = selections
	return d, nil
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency, nil
	}
	if len(c) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return c, nil
}

func validStatus(s string) bool {
	switch s {
	case StatusActive, StatusDraft, StatusArchived:
		return true
	}
	return false
}
