package commission

import (
	"context"
	"errors"
	"strings"
	"testing"

	"arkom-be/internal/listing"
	"arkom-be/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, listingID, clientID int64, message string) (*Request, error) {
	args := m.Called(ctx, listingID, clientID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Request), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Request), args.Error(1)
}

func (m *MockRepository) ListForArtist(ctx context.Context, artistID int64) ([]*Request, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Request), args.Error(1)
}

func (m *MockRepository) ListForClient(ctx context.Context, clientID int64) ([]*Request, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Request), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}

type MockListings struct {
	mock.Mock
}

func (m *MockListings) Get(ctx context.Context, id int64) (*listing.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, p notification.NotifyParams) (*notification.Notification, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

type fixture struct {
	repo     *MockRepository
	listings *MockListings
	notifier *MockNotifier
	svc      Service
}

func newFixture() fixture {
	f := fixture{repo: new(MockRepository), listings: new(MockListings), notifier: new(MockNotifier)}
	f.svc = NewService(f.repo, f.listings, f.notifier)
	return f
}

// --- Tests ---

func TestService_Request(t *testing.T) {
	ctx := context.Background()
	open := &listing.Listing{ID: 1, ArtistID: 7, Title: "Portrait", Status: listing.StatusActive}

	t.Run("NotifiesArtist", func(t *testing.T) {
		f := newFixture()
		f.listings.On("Get", ctx, int64(1)).Return(open, nil).Once()
		f.repo.On("Create", ctx, int64(1), int64(9), "Hi there").
			Return(&Request{ID: 3, ListingID: 1, ArtistID: 7, ClientID: 9, Status: StatusPending}, nil).Once()
		f.notifier.On("Notify", ctx, mock.MatchedBy(func(p notification.NotifyParams) bool {
			return p.UserID == 7 && p.Type == notification.TypeCommissionRequested && p.Link == "/commissions/3"
		})).Return(&notification.Notification{ID: 1}, nil).Once()

		req, err := f.svc.Request(ctx, 9, 1, "  Hi there ")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		f.notifier.AssertExpectations(t)
	})

	t.Run("NotifyFailureDoesNotFail", func(t *testing.T) {
		f := newFixture()
		f.listings.On("Get", ctx, int64(1)).Return(open, nil).Once()
		f.repo.On("Create", ctx, int64(1), int64(9), "Hi").Return(&Request{ID: 3}, nil).Once()
		f.notifier.On("Notify", ctx, mock.Anything).Return(nil, errors.New("db error")).Once()

		_, err := f.svc.Request(ctx, 9, 1, "Hi")
		assert.NoError(t, err)
	})

	t.Run("OwnListing", func(t *testing.T) {
		f := newFixture()
		f.listings.On("Get", ctx, int64(1)).Return(open, nil).Once()

		_, err := f.svc.Request(ctx, 7, 1, "Hi")
		assert.ErrorIs(t, err, ErrOwnListing)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ClosedListing", func(t *testing.T) {
		f := newFixture()
		f.listings.On("Get", ctx, int64(2)).Return(&listing.Listing{ID: 2, ArtistID: 7, Status: listing.StatusDraft}, nil).Once()

		_, err := f.svc.Request(ctx, 9, 2, "Hi")
		assert.ErrorIs(t, err, ErrListingClosed)
	})

	t.Run("MissingListing", func(t *testing.T) {
		f := newFixture()
		f.listings.On("Get", ctx, int64(5)).Return(nil, listing.ErrListingNotFound).Once()

		_, err := f.svc.Request(ctx, 9, 5, "Hi")
		assert.ErrorIs(t, err, listing.ErrListingNotFound)
	})

	t.Run("MessageValidation", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Request(ctx, 9, 1, "   ")
		assert.ErrorIs(t, err, ErrEmptyRequestInput)

		_, err = f.svc.Request(ctx, 9, 1, strings.Repeat("a", maxMessageLength+1))
		assert.ErrorIs(t, err, ErrMessageTooLong)
		f.listings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestService_Respond(t *testing.T) {
	ctx := context.Background()
	pending := func() *Request {
		return &Request{ID: 3, ListingID: 1, ListingTitle: "Portrait", ArtistID: 7, ClientID: 9, Status: StatusPending}
	}

	t.Run("Accept", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(3)).Return(pending(), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(3), StatusPending, StatusAccepted).Return(nil).Once()
		f.notifier.On("Notify", ctx, mock.MatchedBy(func(p notification.NotifyParams) bool {
			return p.UserID == 9 && p.Type == notification.TypeCommissionAccepted
		})).Return(&notification.Notification{}, nil).Once()

		req, err := f.svc.Respond(ctx, 7, 3, true)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, req.Status)
		f.repo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Decline", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(3)).Return(pending(), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(3), StatusPending, StatusDeclined).Return(nil).Once()
		f.notifier.On("Notify", ctx, mock.MatchedBy(func(p notification.NotifyParams) bool {
			return p.Type == notification.TypeCommissionDeclined
		})).Return(&notification.Notification{}, nil).Once()

		req, err := f.svc.Respond(ctx, 7, 3, false)
		require.NoError(t, err)
		assert.Equal(t, StatusDeclined, req.Status)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(3)).Return(pending(), nil).Once()

		_, err := f.svc.Respond(ctx, 8, 3, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("AlreadyAnswered", func(t *testing.T) {
		f := newFixture()
		answered := pending()
		answered.Status = StatusDeclined
		f.repo.On("Get", ctx, int64(3)).Return(answered, nil).Once()

		_, err := f.svc.Respond(ctx, 7, 3, true)
		assert.ErrorIs(t, err, ErrNotPending)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRace", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(3)).Return(pending(), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(3), StatusPending, StatusAccepted).Return(ErrNotPending).Once()

		_, err := f.svc.Respond(ctx, 7, 3, true)
		assert.ErrorIs(t, err, ErrNotPending)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})
}
