package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, userID int64) (*Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, userID int64, input UpsertInput) (*Profile, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func TestService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("TrimsAndSaves", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		want := UpsertInput{DisplayName: "Mira", Email: "mira@example.com", Bio: "inks"}
		repo.On("Upsert", ctx, int64(3), want).Return(&Profile{UserID: 3, DisplayName: "Mira"}, nil).Once()

		p, err := svc.Upsert(ctx, 3, UpsertInput{DisplayName: " Mira ", Email: "mira@example.com ", Bio: "inks\n"})
		assert.NoError(t, err)
		assert.Equal(t, "Mira", p.DisplayName)
		repo.AssertExpectations(t)
	})

	t.Run("EmailOptional", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Upsert", ctx, int64(3), UpsertInput{DisplayName: "Mira"}).Return(&Profile{UserID: 3}, nil).Once()

		_, err := svc.Upsert(ctx, 3, UpsertInput{DisplayName: "Mira"})
		assert.NoError(t, err)
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name  string
			input UpsertInput
			want  error
		}{
			{"blank name", UpsertInput{DisplayName: "  "}, ErrInvalidDisplayName},
			{"bad email", UpsertInput{DisplayName: "Mira", Email: "not-an-email"}, ErrInvalidEmail},
			{"display form email", UpsertInput{DisplayName: "Mira", Email: "Mira <mira@example.com>"}, ErrInvalidEmail},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := new(MockRepository)
				svc := NewService(repo)

				_, err := svc.Upsert(ctx, 3, tt.input)
				assert.ErrorIs(t, err, tt.want)
				repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Upsert", ctx, int64(3), mock.Anything).Return(nil, errors.New("db error")).Once()

		_, err := svc.Upsert(ctx, 3, UpsertInput{DisplayName: "Mira"})
		assert.EqualError(t, err, "db error")
	})
}

func TestService_Contact(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Get", ctx, int64(3)).Return(&Profile{UserID: 3, DisplayName: "Mira", Email: "mira@example.com"}, nil).Once()

		c, err := svc.Contact(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, &Contact{UserID: 3, DisplayName: "Mira", Email: "mira@example.com"}, c)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Get", ctx, int64(4)).Return(nil, ErrProfileNotFound).Once()

		_, err := svc.Contact(ctx, 4)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}
