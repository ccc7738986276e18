package profile

import (
	"context"
	"net/mail"
	"strings"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	Upsert(ctx context.Context, userID int64, input UpsertInput) (*Profile, error)
	Contact(ctx context.Context, userID int64) (*Contact, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Upsert(ctx context.Context, userID int64, input UpsertInput) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpsertProfile"),
		zap.Int64("user_id", userID),
	)
	log.Info("UpsertProfile started")

	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return nil, ErrInvalidDisplayName
	}

	input.Email = strings.TrimSpace(input.Email)
	if input.Email != "" {
		addr, err := mail.ParseAddress(input.Email)
		if err != nil || addr.Address != input.Email {
			return nil, ErrInvalidEmail
		}
	}
	input.Bio = strings.TrimSpace(input.Bio)
	input.AvatarURL = strings.TrimSpace(input.AvatarURL)

	p, err := s.repo.Upsert(ctx, userID, input)
	if err != nil {
		log.Error("failed to upsert profile", zap.Error(err))
		return nil, err
	}

	log.Info("UpsertProfile success")
	return p, nil
}

// Contact returns how to reach userID. A user without a profile has no
// contact and gets ErrProfileNotFound.
func (s *service) Contact(ctx context.Context, userID int64) (*Contact, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Contact{UserID: p.UserID, DisplayName: p.DisplayName, Email: p.Email}, nil
}
