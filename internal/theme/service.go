package theme

import (
	"context"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Get(ctx context.Context, userID int64) (Palette, error)
	Update(ctx context.Context, userID int64, p Palette) (Palette, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, userID int64) (Palette, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Palette{}, err
	}
	if p == nil {
		return DefaultPalette, nil
	}
	return *p, nil
}

func (s *service) Update(ctx context.Context, userID int64, p Palette) (Palette, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateTheme"),
		zap.Int64("user_id", userID),
	)

	valid, err := p.Validate()
	if err != nil {
		log.Warn("invalid palette", zap.Error(err))
		return Palette{}, err
	}
	if err := s.repo.Save(ctx, userID, valid); err != nil {
		return Palette{}, err
	}

	log.Info("UpdateTheme success")
	return valid, nil
}
