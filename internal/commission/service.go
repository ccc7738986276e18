package commission

import (
	"context"
	"fmt"
	"strings"

	"arkom-be/internal/listing"
	"arkom-be/internal/logger"
	"arkom-be/internal/notification"

	"go.uber.org/zap"
)

type ListingGetter interface {
	Get(ctx context.Context, id int64) (*listing.Listing, error)
}

type Notifier interface {
	Notify(ctx context.Context, p notification.NotifyParams) (*notification.Notification, error)
}

type Service interface {
	Request(ctx context.Context, clientID, listingID int64, message string) (*Request, error)
	ListForArtist(ctx context.Context, artistID int64) ([]*Request, error)
	ListForClient(ctx context.Context, clientID int64) ([]*Request, error)
	Respond(ctx context.Context, artistID, requestID int64, accept bool) (*Request, error)
}

type service struct {
	repo     Repository
	listings ListingGetter
	notifier Notifier
}

func NewService(repo Repository, listings ListingGetter, notifier Notifier) Service {
	return &service{repo: repo, listings: listings, notifier: notifier}
}

func (s *service) Request(ctx context.Context, clientID, listingID int64, message string) (*Request, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RequestCommission"),
		zap.Int64("client_id", clientID),
		zap.Int64("listing_id", listingID),
	)
	log.Info("RequestCommission started")

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyRequestInput
	}
	if len(message) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		log.Warn("listing lookup failed", zap.Error(err))
		return nil, err
	}
	if l.ArtistID == clientID {
		return nil, ErrOwnListing
	}
	if l.Status != listing.StatusActive {
		return nil, ErrListingClosed
	}

	req, err := s.repo.Create(ctx, listingID, clientID, message)
	if err != nil {
		log.Error("failed to create commission request", zap.Error(err))
		return nil, err
	}

	s.notify(ctx, log, notification.NotifyParams{
		UserID:  l.ArtistID,
		Type:    notification.TypeCommissionRequested,
		Title:   "New commission request",
		Message: fmt.Sprintf("You have a new request for %q.", l.Title),
		Link:    fmt.Sprintf("/commissions/%d", req.ID),
	})

	log.Info("RequestCommission success", zap.Int64("request_id", req.ID))
	return req, nil
}

func (s *service) ListForArtist(ctx context.Context, artistID int64) ([]*Request, error) {
	return s.repo.ListForArtist(ctx, artistID)
}

func (s *service) ListForClient(ctx context.Context, clientID int64) ([]*Request, error) {
	return s.repo.ListForClient(ctx, clientID)
}

func (s *service) Respond(ctx context.Context, artistID, requestID int64, accept bool) (*Request, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RespondCommission"),
		zap.Int64("artist_id", artistID),
		zap.Int64("request_id", requestID),
		zap.Bool("accept", accept),
	)
	log.Info("RespondCommission started")

	req, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ArtistID != artistID {
		return nil, ErrForbidden
	}
	if req.Status != StatusPending {
		return nil, ErrNotPending
	}

	status, kind, verb := StatusDeclined, notification.TypeCommissionDeclined, "declined"
	if accept {
		status, kind, verb = StatusAccepted, notification.TypeCommissionAccepted, "accepted"
	}

	if err := s.repo.UpdateStatus(ctx, requestID, StatusPending, status); err != nil {
		log.Warn("failed to update request status", zap.Error(err))
		return nil, err
	}
	req.Status = status

	s.notify(ctx, log, notification.NotifyParams{
		UserID:  req.ClientID,
		Type:    kind,
		Title:   "Commission request " + verb,
		Message: fmt.Sprintf("Your request for %q was %s.", req.ListingTitle, verb),
		Link:    fmt.Sprintf("/commissions/%d", req.ID),
	})

	log.Info("RespondCommission success", zap.String("status", status))
	return req, nil
}

// notify never fails the caller: the request is already stored.
func (s *service) notify(ctx context.Context, log *zap.Logger, p notification.NotifyParams) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, p); err != nil {
		log.Warn("failed to notify", zap.Int64("recipient_id", p.UserID), zap.Error(err))
	}
}
