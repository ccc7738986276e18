package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"arkom-be/internal/logger"
	"arkom-be/internal/metrics"
	"arkom-be/internal/profile"

	"go.uber.org/zap"
)

// ContactLookup resolves the email address of a recipient.
type ContactLookup interface {
	Contact(ctx context.Context, userID int64) (*profile.Contact, error)
}

type Service interface {
	Notify(ctx context.Context, p NotifyParams) (*Notification, error)
	Poll(ctx context.Context, userID int64, since *time.Time, unreadOnly bool) (*PollResult, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type service struct {
	repo     Repository
	contacts ContactLookup
	mailer   Mailer
}

func NewService(repo Repository, contacts ContactLookup, mailer Mailer) Service {
	if mailer == nil {
		mailer = nopMailer{}
	}
	return &service{repo: repo, contacts: contacts, mailer: mailer}
}

// Notify stores an in-app notification and then tries to email it. Only the
// store write can fail the call.
func (s *service) Notify(ctx context.Context, p NotifyParams) (*Notification, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Notify"),
		zap.Int64("recipient_id", p.UserID),
		zap.String("type", p.Type),
	)

	p.Title = strings.TrimSpace(p.Title)
	if p.UserID == 0 || p.Title == "" {
		return nil, ErrInvalidNotification
	}

	n, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Error("failed to store notification", zap.Error(err))
		return nil, err
	}

	s.email(ctx, log, n)

	log.Info("Notify success", zap.Int64("notification_id", n.ID))
	return n, nil
}

func (s *service) email(ctx context.Context, log *zap.Logger, n *Notification) {
	if s.contacts == nil {
		return
	}
	c, err := s.contacts.Contact(ctx, n.UserID)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			log.Warn("contact lookup failed", zap.Error(err))
		}
		return
	}
	if c.Email == "" {
		return
	}

	// The send outlives neither emailTimeout nor the request's cancellation.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailTimeout)
	defer cancel()

	err = s.mailer.Send(sendCtx, Email{
		To:             c.Email,
		Subject:        n.Title,
		Text:           emailText(c.DisplayName, n),
		IdempotencyKey: fmt.Sprintf("notification-%d", n.ID),
	})
	if err != nil {
		metrics.EmailsFailed.Inc()
		log.Warn("notification email failed", zap.Error(err))
		return
	}
	metrics.EmailsSent.Inc()
}

func emailText(name string, n *Notification) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	}
	b.WriteString(n.Message)
	if n.Link != "" {
		fmt.Fprintf(&b, "\n\n%s", n.Link)
	}
	return b.String()
}

// Poll is what the frontend calls on an interval. since limits the items to
// newer ones; the unread count always covers everything.
func (s *service) Poll(ctx context.Context, userID int64, since *time.Time, unreadOnly bool) (*PollResult, error) {
	items, err := s.repo.List(ctx, userID, since, unreadOnly, pollLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PollResult{Items: items, UnreadCount: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.FromCtx(ctx).Info("MarkAllRead success",
		zap.String("layer", "service"),
		zap.Int64("user_id", userID),
		zap.Int64("updated", n),
	)
	return n, nil
}
