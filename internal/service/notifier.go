package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/models"
)

// Notifier tells account holders about moderation decisions. Calls run
// after the decision is committed; their errors never undo it.
type Notifier interface {
	NotifyBanned(ctx context.Context, user *models.User, entry *models.BanLog) error
	NotifyUnbanned(ctx context.Context, user *models.User, entry *models.BanLog) error
}

// NoopNotifier only logs the notification it would have sent.
type NoopNotifier struct{}

// NotifyBanned implements Notifier.
func (NoopNotifier) NotifyBanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	log.Debug().Int64("user_id", user.ID).Str("action", entry.Action).Msg("Ban notification skipped")
	return nil
}

// NotifyUnbanned implements Notifier.
func (NoopNotifier) NotifyUnbanned(ctx context.Context, user *models.User, entry *models.BanLog) error {
	log.Debug().Int64("user_id", user.ID).Msg("Unban notification skipped")
	return nil
}
