package service

import (
	"context"
	"database/sql"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/database"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

const auditSavepoint = "ban_audit"

// BanCommand describes a ban decision. A zero ActorID attributes the ban to
// the system actor; a nil Until makes it permanent.
type BanCommand struct {
	Reason    string
	ActorID   int64
	Until     *time.Time
	IPAddress string
}

// BanService is the only writer of the ban fields of accounts. Every ban
// and unban is recorded in the ban log in the same transaction as the
// account change.
type BanService struct {
	db            *database.Pool
	userRepo      repository.UserRepository
	banLogRepo    repository.BanLogRepository
	notifier      Notifier
	systemActorID int64
	notifyTimeout time.Duration
	now           func() time.Time

	notifications sync.WaitGroup
}

// NewBanService creates a new BanService.
//
// Parameters:
//   - db: Connection pool used for the ban transactions
//   - userRepo: Repository holding the ban fields of accounts
//   - banLogRepo: Repository for the ban log
//   - notifier: Receives ban and unban notices; nil disables them
//   - systemActorID: Admin id automatic decisions are attributed to
//
// Returns:
//   - A configured BanService
func NewBanService(
	db *database.Pool,
	userRepo repository.UserRepository,
	banLogRepo repository.BanLogRepository,
	notifier Notifier,
	systemActorID int64,
) *BanService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BanService{
		db:            db,
		userRepo:      userRepo,
		banLogRepo:    banLogRepo,
		notifier:      notifier,
		systemActorID: systemActorID,
		notifyTimeout: constants.NotificationTimeout,
		now:           time.Now,
	}
}

// SystemActorID returns the admin id automatic decisions are attributed to.
func (s *BanService) SystemActorID() int64 {
	return s.systemActorID
}

// Ban bans the account. An expired ban is overwritten.
//
// Parameters:
//   - ctx: Context for transaction and cancellation control
//   - userID: The account to ban
//   - cmd: Reason, actor, optional end and request address of the ban
//
// Returns:
//   - ValidationError if the reason is missing or the end is not in the future
//   - AlreadyBannedError if a ban is in force
//   - NotFoundError if the account doesn't exist
//   - nil once the ban is stored
func (s *BanService) Ban(ctx context.Context, userID int64, cmd BanCommand) error {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return utils.NewValidationError("reason", "Ban reason is required")
	}
	if n := utf8.RuneCountInString(reason); n < constants.MinBanReasonLength || n > constants.MaxBanReasonLength {
		return utils.NewValidationError("reason", "Ban reason must be between 3 and 1000 characters")
	}

	now := s.now()
	if cmd.Until != nil && !cmd.Until.After(now) {
		return utils.NewValidationError("until", "Ban end must be in the future")
	}

	actorID := cmd.ActorID
	if actorID == 0 {
		actorID = s.systemActorID
	}
	action := constants.BanActionBanned
	if actorID == s.systemActorID {
		action = constants.BanActionAutoBanned
	}

	var user *models.User
	var entry *models.BanLog
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		account, err := s.userRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account.IsBanned(now) {
			return utils.NewAlreadyBannedError(userID)
		}

		if err := s.userRepo.SetBan(ctx, tx, userID, now, reason, actorID, cmd.Until); err != nil {
			return err
		}
		account.BannedAt = &now
		account.BannedReason = &reason
		account.BannedBy = &actorID
		account.BannedUntil = cmd.Until

		entry = models.NewBanLog(userID, actorID, action, reason, cmd.Until, cmd.IPAddress)
		s.appendAudit(ctx, tx, entry)

		user = account
		return nil
	})
	if err != nil {
		return err
	}

	event := constants.LogEventBan
	if action == constants.BanActionAutoBanned {
		event = constants.LogEventAutoBan
	}
	fields := map[string]interface{}{"reason": reason, "permanent": cmd.Until == nil}
	if cmd.Until != nil {
		fields["banned_until"] = cmd.Until.UTC().Format(time.RFC3339)
	}
	utils.LogModeration(event, userID, actorID, fields)

	s.notifyAsync(userID, action, func(ctx context.Context) error {
		return s.notifier.NotifyBanned(ctx, user, entry)
	})
	return nil
}

// Unban clears the ban of the account. Accounts whose temporary ban has
// lapsed still carry a ban record and can be unbanned.
//
// Parameters:
//   - ctx: Context for transaction and cancellation control
//   - userID: The account to unban
//   - actorID: The administrator lifting the ban, or nil for the system actor
//   - ip: The address the request came from, recorded in the ban log
//
// Returns:
//   - NotBannedError if the account carries no ban record
//   - NotFoundError if the account doesn't exist
//   - nil once the ban fields are cleared
func (s *BanService) Unban(ctx context.Context, userID int64, actorID *int64, ip string) error {
	actor := s.systemActorID
	if actorID != nil {
		actor = *actorID
	}

	_, _, err := s.unban(ctx, userID, actor, ip, false)
	return err
}

// unban lifts the ban on the row locked inside the transaction. With
// onlyExpired set it lifts nothing unless that row still holds a lapsed
// temporary ban, and returns the locked account as it stands.
func (s *BanService) unban(ctx context.Context, userID, actor int64, ip string, onlyExpired bool) (*models.User, bool, error) {
	var user *models.User
	var entry *models.BanLog
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		account, err := s.userRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if onlyExpired && !IsExpired(account, s.now()) {
			user = account
			return nil
		}
		if !account.HasBanRecord() {
			return utils.NewNotBannedError(userID)
		}

		// The entry keeps the reason and end of the ban being lifted
		entry = models.NewBanLog(userID, actor, constants.BanActionUnbanned, account.Reason(), account.BannedUntil, ip)
		s.appendAudit(ctx, tx, entry)

		if err := s.userRepo.ClearBan(ctx, tx, userID); err != nil {
			return err
		}
		account.ClearBan()

		user = account
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if entry == nil {
		return user, false, nil
	}

	utils.LogModeration(constants.LogEventUnban, userID, actor, nil)

	s.notifyAsync(userID, constants.BanActionUnbanned, func(ctx context.Context) error {
		return s.notifier.NotifyUnbanned(ctx, user, entry)
	})
	return user, true, nil
}

// Status returns the current ban status of the account.
func (s *BanService) Status(ctx context.Context, userID int64) (models.BanStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.BanStatus{}, err
	}
	return StatusOf(user, s.now()), nil
}

// ResolveExpired lifts a lapsed temporary ban of user and refreshes user in
// place with the stored ban state. The expiry is checked again on the
// locked row, so a ban placed after user was loaded stays in force.
//
// Parameters:
//   - ctx: Context for transaction and cancellation control
//   - user: A previously loaded account
//
// Returns:
//   - true if a lapsed ban was lifted
//   - false if the stored account holds no lapsed ban
//   - An error if the account could not be read or updated
func (s *BanService) ResolveExpired(ctx context.Context, user *models.User) (bool, error) {
	if !IsExpired(user, s.now()) {
		return false, nil
	}

	current, lifted, err := s.unban(ctx, user.ID, s.systemActorID, "", true)
	if err != nil {
		return false, err
	}
	user.BannedAt = current.BannedAt
	user.BannedReason = current.BannedReason
	user.BannedBy = current.BannedBy
	user.BannedUntil = current.BannedUntil

	if lifted {
		utils.LogModeration(constants.LogEventLazyUnban, user.ID, s.systemActorID, nil)
	}
	return lifted, nil
}

// Wait blocks until all dispatched notifications have finished.
func (s *BanService) Wait() {
	s.notifications.Wait()
}

// appendAudit writes entry behind a savepoint. A failed write is undone and
// logged, and the surrounding account change still commits.
func (s *BanService) appendAudit(ctx context.Context, tx *sql.Tx, entry *models.BanLog) {
	err := database.Savepoint(ctx, tx, auditSavepoint, func() error {
		return s.banLogRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("category", constants.LogCategoryModeration).
			Str("event", constants.LogEventAuditWriteFailed).
			Int64(constants.UserIDContextKey, entry.UserID).
			Int64("actor_id", entry.AdminUserID).
			Str("action", entry.Action).
			Msg(constants.LogEventAuditWriteFailed)
	}
}

func (s *BanService) notifyAsync(userID int64, action string, notify func(ctx context.Context) error) {
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		defer func() {
			if r := recover(); r != nil {
				utils.LogPanic(r, debug.Stack())
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := notify(ctx); err != nil {
			log.Warn().
				Err(err).
				Str("category", constants.LogCategoryModeration).
				Str("event", constants.LogEventNotificationFailed).
				Int64(constants.UserIDContextKey, userID).
				Str("action", action).
				Msg(constants.LogEventNotificationFailed)
		}
	}()
}

// StatusOf derives the ban status of user at now.
func StatusOf(user *models.User, now time.Time) models.BanStatus {
	if !user.IsBanned(now) {
		return models.BanStatus{Status: constants.BanStatusActive}
	}
	if user.IsPermanentlyBanned() {
		return models.BanStatus{Status: constants.BanStatusPermanentlyBanned, Reason: user.Reason()}
	}
	return models.BanStatus{
		Status: constants.BanStatusTemporarilyBanned,
		Reason: user.Reason(),
		Until:  user.BannedUntil,
	}
}

// IsExpired reports whether user carries a temporary ban that ended at or
// before now.
func IsExpired(user *models.User, now time.Time) bool {
	return user.BannedAt != nil && user.BannedUntil != nil && !user.BannedUntil.After(now)
}
