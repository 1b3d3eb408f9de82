package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/repository"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// UserService handles user-related operations
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile retrieves a user by ID
func (s *UserService) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateProfile updates a user's name and email. Empty fields are left
// unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, update *models.UserUpdate) (*models.User, error) {
	update.Email = utils.NormalizeEmail(update.Email)
	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)
	if err := utils.ValidateStruct(update); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := false

	if update.Email != "" && update.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, update.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return nil, utils.NewDuplicateError("User", "email", update.Email)
		}

		user.Email = update.Email
		changes = true
	}

	if update.FirstName != "" && update.FirstName != user.FirstName {
		user.FirstName = update.FirstName
		changes = true
	}

	if update.LastName != "" && update.LastName != user.LastName {
		user.LastName = update.LastName
		changes = true
	}

	if changes {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		utils.LogAuth(constants.LogEventUserUpdate, strconv.FormatInt(user.ID, 10), utils.MaskEmail(user.Email), true, "")
		log.Info().
			Int64("user_id", user.ID).
			Msg("User profile updated")
	}

	return user.Sanitize(), nil
}
