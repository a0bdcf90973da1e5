package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// RequireRole returns a Forbidden error naming the allowed roles when the
// caller has none of them.
func RequireRole(id Identity, action string, roles ...models.RoleType) error {
	if id.Is(roles...) {
		return nil
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return apperrors.NewForbiddenError(fmt.Sprintf("only %s can %s", strings.Join(names, " or "), action))
}

// AuthorizationService performs checks that need the stored user row
type AuthorizationService struct {
	userRepo repositories.UserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.UserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// RequireStoredRole re-reads the caller's user row and checks its role and
// approval status. Tokens issued before a role change are not trusted.
func (s *AuthorizationService) RequireStoredRole(ctx context.Context, id Identity, action string, roles ...models.RoleType) (*models.User, error) {
	if err := RequireRole(id, action, roles...); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewForbiddenError("caller account no longer exists")
		}
		logger.Error().Err(err).Int64("userID", id.UserID).Msg("Error getting user by ID in RequireStoredRole")
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}

	if user.Status != models.StatusApproved || !user.IsActive {
		return nil, apperrors.NewForbiddenError("caller account is not active")
	}
	if err := RequireRole(Identity{Role: user.Role}, action, roles...); err != nil {
		return nil, err
	}

	return user, nil
}
