package identity

import (
	"context"
	"errors"
	"time"

	"github.com/erp/invoicing/internal/domain/access"
	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo      identity.UserRepository
	txScope       TransactionScope
	policy        *access.Policy
	blacklist     auth.TokenBlacklist
	revocationTTL time.Duration
	logger        *zap.Logger
}

// NewUserService creates a new user service. revocationTTL is how long a
// deleted user's tokens stay blacklisted, normally the refresh token lifetime.
func NewUserService(
	userRepo identity.UserRepository,
	txScope TransactionScope,
	policy *access.Policy,
	blacklist auth.TokenBlacklist,
	revocationTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		txScope:       txScope,
		policy:        policy,
		blacklist:     blacklist,
		revocationTTL: revocationTTL,
		logger:        logger,
	}
}

// List returns a page of all users. Super-admin only.
func (s *UserService) List(ctx context.Context, caller access.Principal, filter shared.ListFilter) ([]UserResponse, int64, error) {
	if err := s.policy.Authorize(caller, access.ResourceUser, access.ActionList, uuid.Nil); err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToUserResponses(users), total, nil
}

// Get returns a single user. Callers may read themselves, super-admins anyone.
func (s *UserService) Get(ctx context.Context, caller access.Principal, id uuid.UUID) (*UserResponse, error) {
	if err := s.policy.Authorize(caller, access.ResourceUser, access.ActionRead, id); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, s.userRepo, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Update applies a partial update. Only super-admins may touch is_super_admin.
func (s *UserService) Update(ctx context.Context, caller access.Principal, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if err := s.policy.Authorize(caller, access.ResourceUser, access.ActionUpdate, id); err != nil {
		return nil, err
	}
	if req.IsSuperAdmin != nil {
		if err := s.policy.Authorize(caller, access.ResourceUser, access.ActionSetSuperAdmin, id); err != nil {
			return nil, err
		}
	}

	user, err := s.findUser(ctx, s.userRepo, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		email := identity.NormalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, identity.ErrEmailTaken
			}
		}
		if err := user.SetEmail(email); err != nil {
			return nil, err
		}
	}
	if req.IsSuperAdmin != nil {
		user.SetSuperAdmin(*req.IsSuperAdmin)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.String("by", caller.UserID.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user together with the invoices and payments they own.
// Super-admin only. Outstanding tokens of the user are revoked.
func (s *UserService) Delete(ctx context.Context, caller access.Principal, id uuid.UUID) error {
	if err := s.policy.Authorize(caller, access.ResourceUser, access.ActionDelete, id); err != nil {
		return err
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := s.findUser(ctx, repos.UserRepo(), id); err != nil {
			return err
		}
		if err := repos.PaymentRepo().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().DeleteByUser(ctx, id); err != nil {
			return err
		}
		if err := repos.UserRepo().Delete(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return identity.ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.blacklist.RevokeUser(ctx, id.String(), s.revocationTTL); err != nil {
		s.logger.Error("Failed to revoke tokens of deleted user",
			zap.String("user_id", id.String()),
			zap.Error(err))
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("by", caller.UserID.String()))
	return nil
}

func (s *UserService) findUser(ctx context.Context, repo identity.UserRepository, id uuid.UUID) (*identity.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
