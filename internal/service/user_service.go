package service

import (
	"context"
	"errors"

	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
	"github.com/travel-buddies/travel-buddies-backend/internal/auth"
	"github.com/travel-buddies/travel-buddies-backend/internal/store"
	"github.com/travel-buddies/travel-buddies-backend/logger"
	"github.com/travel-buddies/travel-buddies-backend/types"
	"go.uber.org/zap"
)

// UserService handles registration, login, and profile management.
type UserService struct {
	log    *zap.SugaredLogger
	users  store.UserStore
	tokens *auth.TokenService
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, tokens *auth.TokenService) *UserService {
	return &UserService{
		log:    logger.GetLogger().Named("user_service"),
		users:  users,
		tokens: tokens,
	}
}

// Register creates a new account with a hashed password. New accounts
// start as travelers; roles are elevated out of band.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hash,
		FullName:       req.FullName,
		Bio:            req.Bio,
		Role:           types.UserRoleTraveler,
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.NewConflictError("Email or username already registered", "")
		}
		return nil, err
	}
	user.ID = id

	s.log.Infow("Registered new user", "userID", id, "username", user.Username)
	return user, nil
}

// Login exchanges credentials for a bearer token. Unknown emails and
// wrong passwords produce the same authentication error.
func (s *UserService) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.AuthenticationFailed("Invalid email or password")
		}
		return nil, err
	}

	if !auth.CheckPassword(req.Password, user.HashedPassword) {
		return nil, apperrors.AuthenticationFailed("Invalid email or password")
	}

	token, err := s.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &types.LoginResponse{Token: token, User: *user}, nil
}

// GetUser returns a user's public profile.
func (s *UserService) GetUser(ctx context.Context, id string) (*types.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User", id)
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns users, optionally filtered by role.
func (s *UserService) ListUsers(ctx context.Context, role string, skip, limit int) ([]types.User, error) {
	return s.users.ListUsers(ctx, role, skip, limit)
}

// VerifyUser marks an account as verified. Admin only.
func (s *UserService) VerifyUser(ctx context.Context, callerID, targetID string) error {
	caller, err := s.GetUser(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role != types.UserRoleAdmin {
		return apperrors.Forbidden("Only admins may verify users", "")
	}

	if err := s.users.SetVerified(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("User", targetID)
		}
		return err
	}
	s.log.Infow("Verified user", "userID", targetID, "verifiedBy", callerID)
	return nil
}

// UpdateProfile applies a partial update to the caller's own profile and
// returns the updated user. A new password is hashed before storage.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req types.UserUpdateRequest) (*types.User, error) {
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		req.Password = &hash
	}

	if err := s.users.UpdateUser(ctx, userID, req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User", userID)
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}
