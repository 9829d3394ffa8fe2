package services

import (
	"context"
	"strings"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/auth"
	"github.com/dcruz/schoolgate/internal/pkg/logger"
)

// UserService handles staff account management
type UserService struct {
	userRepo *repositories.UserRepository
	roleRepo *repositories.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo *repositories.UserRepository, roleRepo *repositories.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// CreateUser creates a staff account with an optional primary role and
// assigned role set.
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if req.RoleID != nil {
		if _, err := s.roleRepo.GetByID(ctx, *req.RoleID); err != nil {
			return nil, err
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		RoleID:    req.RoleID,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if len(req.RoleIDs) > 0 {
		if err := s.userRepo.ReplaceRoles(ctx, user.ID, req.RoleIDs); err != nil {
			return nil, err
		}
	}

	logger.Info().Int64("userId", user.ID).Str("email", user.Email).Msg("User created")

	return s.GetUser(ctx, user.ID)
}

// GetUser retrieves a user with their full role set.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Roles, err = s.userRepo.GetRoles(ctx, id); err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers retrieves all users with their role sets.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.Roles, err = s.userRepo.GetRoles(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	return users, nil
}

// UpdateUser applies the non-empty fields of the request. A present RoleIDs
// replaces the user's full assigned role set.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Password != "" {
		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}
	if req.RoleID != nil {
		if _, err := s.roleRepo.GetByID(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = req.RoleID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.RoleIDs != nil {
		if err := s.userRepo.ReplaceRoles(ctx, id, *req.RoleIDs); err != nil {
			return nil, err
		}
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes a staff account. Users cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperrors.NewBadRequestError("cannot delete your own account")
	}

	return s.userRepo.Delete(ctx, id)
}
