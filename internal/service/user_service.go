package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"account_service/internal/model"
	"account_service/internal/repository"
	"account_service/internal/utils"
)

// UserService provides authorization-gated operations on user records
type UserService interface {
	Create(ctx context.Context, caller Principal, email, password string) (*model.User, error)
	List(ctx context.Context, caller Principal) ([]model.UserSummary, error)
	Get(ctx context.Context, caller Principal, id int) (*model.User, error)
	Update(ctx context.Context, caller Principal, id int, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, caller Principal, id int) error
}

type userService struct {
	userRepo repository.UserRepository
	hasher   *utils.PasswordHasher
	logger   *slog.Logger
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, hasher *utils.PasswordHasher, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, hasher: hasher, logger: logger, now: time.Now}
}

// Create provisions a USER account on behalf of an admin
func (s *userService) Create(ctx context.Context, caller Principal, email, password string) (*model.User, error) {
	if err := Authorize(caller, ActionCreate, 0); err != nil {
		return nil, err
	}
	if err := (model.CredentialsRequest{Email: email, Password: password}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     email,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.logger.InfoContext(ctx, "admin created user", "admin_id", caller.UserID, "user_id", user.ID)
	return user, nil
}

// List returns the id and email of every user
func (s *userService) List(ctx context.Context, caller Principal) ([]model.UserSummary, error) {
	if err := Authorize(caller, ActionList, 0); err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, model.UserSummary{ID: u.ID, Email: u.Email})
	}
	return summaries, nil
}

// Get returns the user with id. A USER asking for someone else is refused before
// the lookup, so the response does not reveal whether the id exists.
func (s *userService) Get(ctx context.Context, caller Principal, id int) (*model.User, error) {
	if err := Authorize(caller, ActionView, id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Update changes email and/or password of the user with id
func (s *userService) Update(ctx context.Context, caller Principal, id int, req model.UpdateUserRequest) (*model.User, error) {
	if err := Authorize(caller, ActionUpdate, id); err != nil {
		return nil, err
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.Email != nil {
		existingUser, err := s.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil && existingUser.ID != user.ID {
			return nil, ErrUserAlreadyExists
		}
		user.Email = *req.Email
		user.Username = *req.Email
	}
	if req.Password != nil {
		hashedPassword, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user updated",
		"caller_id", caller.UserID, "user_id", user.ID,
		"email_changed", req.Email != nil, "password_changed", req.Password != nil)
	return user, nil
}

// Delete removes the user with id together with their session
func (s *userService) Delete(ctx context.Context, caller Principal, id int) error {
	if err := Authorize(caller, ActionDelete, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted", "caller_id", caller.UserID, "user_id", id)
	return nil
}

func (s *userService) find(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
