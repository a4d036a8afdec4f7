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

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentSession(ctx context.Context, userID int) (*model.Session, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      *utils.PasswordHasher
	jwtUtil     *utils.JWTUtil
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *utils.PasswordHasher,
	jwtUtil *utils.JWTUtil,
	logger *slog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		jwtUtil:     jwtUtil,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a new user account. The first account stored while no admin
// exists becomes ADMIN; all others are USER.
func (s *authService) Register(ctx context.Context, email, password string) (*model.User, error) {
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
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.CreateWithBootstrapRole(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	if user.Role == model.RoleAdmin {
		s.logger.InfoContext(ctx, "registered user granted admin, no admin existed", "user_id", user.ID)
	} else {
		s.logger.InfoContext(ctx, "registered user", "user_id", user.ID, "role", user.Role)
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token. Unknown email and wrong
// password fail identically with ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if err := (model.CredentialsRequest{Email: email, Password: password}).Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		s.hasher.BurnCompare(password)
		return "", ErrInvalidCredentials
	}
	if !s.hasher.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	// Issued after the password check so the TTL starts at the moment of success.
	issued, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	session := &model.Session{
		UserID:    user.ID,
		Token:     issued.Token,
		CreatedAt: issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "expires_at", issued.ExpiresAt)
	return issued.Token, nil
}

// CurrentSession returns the latest session recorded for userID
func (s *authService) CurrentSession(ctx context.Context, userID int) (*model.Session, error) {
	session, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
