package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
)

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	userRepo userRepository
	sessions *middleware.SessionAuth
}

func NewAuthService(userRepo userRepository, sessions *middleware.SessionAuth) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Signup registers a user and logs them straight in, returning the session
// token to set as a cookie.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, "", &ValidationError{Message: "Invalid email format"}
	}
	if len(req.Password) < 8 {
		return nil, "", &ValidationError{Message: "Password must be at least 8 characters"}
	}

	// Check uniqueness
	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, "", &ConflictError{Message: "Email already registered"}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	// Hash password (bcrypt cost 12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.Name,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to establish session: %w", err)
	}

	return user, token, nil
}

// Login verifies the credential and returns a fresh session token. The error
// message never reveals whether the email is registered.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}

	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to establish session: %w", err)
	}

	return user, token, nil
}

// Logout revokes the session behind the token. Always succeeds, even for a
// missing or mangled token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}
