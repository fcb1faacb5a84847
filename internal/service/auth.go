package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// TokenType is reported to clients alongside every issued token.
const TokenType = "bearer"

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	TokenType string
	TTL       time.Duration
	User      *model.User
}

// AuthService handles registration, credential checks and session issuance.
type AuthService struct {
	users  UserStore
	hasher *crypto.PasswordHasher
	tokens *crypto.TokenManager
	ttl    time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. ttl is the lifetime of every
// token issued by Login.
func NewAuthService(users UserStore, hasher *crypto.PasswordHasher, tokens *crypto.TokenManager, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ttl:    ttl,
	}
}

// Register creates a new user account. No token is issued.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:          req.Email,
		HashedPassword: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user whose email and password match. Unknown
// email and wrong password are both reported as ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real check.
			_, _ = s.hasher.Verify(password, s.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	match, err := s.hasher.Verify(password, user.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("verifying password for user %d: %w", user.ID, err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (LoginResult, error) {
	if err := validateStruct(req); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(user.Email, user.ID, s.ttl)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     token,
		TokenType: TokenType,
		TTL:       s.ttl,
		User:      user,
	}, nil
}

// CurrentUser loads the account behind a verified session.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			slog.Error("computing dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
