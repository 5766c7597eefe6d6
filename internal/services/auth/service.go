package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/charsheet-go/internal/dependencies/clock"
	"github.com/mcoot/charsheet-go/internal/dependencies/random"
	"github.com/mcoot/charsheet-go/internal/model"
	"github.com/mcoot/charsheet-go/internal/services/token"
	"github.com/mcoot/charsheet-go/internal/storage"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
)

// Session is the result of a successful login
type Session struct {
	Token     string
	Principal model.Principal
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles account registration and login
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	tokens  *token.Service
	logger  *slog.Logger
	cost    int
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, random random.Random, tokens *token.Service, cfg Config, logger *slog.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		tokens:  tokens,
		logger:  logger,
		cost:    cfg.BcryptCost,
	}
}

// Register creates a player account
func (s *Service) Register(ctx context.Context, name, email, password string) (model.Principal, error) {
	user, err := s.createUser(ctx, name, email, password, false)
	if err != nil {
		return model.Principal{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID.String())
	return model.NewPrincipal(user), nil
}

// EnsureMaster makes sure a master account exists for the email.
// An existing account is promoted; its password is left untouched.
func (s *Service) EnsureMaster(ctx context.Context, name, email, password string) (model.Principal, error) {
	existing, err := s.storage.GetUserByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		if !existing.IsMaster {
			existing.IsMaster = true
			existing.UpdatedAt = s.clock.Now()
			if err := s.storage.SaveUser(ctx, existing); err != nil {
				return model.Principal{}, err
			}
			s.logger.Info("user promoted to master", "user_id", existing.ID.String())
		}
		return model.NewPrincipal(existing), nil
	case !errors.Is(err, model.ErrUserNotFound):
		return model.Principal{}, err
	}

	user, err := s.createUser(ctx, name, email, password, true)
	if err != nil {
		return model.Principal{}, err
	}
	s.logger.Info("master account created", "user_id", user.ID.String())
	return model.NewPrincipal(user), nil
}

// Login checks the password and issues a signed token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	principal := model.NewPrincipal(user)
	signed, expiresAt, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		Principal: principal,
		ExpiresAt: expiresAt,
	}, nil
}

// PrincipalForEmail loads the user for a verified login handle
func (s *Service) PrincipalForEmail(ctx context.Context, email string) (model.Principal, error) {
	user, err := s.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return model.Principal{}, err
	}
	return model.NewPrincipal(user), nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, master bool) (*model.User, error) {
	displayName, err := model.NewName(name)
	if err != nil {
		return nil, err
	}
	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidValue, MinPasswordLength)
	}

	_, err = s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		ID:           s.random.NewID(),
		Name:         displayName,
		Email:        email,
		PasswordHash: string(hash),
		IsMaster:     master,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address %q", model.ErrInvalidValue, email)
	}
	return email, nil
}
