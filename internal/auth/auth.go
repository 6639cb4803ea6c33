// Package auth signs users up and in against a UserStore using bcrypt
// password hashes. Inputs are validated locally before any store call.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"moneybook/internal/storage"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identity is the signed in principal. OwnerID scopes every record query.
type Identity struct {
	OwnerID string
	Email   string
}

// Authenticator is the identity provider seen by the HTTP layer.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
}

type Service struct {
	users storage.UserStore
	cost  int
}

// NewService returns a Service hashing with cost; zero means bcrypt.DefaultCost.
func NewService(users storage.UserStore, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost}
}

// ValidateCredentials checks email shape and password length.
func ValidateCredentials(email, password string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) SignUp(ctx context.Context, email, password string) (Identity, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return Identity{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, email, string(hash))
	if errors.Is(err, storage.ErrEmailTaken) {
		return Identity{}, ErrEmailTaken
	}
	if err != nil {
		return Identity{}, fmt.Errorf("create user: %w", err)
	}
	return Identity{OwnerID: u.ID, Email: u.Email}, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return Identity{}, err
	}
	u, err := s.users.UserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{OwnerID: u.ID, Email: u.Email}, nil
}
