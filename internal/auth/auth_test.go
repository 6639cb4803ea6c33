package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"moneybook/internal/storage"
	"moneybook/internal/storage/memory"
)

type countingStore struct {
	storage.UserStore
	calls int
}

func (c *countingStore) CreateUser(ctx context.Context, email, hash string) (storage.User, error) {
	c.calls++
	return c.UserStore.CreateUser(ctx, email, hash)
}

func (c *countingStore) UserByEmail(ctx context.Context, email string) (storage.User, error) {
	c.calls++
	return c.UserStore.UserByEmail(ctx, email)
}

func TestValidateCredentials(t *testing.T) {
	cases := []struct {
		email, password string
		want            error
	}{
		{"a@b.co", "secret", nil},
		{" a@b.co ", "123456", nil},
		{"", "secret", ErrInvalidEmail},
		{"not-an-email", "secret", ErrInvalidEmail},
		{"a@b", "secret", ErrInvalidEmail},
		{"a b@c.d", "secret", ErrInvalidEmail},
		{"a@b.co", "12345", ErrPasswordTooShort},
		{"a@b.co", "", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		if err := ValidateCredentials(tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Errorf("ValidateCredentials(%q, %q) = %v, want %v", tc.email, tc.password, err, tc.want)
		}
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(memory.New(), bcrypt.MinCost)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, "Alice@Example.com", "password1")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id.OwnerID == "" || id.Email != "alice@example.com" {
		t.Fatalf("identity = %+v", id)
	}

	if _, err := svc.SignUp(ctx, "alice@example.com", "password2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := svc.SignIn(ctx, "alice@example.com", "password1")
	if err != nil || got.OwnerID != id.OwnerID {
		t.Fatalf("SignIn = %+v, %v", got, err)
	}
	if _, err := svc.SignIn(ctx, "alice@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLocalValidationSkipsStore(t *testing.T) {
	store := &countingStore{UserStore: memory.New()}
	svc := NewService(store, bcrypt.MinCost)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "bad", "password"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@b.co", "123"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store called %d times for invalid input", store.calls)
	}
}
