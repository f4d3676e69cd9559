// Package security handles local account registration and credential checks.
// Passwords are stored as bcrypt hashes only.
package security

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/logging"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Accounts is the slice of the datastore the credential manager depends on.
type Accounts interface {
	GetUser(ctx context.Context, name string) (*datastore.User, error)
	CreateUser(ctx context.Context, user *datastore.User) error
}

// CredentialManager registers accounts and verifies logins.
type CredentialManager struct {
	accounts Accounts
	cost     int
	log      *slog.Logger
}

// NewCredentialManager creates a manager using the default bcrypt cost.
func NewCredentialManager(accounts Accounts) *CredentialManager {
	return &CredentialManager{
		accounts: accounts,
		cost:     bcrypt.DefaultCost,
		log:      logging.ForService("security"),
	}
}

// RegisterUser creates a new account with a bcrypt password hash. The name
// must be non-blank and the password at least MinPasswordLength characters.
func (cm *CredentialManager) RegisterUser(ctx context.Context, name, password string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Newf("account name cannot be blank").
			Component("security").
			Category(errors.CategoryValidation).
			Build()
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.Newf("password must be at least %d characters", MinPasswordLength).
			Component("security").
			Category(errors.CategoryValidation).
			Build()
	}

	if _, err := cm.accounts.GetUser(ctx, name); err == nil {
		return errors.Newf("account %q already exists", name).
			Component("security").
			Category(errors.CategoryConflict).
			Context("user", name).
			Build()
	} else if !errors.Is(err, datastore.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cm.cost)
	if err != nil {
		return errors.Newf("failed to hash password: %w", err).
			Component("security").
			Category(errors.CategoryGeneric).
			Build()
	}

	if err := cm.accounts.CreateUser(ctx, &datastore.User{
		Name:         name,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}

	if cm.log != nil {
		cm.log.Info("registered account", "user", name)
	}
	return nil
}

// CheckCredentials verifies a name and password pair. The result is an opaque
// match or no-match: unknown accounts and wrong passwords both report false
// with no error, so a caller cannot distinguish the two. Only a store failure
// is an error.
func (cm *CredentialManager) CheckCredentials(ctx context.Context, name, password string) (bool, error) {
	user, err := cm.accounts.GetUser(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if cm.log != nil {
			cm.log.Warn("failed login attempt", "user", user.Name)
		}
		return false, nil
	}
	return true, nil
}
