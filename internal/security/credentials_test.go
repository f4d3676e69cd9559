package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
)

// memoryAccounts is an in-memory Accounts for tests.
type memoryAccounts struct {
	users  map[string]*datastore.User
	getErr error
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{users: make(map[string]*datastore.User)}
}

func (m *memoryAccounts) GetUser(_ context.Context, name string) (*datastore.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	user, ok := m.users[name]
	if !ok {
		return nil, errors.New(datastore.ErrNotFound).Category(errors.CategoryNotFound).Build()
	}
	return user, nil
}

func (m *memoryAccounts) CreateUser(_ context.Context, user *datastore.User) error {
	m.users[user.Name] = user
	return nil
}

func TestRegisterUser_HashesPassword(t *testing.T) {
	t.Parallel()

	accounts := newMemoryAccounts()
	cm := NewCredentialManager(accounts)

	require.NoError(t, cm.RegisterUser(context.Background(), "alice", "correct horse"))

	user := accounts.users["alice"]
	require.NotNil(t, user)
	assert.NotContains(t, user.PasswordHash, "correct horse")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestRegisterUser_Validation(t *testing.T) {
	t.Parallel()

	cm := NewCredentialManager(newMemoryAccounts())

	tests := []struct {
		name     string
		account  string
		password string
		want     string
	}{
		{"blank_name", "   ", "correct horse", "blank"},
		{"short_password", "alice", "pw", "at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cm.RegisterUser(context.Background(), tt.account, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var enhanced *errors.EnhancedError
			require.True(t, errors.As(err, &enhanced))
			assert.Equal(t, errors.CategoryValidation, enhanced.Category)
		})
	}
}

func TestRegisterUser_DuplicateNameRejected(t *testing.T) {
	t.Parallel()

	cm := NewCredentialManager(newMemoryAccounts())
	require.NoError(t, cm.RegisterUser(context.Background(), "alice", "correct horse"))

	err := cm.RegisterUser(context.Background(), "alice", "battery staple")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCheckCredentials_OpaqueMatchResult(t *testing.T) {
	t.Parallel()

	accounts := newMemoryAccounts()
	cm := NewCredentialManager(accounts)
	require.NoError(t, cm.RegisterUser(context.Background(), "alice", "correct horse"))

	tests := []struct {
		name     string
		account  string
		password string
		match    bool
	}{
		{"correct_password", "alice", "correct horse", true},
		{"wrong_password", "alice", "wrong", false},
		{"unknown_account", "nobody", "correct horse", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := cm.CheckCredentials(context.Background(), tt.account, tt.password)
			require.NoError(t, err, "mismatch is a result, not an error")
			assert.Equal(t, tt.match, match)
		})
	}
}

func TestCheckCredentials_StoreFailureIsAnError(t *testing.T) {
	t.Parallel()

	accounts := newMemoryAccounts()
	accounts.getErr = errors.Newf("store unavailable").Category(errors.CategoryDatabase).Build()
	cm := NewCredentialManager(accounts)

	match, err := cm.CheckCredentials(context.Background(), "alice", "correct horse")

	require.Error(t, err)
	assert.False(t, match)
	assert.True(t, strings.Contains(err.Error(), "store unavailable"))
}
