package user

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewUser(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		hash    string
		wantErr error
	}{
		{name: "valid", email: "Ana@Example.com", hash: "hash"},
		{name: "missing at sign", email: "ana.example.com", hash: "hash", wantErr: ErrInvalidEmail},
		{name: "empty hash", email: "ana@example.com", hash: "", wantErr: ErrEmptyPasswordHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.email, tt.hash, "Ana", "Lopez")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ana@example.com", u.Email())
			assert.Equal(t, RoleFree, u.Role())
			assert.Equal(t, "Ana Lopez", u.FullName())
			assert.True(t, u.IsNewClient())
		})
	}
}

func TestEmailVerification(t *testing.T) {
	u, err := NewUser("ana@example.com", "hash", "Ana", "Lopez")
	require.NoError(t, err)

	token, err := u.GenerateVerificationToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.ErrorIs(t, u.VerifyEmail("wrong-token"), ErrTokenMismatch)
	require.NoError(t, u.VerifyEmail(token))
	assert.True(t, u.EmailVerified())
	assert.Empty(t, u.EmailVerificationToken())

	assert.ErrorIs(t, u.VerifyEmail(token), ErrEmailAlreadyVerified)
}

func TestStoreProvisioningResult(t *testing.T) {
	u, err := NewUser("ana@example.com", "hash", "Ana", "Lopez")
	require.NoError(t, err)

	u.StoreProvisioningResult("ana@example.com", "Jaguar4821", intPtr(77), intPtr(901), 1)

	assert.False(t, u.IsNewClient())
	assert.Equal(t, "Jaguar4821", u.ExternalPassword())
	require.NotNil(t, u.ExternalClientID())
	assert.Equal(t, 77, *u.ExternalClientID())
	assert.Equal(t, 1, u.ExternalLicenses())

	// Later activations only move the license count; the first-issued
	// credentials are the only copy and must survive untouched.
	u.StoreProvisioningResult("ana@example.com", "Volcan0001", intPtr(78), intPtr(902), 6)

	assert.Equal(t, "Jaguar4821", u.ExternalPassword())
	assert.Equal(t, 77, *u.ExternalClientID())
	assert.Equal(t, 6, u.ExternalLicenses())
}

func TestStoreProvisioningResultKeepsLicensesWhenZero(t *testing.T) {
	u, err := NewUser("ana@example.com", "hash", "Ana", "Lopez")
	require.NoError(t, err)

	u.StoreProvisioningResult("ana@example.com", "Jaguar4821", intPtr(77), intPtr(901), 4)
	u.StoreProvisioningResult("", "", nil, nil, 0)

	assert.Equal(t, 4, u.ExternalLicenses())
}

func TestGeneratePortalPassword(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z][a-z]+\d{4}$`)
	for range 20 {
		pw := GeneratePortalPassword()
		assert.Regexp(t, pattern, pw)
	}
}
