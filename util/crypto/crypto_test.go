package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("Str0ng!Pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Str0ng!Pass", hash)
	assert.True(t, CheckPasswordHash(hash, "Str0ng!Pass"))
	assert.False(t, CheckPasswordHash(hash, "str0ng!pass"))
	assert.False(t, CheckPasswordHash("not-a-hash", "Str0ng!Pass"))
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPasswordAsBcrypt("Str0ng!Pass", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPasswordAsBcrypt("Str0ng!Pass", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, CheckPasswordHash(a, "Str0ng!Pass"))
	assert.True(t, CheckPasswordHash(b, "Str0ng!Pass"))
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"abc", false},
		{"Ab1!", false},
		{"abcdefgh", false},
		{"ABCDEFG1!", false},
		{"abcdefg1!", false},
		{"Abcdefgh!", false},
		{"Abcdefg12", false},
		{"Abcdef1!", true},
		{"Str0ng!Pass", true},
		{"Pässw0rd#", true},
		{"Tab\t1aaaaA", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrongPassword(tt.password))
		})
	}
}

func TestFitsBcrypt(t *testing.T) {
	assert.True(t, FitsBcrypt(strings.Repeat("a", MaxPasswordLength)))
	assert.False(t, FitsBcrypt(strings.Repeat("a", MaxPasswordLength+1)))
	// multi-byte runes count by their encoded size
	assert.False(t, FitsBcrypt(strings.Repeat("é", 37)))
}
