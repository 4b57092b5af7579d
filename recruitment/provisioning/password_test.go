package provisioning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword()
	require.NoError(t, err)

	assert.Len(t, password, PasswordLength)
	for _, r := range password {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected character %q", r)
	}
}

func TestGeneratePassword_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		password, err := GeneratePassword()
		require.NoError(t, err)
		seen[password] = true
	}
	assert.Greater(t, len(seen), 1, "generator must not repeat a single value")
}
