package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("my-secret-password")
	require.NoError(t, err)

	assert.NotEqual(t, "my-secret-password", hash)
	assert.True(t, Verify("my-secret-password", hash))
	assert.False(t, Verify("wrong-password", hash))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("12345678"))
	assert.False(t, Validate("1234567"))
	assert.False(t, Validate(""))
}
