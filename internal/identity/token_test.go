package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainCNIC(t *testing.T) {
	token, err := Parse("12345-1234567-1")
	require.NoError(t, err)

	assert.Equal(t, KindPlainCNIC, token.Kind)
	assert.Equal(t, "12345-1234567-1", token.CNIC)
}

func TestParseKeyedToken(t *testing.T) {
	token, err := Parse("CNIC:12345-1234567-1|PASS:s3cret")
	require.NoError(t, err)

	assert.Equal(t, KindKeyed, token.Kind)
	assert.Equal(t, "12345-1234567-1", token.CNIC)
	assert.Equal(t, "s3cret", token.Password)
}

func TestParseUserToken(t *testing.T) {
	token, err := Parse("USER:1234567890|CNIC:12345-1234567-1|USERNAME:ali")
	require.NoError(t, err)

	assert.Equal(t, KindUser, token.Kind)
	assert.Equal(t, "1234567890", token.UserID)
	assert.Equal(t, "12345-1234567-1", token.CNIC)
	assert.Equal(t, "ali", token.Username)
}

func TestParseKeyedCNICOnly(t *testing.T) {
	token, err := Parse("CNIC:12345-1234567-1")
	require.NoError(t, err)

	assert.Equal(t, KindPlainCNIC, token.Kind)
	assert.Equal(t, "12345-1234567-1", token.CNIC)
	assert.Empty(t, token.Password)
}

func TestParseKeysAreCaseInsensitive(t *testing.T) {
	token, err := Parse("cnic:12345-1234567-1|pass:s3cret")
	require.NoError(t, err)

	assert.Equal(t, KindKeyed, token.Kind)
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"12345-12345671",        // bad card format
		"1234-1234567-1",        // short block
		"not a token",
		"USER:12345",            // user id without card number
		"USER:12345|USERNAME:a", // still no card number
		"PASS:s3cret",           // keyed without CNIC
		"CNIC:|PASS:s3cret",     // empty value
		"CNIC:12345|PASS",       // part without separator
	}

	for _, raw := range cases {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrMalformedToken, "raw=%q", raw)
	}
}
