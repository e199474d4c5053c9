package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCNIC(t *testing.T) {
	assert.Equal(t, "*****-****567-1", MaskCNIC("12345-1234567-1"))
	assert.Equal(t, "", MaskCNIC("   "))
	assert.Equal(t, "1234", MaskCNIC("1234"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****cret", MaskSecret("topsecret"))
	assert.Equal(t, "", MaskSecret(""))
}

func TestSanitize(t *testing.T) {
	out := Sanitize(map[string]any{
		"cnic":   "12345-1234567-1",
		"email":  "user@example.com",
		"points": int64(50),
		"nested": map[string]any{"cnic": "54321-7654321-9"},
	})

	assert.Equal(t, "*****-****567-1", out["cnic"])
	assert.Equal(t, "****.com", out["email"])
	assert.Equal(t, int64(50), out["points"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, "*****-****321-9", nested["cnic"])
}

func TestSanitizeEmpty(t *testing.T) {
	assert.Nil(t, Sanitize(nil))
	assert.Nil(t, Sanitize(map[string]any{"": "x"}))
}
