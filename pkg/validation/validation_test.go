package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("user@example.com"))
	assert.True(t, ValidateEmail("  First.Last+tag@sub.example.org "))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("user@"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+1 555 123 4567"))
	assert.True(t, ValidatePhoneNumber("0171-2345678"))
	assert.False(t, ValidatePhoneNumber("abc"))
	assert.False(t, ValidatePhoneNumber("1"))
}

func TestValidateAlbumName(t *testing.T) {
	assert.True(t, ValidateAlbumName("Summer trip"))
	assert.False(t, ValidateAlbumName("   "))
	assert.False(t, ValidateAlbumName(strings.Repeat("x", 101)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello\x00 "))
}
