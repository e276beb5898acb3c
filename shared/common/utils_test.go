package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringUtils_Truncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"over limit gets ellipsis", "hello world", 8, "hello..."},
		{"tiny limit has no room for ellipsis", "hello", 3, "hel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strings.Truncate(tt.input, tt.maxLen)

			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.maxLen)
		})
	}
}

func TestStringUtils_TruncateLongErrorText(t *testing.T) {
	long := strings.Repeat("x", 600)

	got := Strings.Truncate(long, 500)

	assert.Len(t, got, 500)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestValidationUtils_IsValidEmail(t *testing.T) {
	valid := []string{
		"ada@example.com",
		"grace.hopper@navy.mil",
		"user+tag@sub.domain.org",
	}
	for _, email := range valid {
		assert.True(t, Validation.IsValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing@tld",
		"@example.com",
		"spaces in@example.com",
	}
	for _, email := range invalid {
		assert.False(t, Validation.IsValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestTimeUtils_ISO8601RoundTrip(t *testing.T) {
	original := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	formatted := Times.ToISO8601(original)
	parsed, err := Times.FromISO8601(formatted)

	require.NoError(t, err)
	assert.True(t, original.Equal(parsed))
}

func TestCryptoUtils_GenerateUUID(t *testing.T) {
	first := Crypto.GenerateUUID()
	second := Crypto.GenerateUUID()

	assert.True(t, Crypto.ValidateUUID(first))
	assert.True(t, Crypto.ValidateUUID(second))
	assert.NotEqual(t, first, second)
	assert.False(t, Crypto.ValidateUUID("not-a-uuid"))
}
