package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StringUtils provides string utility functions
type StringUtils struct{}

// IsEmpty checks if a string is empty or contains only whitespace
func (StringUtils) IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsNotEmpty checks if a string is not empty
func (StringUtils) IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Truncate truncates a string to a maximum length
func (StringUtils) Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Contains checks if a slice contains a string (case-sensitive)
func (StringUtils) Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// TimeUtils provides time utility functions
type TimeUtils struct{}

// Now returns the current UTC time
func (TimeUtils) Now() time.Time {
	return time.Now().UTC()
}

// ToISO8601 formats time as ISO 8601 string
func (TimeUtils) ToISO8601(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FromISO8601 parses ISO 8601 string to time
func (TimeUtils) FromISO8601(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatDuration formats a duration in a human-readable way
func (TimeUtils) FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	return fmt.Sprintf("%.1fd", d.Hours()/24)
}

// CryptoUtils provides cryptographic utility functions
type CryptoUtils struct{}

// GenerateUUID generates a new UUID
func (CryptoUtils) GenerateUUID() string {
	return uuid.New().String()
}

// ValidateUUID validates a UUID string
func (CryptoUtils) ValidateUUID(uuidStr string) bool {
	_, err := uuid.Parse(uuidStr)
	return err == nil
}

// ValidationUtils provides validation utility functions
type ValidationUtils struct{}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail validates email format
func (ValidationUtils) IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Global utility instances for easy access
var (
	Strings    = StringUtils{}
	Times      = TimeUtils{}
	Crypto     = CryptoUtils{}
	Validation = ValidationUtils{}
)
