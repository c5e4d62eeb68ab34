package utils

import (
	"fmt"
	"regexp"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9\-]{1,64}$`)

// ValidateIdentifier checks an external identifier (client, product, expert)
func ValidateIdentifier(field, id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid %s: %q", field, id)
	}
	return nil
}

// ValidateAmount validates a claimed savings amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
