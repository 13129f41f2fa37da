package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SkipToken is the message-step input meaning "no message".
const SkipToken = "skip"

// minWalletAddressLen applies to every network.
const minWalletAddressLen = 10

// decimalRegex is plain decimal notation: no exponents, no hex, no "Inf".
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ValidateEmail accepts any text containing both '@' and '.'.
func ValidateEmail(text string) (string, error) {
	v := strings.TrimSpace(text)
	if !strings.Contains(v, "@") || !strings.Contains(v, ".") {
		return "", Invalid("Invalid email format. Please try again:")
	}
	return v, nil
}

// ValidateAmount accepts a finite decimal strictly greater than zero. The trimmed text is kept verbatim.
func ValidateAmount(text string) (string, error) {
	v := strings.TrimSpace(text)
	if !decimalRegex.MatchString(v) {
		return "", Invalid("Invalid amount. Please enter a positive number:")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f <= 0 {
		return "", Invalid("Invalid amount. Please enter a positive number:")
	}
	return v, nil
}

// ValidateWalletAddress accepts any text of at least 10 characters.
func ValidateWalletAddress(text string) (string, error) {
	v := strings.TrimSpace(text)
	if utf8.RuneCountInString(v) < minWalletAddressLen {
		return "", Invalid("Invalid wallet address. Please try again:")
	}
	return v, nil
}

// ValidateOptionalMessage maps "skip" to the empty message and keeps anything else verbatim.
func ValidateOptionalMessage(text string) (string, error) {
	if strings.TrimSpace(text) == SkipToken {
		return "", nil
	}
	return text, nil
}

// ValidateOTP accepts any non-empty code; the API is the authority on correctness.
func ValidateOTP(text string) (string, error) {
	v := strings.TrimSpace(text)
	if v == "" {
		return "", Invalid("Please enter the code from your email:")
	}
	return v, nil
}
