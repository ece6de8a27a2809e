package utils

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"regexp"
	"strings"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCode returns n characters of A-Z0-9 read from r (crypto/rand when nil).
// rand.Int keeps the distribution free of modulo bias.
func RandomCode(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	if r == nil {
		r = rand.Reader
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(r, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeCharset[num.Int64()])
	}
	return sb.String(), nil
}

var (
	confirmationPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}-[0-9]{8}(-[A-Z0-9]{4})?$`)
	prefixPattern       = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)
)

// IsValidConfirmationPrefix reports whether numbers built on prefix can be
// looked up again.
func IsValidConfirmationPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// NormalizeConfirmationNumber upper-cases and trims a confirmation number
// typed by a guest.
func NormalizeConfirmationNumber(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidConfirmationNumber checks the PREFIX-12345678-ABCD shape.
func IsValidConfirmationNumber(code string) bool {
	return confirmationPattern.MatchString(NormalizeConfirmationNumber(code))
}

// MaskEmail returns masked email for safe display
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	domain := parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 && len(domainParts[0]) > 1 {
		domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
	}
	return maskedLocal + "@" + strings.Join(domainParts, ".")
}
