package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/otpauth/internal/common"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail trims and lowercases email and checks it looks like
// local@domain.tld. It returns common.ErrInvalidEmail otherwise.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if len(e) > maxEmailLength || !emailPattern.MatchString(e) {
		return "", common.ErrInvalidEmail
	}
	return e, nil
}
