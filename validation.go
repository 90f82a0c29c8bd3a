package auth

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

var usernameCharset = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsernameFormat enforces the username rules: letters, digits,
// dot, underscore, or hyphen, and none of the punctuation characters at
// either end.
func ValidateUsernameFormat(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !usernameCharset.MatchString(s) {
		return errors.New("may only contain letters, digits, '.', '_' and '-'")
	}
	switch s[0] {
	case '.', '_', '-':
		return errors.New("cannot start with '.', '_' or '-'")
	}
	switch s[len(s)-1] {
	case '.', '_', '-':
		return errors.New("cannot end with '.', '_' or '-'")
	}
	return nil
}

// ValidatePasswordStrength requires at least one uppercase letter, one
// lowercase letter, one digit, and one special character.
func ValidatePasswordStrength(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return errors.New("must contain at least one uppercase letter")
	case !hasLower:
		return errors.New("must contain at least one lowercase letter")
	case !hasDigit:
		return errors.New("must contain at least one digit")
	case !hasSpecial:
		return errors.New("must contain at least one special character")
	}

	return nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field to message map suitable for a JSON response body.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
