package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrMismatchedHashAndPassword is returned for any failed credential
	// check. Unknown identifiers produce the same error so the response
	// does not reveal which accounts exist.
	ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
					WithCode(goerrors.CodeUnauthorized).
					WithTextCode("INVALID_CREDENTIALS")

	// ErrIdentityNotFound is returned when an identity lookup by id,
	// email, or username comes back empty.
	ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("IDENTITY_NOT_FOUND")

	// ErrTooManyLoginAttempts is returned once an account exceeds the
	// configured number of consecutive failed logins.
	ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("TOO_MANY_ATTEMPTS")

	// ErrNoEmptyString is returned when a required string argument is empty
	ErrNoEmptyString = goerrors.New("should not use empty string", goerrors.CategoryValidation).
				WithCode(goerrors.CodeBadRequest).
				WithTextCode("EMPTY_STRING")

	ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenMalformed = goerrors.New("token malformed", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("TOKEN_MALFORMED")

	// ErrTokenRevoked is returned when a refresh token's id is present in
	// the revocation ledger.
	ErrTokenRevoked = goerrors.New("token revoked", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_REVOKED")

	// ErrTokenUseMismatch is returned when a token is presented for a use
	// other than the one it was minted for, e.g. a refresh token sent as
	// an access token.
	ErrTokenUseMismatch = goerrors.New("token use mismatch", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("TOKEN_USE_MISMATCH")

	// ErrMissingRefreshToken is returned when the refresh cookie is absent
	ErrMissingRefreshToken = goerrors.New("refresh token not found", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("MISSING_REFRESH_TOKEN")
)

// IsTokenExpiredError checks both our sentinel and the underlying jwt
// library's message since validation errors can surface either way.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}
