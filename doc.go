// Package auth implements cookie based JWT authentication for the book
// catalog API: credential storage, token issuance and validation, a
// refresh token revocation ledger, and the HTTP endpoints that tie them
// together.
//
// Access and refresh tokens travel in HTTPOnly cookies. Access tokens
// are short lived; refresh tokens mint replacement access tokens until
// they expire or are revoked at logout. Revocation is keyed by the
// token's jti claim so the ledger never stores raw tokens.
package auth
