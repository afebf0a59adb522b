// Package auth resolves the local chat identity, either from explicit
// values or from the claims of an access token issued at login.
package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"chat-client/errors"
)

var validate = validator.New()

// Identity is who the local participant claims to be. The backend trusts
// the token, not these fields; they only parameterize the connection.
type Identity struct {
	UserID   string `validate:"required"`
	Username string `validate:"required"`
}

// identityClaims is the subset of the login token we care about.
type identityClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func Validate(id Identity) error {
	if err := validate.Struct(id); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidIdentity, err)
	}
	return nil
}

// IdentityFromToken extracts the identity claims without verifying the
// signature. The token was already verified by the backend at login; the
// client only needs the embedded user id and username.
func IdentityFromToken(tokenString string) (Identity, error) {
	claims := &identityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidIdentity, err)
	}

	id := Identity{UserID: claims.UserID, Username: claims.Username}
	if err := Validate(id); err != nil {
		return Identity{}, err
	}
	return id, nil
}
