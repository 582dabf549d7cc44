package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims is the payload of access tokens minted by the external
// identity provider. UserID is the provider's user id, not a teacher id.
type AuthClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
