package model

import "github.com/golang-jwt/jwt/v5"

// OwnerClaims is the JWT payload for survey owners.
type OwnerClaims struct {
	OwnerID string `json:"ownerId"`
	jwt.RegisteredClaims
}

// UserClaims is the JWT payload for identified respondents.
type UserClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// LoginResponse is returned after successful owner authentication.
type LoginResponse struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
}
