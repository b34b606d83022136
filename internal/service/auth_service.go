package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"surveyhub/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles owner authentication and token validation for
// identified respondents.
type AuthService struct {
	ownerUsername string
	ownerPassword string
	ownerID       string
	jwtSecret     []byte
}

// NewAuthService creates a new auth service. The owner id is derived from the
// username, so tokens minted in different sessions identify the same owner
// and surveys stay reachable after a re-login.
func NewAuthService(ownerUsername, ownerPassword, jwtSecret string) *AuthService {
	return &AuthService{
		ownerUsername: ownerUsername,
		ownerPassword: ownerPassword,
		ownerID:       "owner_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(ownerUsername)).String()[:8],
		jwtSecret:     []byte(jwtSecret),
	}
}

// Login validates owner credentials and returns a signed token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.ownerUsername || password != s.ownerPassword {
		return nil, ErrInvalidCredentials
	}

	claims := &model.OwnerClaims{
		OwnerID: s.ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:   tokenString,
		OwnerID: s.ownerID,
	}, nil
}

// ValidateOwnerToken validates an owner JWT and returns claims
func (s *AuthService) ValidateOwnerToken(tokenString string) (*model.OwnerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateUserToken validates a respondent JWT and returns claims. Supplied
// by the identity collaborator; submissions may also arrive anonymously.
func (s *AuthService) ValidateUserToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
