package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chat-relay/domain"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator validates connection credentials. It implements
// contract.IIdentity: a connection presenting an invalid or expired token
// is rejected before any registry state is created.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) Authenticator {
	return Authenticator{secret: secret}
}

// Authenticate parses and validates the signature and expiration of a raw
// token string and yields the durable user behind it.
func (a Authenticator) Authenticate(rawCredential string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(rawCredential, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("token validation: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return domain.User{}, jwt.ErrSignatureInvalid
	}
	return domain.User{ID: claims.UserID, Name: claims.Name}, nil
}

// GenerateToken creates a signed JWT for a specific user. Used by the REST
// layer issuing credentials and by tests.
func GenerateToken(secret []byte, user domain.User, duration time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-relay",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
