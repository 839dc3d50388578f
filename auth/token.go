package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chat-garden"

// ActorClaims defines the structure of the data stored inside the JWT.
type ActorClaims struct {
	Actor string `json:"actor"`
	jwt.RegisteredClaims
}

// Issuer signs and validates session tokens with a shared secret.
type Issuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, duration time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateToken creates a signed JWT for the actor.
func (i *Issuer) GenerateToken(actor string) (string, error) {
	now := i.now()
	claims := &ActorClaims{
		Actor: actor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// HS256 (HMAC with SHA256)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (i *Issuer) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ActorClaims); ok && token.Valid && claims.Actor != "" {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
