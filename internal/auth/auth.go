package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT token claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenValidator turns a bearer token into the operator it was issued to.
type TokenValidator interface {
	ValidateToken(tokenString string) (*internal.Operator, error)
}

// JWTTokenGenerator issues and validates HS256 operator tokens.
type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration, issuer string) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// GenerateToken signs a token for subject acting with role.
func (j *JWTTokenGenerator) GenerateToken(subject, role string) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	role = strings.ToLower(strings.TrimSpace(role))
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	if !internal.IsKnownOperatorRole(role) {
		return "", time.Time{}, fmt.Errorf("unknown operator role %q", role)
	}

	now := j.now()
	expiresAt := now.Add(j.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the operator it names
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*internal.Operator, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, internal.ErrUnauthorized
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid || claims.Subject == "" || !internal.IsKnownOperatorRole(claims.Role) {
		return nil, internal.ErrInvalidToken
	}

	return &internal.Operator{Subject: claims.Subject, Role: claims.Role}, nil
}
