// Package auth emite y valida los access tokens del API.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

var (
	// ErrInvalidToken cubre firma inválida, expiración y claims malformados.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims son los claims del access token.
type Claims struct {
	Role     domain.Role `json:"role"`
	Approved bool        `json:"approved"`
	jwtv5.RegisteredClaims
}

// Issuer firma access tokens HS256 con el secreto de configuración.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration
}

func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{
		Iss:       iss,
		Secret:    secret,
		AccessTTL: 15 * time.Minute,
	}
}

// IssueAccess emite un access token para el usuario. Retorna el token
// firmado y su expiración.
func (i *Issuer) IssueAccess(u *domain.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := Claims{
		Role:     u.Role,
		Approved: u.Approved,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   u.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma, expiración e issuer, y retorna los claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	tk, err := jwtv5.ParseWithClaims(raw, &claims, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.Secret, nil
	}, jwtv5.WithIssuer(i.Iss), jwtv5.WithExpirationRequired())
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
