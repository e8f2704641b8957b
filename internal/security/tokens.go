// Package security provides principal access tokens (JWT) and password hashing.
// The core consumes tokens issued by the platform's auth service; it validates
// them to establish the ambient session that the tenant resolver reads.
package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed or invalid.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims holds JWT claims for the principal access token.
// TenantID is the active tenant membership; EmployeeID is the principal's
// linked employee record, empty when the principal is not an employee.
type AccessClaims struct {
	jwt.RegisteredClaims
	TenantID   string `json:"tenant_id"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// TokenProvider issues and validates JWT access tokens using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// issuer and audience are set on claims and validated on every parse.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
	}
}

// IssueAccess issues a short-lived access JWT for the given principal, tenant,
// and optional linked employee. Returns the token string, its jti, and expiration time.
func (p *TokenProvider) IssueAccess(userID, tenantID, employeeID string) (token string, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:   tenantID,
		EmployeeID: employeeID,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

// ValidateAccess parses and validates the access token (signature, exp, iss, aud).
// Returns userID, tenantID, employeeID, or error.
func (p *TokenProvider) ValidateAccess(tokenString string) (userID, tenantID, employeeID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return p.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return p.publicKey, nil
		}
		return nil, ErrInvalidToken
	})
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", "", "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", "", "", ErrInvalidToken
	}
	return claims.Subject, claims.TenantID, claims.EmployeeID, nil
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
