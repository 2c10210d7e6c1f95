package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

// Claims holds the subset of token claims the application cares about.
//
// Subject is the identity provider's stable user identifier and is the
// only required claim. Email and Name are optional profile hints used
// when provisioning a local account on first contact.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Raw     jwt.MapClaims
}

// Verifier validates identity-provider access tokens.
//
// Tokens are HS256-signed with a shared secret and must carry the
// configured issuer and audience. The service never issues tokens
// itself; sign-up and sign-in live entirely in the identity provider.
type Verifier struct {
	issuer   string
	audience string
	secret   []byte
	parser   *jwt.Parser
}

// NewVerifier builds a verifier for the given issuer, audience and
// shared signing secret.
func NewVerifier(issuer, audience, secret string) (*Verifier, error) {
	issuer = normalizeIssuer(issuer)
	if issuer == "" {
		return nil, errors.New("issuer must be set")
	}
	if audience == "" {
		return nil, errors.New("audience must be set")
	}
	if secret == "" {
		return nil, errors.New("signing secret must be set")
	}

	parser := jwt.NewParser(
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)

	return &Verifier{
		issuer:   issuer,
		audience: audience,
		secret:   []byte(secret),
		parser:   parser,
	}, nil
}

// Verify parses and validates a JWT, returning extracted claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		Subject: readString(mapClaims, "sub"),
		Email:   readString(mapClaims, "email"),
		Name:    readString(mapClaims, "name"),
		Raw:     mapClaims,
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

func normalizeIssuer(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return ""
	}
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}
	return issuer
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
