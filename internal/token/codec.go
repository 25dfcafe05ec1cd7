package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is returned when a token is malformed or its signature
// does not verify against the codec's public key.
var ErrTokenInvalid = errors.New("invalid token")

// ErrTokenExpired is returned when a token's signature verifies but its
// expiry instant has passed.
var ErrTokenExpired = errors.New("token expired")

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject  string
	IssuedAt time.Time
	Expiry   time.Time
	Extra    map[string]any
}

// Codec issues and verifies RS256-signed, self-contained tokens. Signing
// uses the private key; verification only needs the public half, so a
// verified token carries no server-side session state. The zero value is
// unusable; construct with New.
type Codec struct {
	key *rsa.PrivateKey
}

// New creates a Codec around the given signing key.
func New(key *rsa.PrivateKey) *Codec {
	return &Codec{key: key}
}

// Issue creates a signed token for the subject, valid from now until
// now+validFor. Extra claims are merged into the payload; the registered
// sub, iat and exp claims always win on collision.
func (c *Codec) Issue(subject string, extra map[string]any, validFor time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(validFor))

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token and returns its claims.
// Expiry is evaluated against the current time on every call.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return &c.key.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{Extra: map[string]any{}}
	for k, v := range mapClaims {
		switch k {
		case "sub":
			s, ok := v.(string)
			if !ok {
				return nil, ErrTokenInvalid
			}
			claims.Subject = s
		case "iat":
			if f, ok := v.(float64); ok {
				claims.IssuedAt = time.Unix(int64(f), 0)
			}
		case "exp":
			if f, ok := v.(float64); ok {
				claims.Expiry = time.Unix(int64(f), 0)
			}
		default:
			claims.Extra[k] = v
		}
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
