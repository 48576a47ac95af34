package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted HMAC secret size in bytes.
const MinSecretLength = 32

var (
	ErrMissingSecret = errors.New("jwtx: missing signing secret")
	ErrWeakSecret    = errors.New("jwtx: signing secret shorter than 32 bytes")
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer signs tokens with a shared HMAC-SHA256 secret. Access and
// refresh tokens each get their own signer so a token of one kind never
// verifies as the other.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer. An empty or short secret is a
// configuration error and should stop the service from starting.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	s := &HS256Signer{secret: append([]byte(nil), secret...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check on the secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}
	if len(s.secret) < MinSecretLength {
		return ErrWeakSecret
	}
	return nil
}
