package jwtx

import (
	"errors"
	"time"
)

// TokenIssuer mints access and refresh tokens. Each kind has its own secret
// and lifetime; persisting refresh tokens is the caller's job.
type TokenIssuer struct {
	Access     Signer
	Refresh    Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is overridable for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewTokenIssuer builds an issuer from the two HMAC secrets.
func NewTokenIssuer(
	accessSecret, refreshSecret []byte,
	issuer string,
	accessTTL, refreshTTL time.Duration,
) (*TokenIssuer, error) {
	access, err := NewSignerHS256(accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := NewSignerHS256(refreshSecret)
	if err != nil {
		return nil, err
	}

	ti := &TokenIssuer{
		Access:     access,
		Refresh:    refresh,
		Issuer:     issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
	if err := ti.Validate(); err != nil {
		return nil, err
	}
	return ti, nil
}

// Validate checks the signers are usable and the lifetimes are coherent.
func (ti *TokenIssuer) Validate() error {
	if ti.Access == nil || ti.Refresh == nil {
		return ErrMissingSecret
	}
	if err := ti.Access.Validate(); err != nil {
		return err
	}
	if err := ti.Refresh.Validate(); err != nil {
		return err
	}
	if ti.AccessTTL <= 0 || ti.RefreshTTL <= 0 {
		return errors.New("jwtx: token lifetimes must be positive")
	}
	if ti.AccessTTL > ti.RefreshTTL {
		return errors.New("jwtx: access token lifetime exceeds refresh token lifetime")
	}
	return nil
}

// IssueAccessToken signs {sub,email,role} with the access secret.
func (ti *TokenIssuer) IssueAccessToken(subject, email, role string) (string, Claims, error) {
	claims := NewAccessClaims(subject, email, role, ti.AccessTTL, ti.Issuer, ti.now())
	token, err := ti.Access.Sign(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// IssueRefreshToken signs {sub} with the refresh secret.
func (ti *TokenIssuer) IssueRefreshToken(subject string) (string, Claims, error) {
	claims := NewRefreshClaims(subject, ti.RefreshTTL, ti.Issuer, ti.now())
	token, err := ti.Refresh.Sign(claims)
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

func (ti *TokenIssuer) now() time.Time {
	if ti.Now != nil {
		return ti.Now().UTC()
	}
	return time.Now().UTC()
}
