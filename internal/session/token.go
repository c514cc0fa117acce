// AngelaMos | 2026
// token.go

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

var ErrInvalidToken = errors.New("invalid session token")

// Identity is the decoded session claim. Verified is false when the token
// was decoded without a key set; its role is then only good for deciding
// which controls to show.
type Identity struct {
	ID        string
	Name      string
	Email     string
	Role      domain.Role
	ExpiresAt time.Time
	Verified  bool
}

// TokenDecoder turns a stored bearer token into an Identity.
type TokenDecoder struct {
	keys       jwk.Set
	acceptSkew time.Duration
}

// NewTokenDecoder returns a decoder. A nil key set decodes without
// signature verification.
func NewTokenDecoder(keys jwk.Set) *TokenDecoder {
	return &TokenDecoder{
		keys:       keys,
		acceptSkew: 30 * time.Second,
	}
}

// ParseKeySet parses a JWKS document.
func ParseKeySet(raw []byte) (jwk.Set, error) {
	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jwks: %w", err)
	}
	return set, nil
}

func (d *TokenDecoder) Decode(token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("empty token: %w", ErrInvalidToken)
	}

	var (
		tok      jwt.Token
		err      error
		verified bool
	)

	if d.keys != nil {
		tok, err = jwt.Parse(
			[]byte(token),
			jwt.WithKeySet(d.keys),
			jwt.WithValidate(true),
			jwt.WithAcceptableSkew(d.acceptSkew),
		)
		verified = true
	} else {
		tok, err = jwt.ParseInsecure([]byte(token))
		if err == nil {
			err = jwt.Validate(tok, jwt.WithAcceptableSkew(d.acceptSkew))
		}
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, ok := tok.Subject()
	if !ok || subject == "" {
		return Identity{}, fmt.Errorf("missing subject: %w", ErrInvalidToken)
	}

	var email, name, role string
	if err := tok.Get("email", &email); err != nil {
		return Identity{}, fmt.Errorf("missing email claim: %w", ErrInvalidToken)
	}
	if err := tok.Get("name", &name); err != nil {
		return Identity{}, fmt.Errorf("missing name claim: %w", ErrInvalidToken)
	}
	if err := tok.Get("role", &role); err != nil {
		return Identity{}, fmt.Errorf("missing role claim: %w", ErrInvalidToken)
	}

	if !domain.Role(role).Valid() {
		return Identity{}, fmt.Errorf("unknown role %q: %w", role, ErrInvalidToken)
	}

	ident := Identity{
		ID:       subject,
		Name:     name,
		Email:    email,
		Role:     domain.Role(role),
		Verified: verified,
	}
	if exp, ok := tok.Expiration(); ok {
		ident.ExpiresAt = exp
	}

	return ident, nil
}
