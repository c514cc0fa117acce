// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

// ArgonParams describes one argon2id configuration. Hashes record their own
// params, so changing PasswordParams only affects new hashes and triggers a
// rehash on the next successful login.
type ArgonParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var PasswordParams = ArgonParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func HashPassword(password string) (string, error) {
	return hashWith(PasswordParams, password)
}

func hashWith(p ArgonParams, password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Time,
		p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against encodedHash. When the hash was
// made with stale params, rehash holds a fresh one the caller should store.
func VerifyPassword(password, encodedHash string) (ok bool, rehash string, err error) {
	params, salt, want, err := decodeHash(encodedHash)
	if err != nil {
		return false, "", err
	}

	got := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return false, "", nil
	}

	if params.stale() {
		// A failed rehash leaves the old hash in place; the login still
		// succeeds.
		if fresh, hashErr := HashPassword(password); hashErr == nil {
			return true, fresh, nil
		}
	}

	return true, "", nil
}

var dummyHash = sync.OnceValue(func() string {
	h, err := HashPassword("doubtspace-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: dummy hash: %v", err))
	}
	return h
})

// VerifyPasswordTimingSafe costs the same whether or not the account exists.
// A nil or empty hash always fails.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		//nolint:errcheck // result discarded; only the work matters
		_, _, _ = VerifyPassword(password, dummyHash())
		return false, "", nil
	}

	return VerifyPassword(password, *encodedHash)
}

func (p ArgonParams) stale() bool {
	return p.Memory != PasswordParams.Memory ||
		p.Time != PasswordParams.Time ||
		p.Threads != PasswordParams.Threads ||
		p.KeyLen != PasswordParams.KeyLen
}

func decodeHash(encodedHash string) (ArgonParams, []byte, []byte, error) {
	var p ArgonParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %w", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: argon2 version %d", ErrMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	p.KeyLen = uint32(len(key))
	p.SaltLen = len(salt)

	return p, salt, key, nil
}
