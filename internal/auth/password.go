package auth

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

// Hasher hashes and verifies passwords with argon2id.
type Hasher struct {
	params *argon2id.Params
}

// NewHasher returns a Hasher with the library's default parameters.
func NewHasher() *Hasher {
	return &Hasher{params: argon2id.DefaultParams}
}

// NewHasherWithParams is used by tests to keep hashing cheap.
func NewHasherWithParams(p *argon2id.Params) *Hasher { return &Hasher{params: p} }

// Hash returns an encoded "$argon2id$v=19$m=…" string suitable for storage.
func (h *Hasher) Hash(plain string) (string, error) {
	if h == nil || h.params == nil {
		return "", errors.New("argon2id params not set")
	}
	return argon2id.CreateHash(plain, h.params)
}

// Verify reports whether plain matches encodedHash.
func (h *Hasher) Verify(plain, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, encodedHash)
}
