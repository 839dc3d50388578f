package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

// HashParams tunes the Argon2id cost of new actor passwords.
type HashParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  int
	KeyLength   uint32
}

var DefaultHashParams = HashParams{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

func (p HashParams) Validate() error {
	switch {
	case p.MemoryKiB < 8*uint32(p.Parallelism):
		return fmt.Errorf("argon2 memory must be at least 8 KiB per lane, got %d KiB", p.MemoryKiB)
	case p.Iterations == 0:
		return errors.New("argon2 iterations must be positive")
	case p.Parallelism == 0:
		return errors.New("argon2 parallelism must be positive")
	case p.SaltLength < 8:
		return fmt.Errorf("argon2 salt must be at least 8 bytes, got %d", p.SaltLength)
	case p.KeyLength < 16:
		return fmt.Errorf("argon2 key must be at least 16 bytes, got %d", p.KeyLength)
	}
	return nil
}

// PasswordHasher stores actor passwords as PHC strings:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>
// Verify reads the cost back from the string, so older hashes keep
// working after the parameters change.
type PasswordHasher struct {
	params HashParams
}

func NewPasswordHasher(params HashParams) *PasswordHasher {
	return &PasswordHasher{params: params}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether the password matches the stored hash.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return HashParams{}, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}
	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Iterations, &params.Parallelism); err != nil {
		return HashParams{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return HashParams{}, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	params.SaltLength = len(salt)
	params.KeyLength = uint32(len(key))
	if err = params.Validate(); err != nil {
		return HashParams{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return params, salt, key, nil
}
