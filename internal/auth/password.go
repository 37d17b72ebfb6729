package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// PasswordHasher hashes and verifies account passwords.
//
// Verify returns (false, nil) on a plain mismatch and (false, domain.ErrMalformedCredential)
// when the stored hash cannot be interpreted. It never returns true alongside an error.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, stored string) (bool, error)
}

// Password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a bcrypt hasher. Costs outside bcrypt's range fall back to the default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes a plaintext password with the configured cost.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares a password against a bcrypt hash.
func (h *BcryptHasher) Verify(plain, stored string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, domain.ErrMalformedCredential
	}
}

// Argon2Params tunes argon2id.
type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params matches the cost used elsewhere for key derivation.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Argon2Hasher produces PHC-formatted argon2id hashes:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<hash>
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher builds an argon2id hasher.
func NewArgon2Hasher(params Argon2Params) (*Argon2Hasher, error) {
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return nil, errors.New("argon2 memory, time and parallelism must be positive")
	}
	if params.SaltLength < 8 || params.KeyLength < 16 {
		return nil, errors.New("argon2 salt must be at least 8 bytes and key at least 16 bytes")
	}
	return &Argon2Hasher{params: params}, nil
}

// Hash derives a fresh-salted argon2id hash.
func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		AlgorithmArgon2id,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash with the parameters embedded in stored.
func (h *Argon2Hasher) Verify(plain, stored string) (bool, error) {
	p, salt, want, err := decodeArgon2(stored)
	if err != nil {
		return false, domain.ErrMalformedCredential
	}
	got := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// maxArgon2Memory caps the memory a stored hash may demand (1 GiB).
const maxArgon2Memory = 1024 * 1024

func decodeArgon2(stored string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != AlgorithmArgon2id {
		return p, nil, nil, errors.New("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errors.New("unsupported argon2 version")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, errors.New("invalid argon2 parameters")
	}
	if p.Memory == 0 || p.Memory > maxArgon2Memory || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errors.New("argon2 parameters out of range")
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errors.New("invalid argon2 salt")
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errors.New("invalid argon2 key")
	}
	return p, salt, key, nil
}

// MultiHasher hashes with one algorithm and verifies any supported one, chosen by the
// stored hash's prefix, so existing records survive an algorithm switch.
type MultiHasher struct {
	primary PasswordHasher
	bcrypt  PasswordHasher
	argon2  PasswordHasher
}

// NewPasswordHasher builds the hasher for the configured algorithm.
func NewPasswordHasher(algorithm string, bcryptCost int) (*MultiHasher, error) {
	bh := NewBcryptHasher(bcryptCost)
	ah, err := NewArgon2Hasher(DefaultArgon2Params)
	if err != nil {
		return nil, err
	}

	m := &MultiHasher{bcrypt: bh, argon2: ah}
	switch algorithm {
	case AlgorithmBcrypt, "":
		m.primary = bh
	case AlgorithmArgon2id:
		m.primary = ah
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", algorithm)
	}
	return m, nil
}

// Hash uses the primary algorithm.
func (m *MultiHasher) Hash(plain string) (string, error) {
	return m.primary.Hash(plain)
}

// Verify dispatches on the stored hash format.
func (m *MultiHasher) Verify(plain, stored string) (bool, error) {
	switch {
	case strings.HasPrefix(stored, "$"+AlgorithmArgon2id+"$"):
		return m.argon2.Verify(plain, stored)
	case strings.HasPrefix(stored, "$2"):
		return m.bcrypt.Verify(plain, stored)
	default:
		return false, domain.ErrMalformedCredential
	}
}
