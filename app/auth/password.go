package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations matches current werkzeug defaults for pbkdf2:sha256.
	DefaultIterations = 600000
	// DefaultSaltLength is the number of salt characters.
	DefaultSaltLength = 8

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyLength = sha256.Size
)

// ErrMalformedHash is returned when a stored hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// Hasher derives and verifies salted PBKDF2-HMAC-SHA256 password hashes,
// stored as "pbkdf2:sha256:<iterations>$<salt>$<hex digest>".
type Hasher struct {
	Iterations int
	SaltLength int
}

// NewHasher returns a Hasher using iterations rounds, or the default when
// iterations is not positive.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{Iterations: iterations, SaltLength: DefaultSaltLength}
}

// Hash returns the encoded hash of password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt, err := randomSalt(h.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, keyLength, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(digest)), nil
}

// Verify reports whether password matches encoded. The iteration count
// is read from encoded, so hashes made with other settings still verify.
func (h *Hasher) Verify(encoded, password string) (bool, error) {
	method, salt, digestHex, err := splitHash(encoded)
	if err != nil {
		return false, err
	}

	parts := strings.Split(method, ":")
	if len(parts) != 3 || parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return false, fmt.Errorf("%w: unsupported method %q", ErrMalformedHash, method)
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false, fmt.Errorf("%w: bad iteration count", ErrMalformedHash)
	}

	want, err := hex.DecodeString(digestHex)
	if err != nil {
		return false, fmt.Errorf("%w: digest is not hex", ErrMalformedHash)
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func splitHash(encoded string) (method, salt, digest string, err error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 3 || fields[1] == "" || fields[2] == "" {
		return "", "", "", ErrMalformedHash
	}
	return fields[0], fields[1], fields[2], nil
}

func randomSalt(length int) (string, error) {
	if length <= 0 {
		length = DefaultSaltLength
	}
	limit := big.NewInt(int64(len(saltChars)))
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(saltChars[n.Int64()])
	}
	return b.String(), nil
}
