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
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the one-way hash used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches encodedHash. A non-empty
	// second result is a replacement hash the caller should persist.
	Verify(password string, encodedHash *string) (bool, string, error)
}

// Argon2Params is the cost of an argon2id hash. Stored hashes carry
// their own parameters, so raising the cost only affects new hashes and
// rehash-on-login.
type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var DefaultArgon2Params = Argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

const argon2Prefix = "$argon2id$"

var errHashFormat = errors.New("unrecognized password hash")

// Argon2Hasher hashes with argon2id and still accepts the bcrypt hashes
// of accounts created before the switch. The zero value uses
// DefaultArgon2Params.
type Argon2Hasher struct {
	Params Argon2Params
}

func (h Argon2Hasher) params() Argon2Params {
	if h.Params.KeyLen == 0 {
		return DefaultArgon2Params
	}
	return h.Params
}

func (h Argon2Hasher) Hash(password string) (string, error) {
	p := h.params()

	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	var b strings.Builder
	fmt.Fprintf(&b, "%sv=%d$m=%d,t=%d,p=%d$", argon2Prefix, argon2.Version, p.Memory, p.Time, p.Threads)
	b.WriteString(base64.RawStdEncoding.EncodeToString(salt))
	b.WriteByte('$')
	b.WriteString(base64.RawStdEncoding.EncodeToString(key))
	return b.String(), nil
}

// Verify compares password with encodedHash. A missing hash is still
// checked against a throwaway hash so unknown accounts cost the same as
// wrong passwords.
func (h Argon2Hasher) Verify(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _ = h.compare(password, h.decoy()) //nolint:errcheck // timing only
		return false, "", nil
	}

	ok, err := h.compare(password, *encodedHash)
	if err != nil || !ok {
		return false, "", err
	}

	if !h.current(*encodedHash) {
		upgraded, err := h.Hash(password)
		if err != nil {
			//nolint:nilerr // credentials verified; the upgrade is retried next login
			return true, "", nil
		}
		return true, upgraded, nil
	}
	return true, "", nil
}

func (h Argon2Hasher) compare(password, encoded string) (bool, error) {
	if isBcryptHash(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("verify bcrypt hash: %w", err)
		}
	}

	p, salt, key, err := decodeArgon2(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// current reports whether encoded was produced with this hasher's cost.
func (h Argon2Hasher) current(encoded string) bool {
	p, _, _, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}
	want := h.params()
	return p.Memory == want.Memory &&
		p.Time == want.Time &&
		p.Threads == want.Threads &&
		p.KeyLen == want.KeyLen
}

var decoys sync.Map

func (h Argon2Hasher) decoy() string {
	p := h.params()
	if v, ok := decoys.Load(p); ok {
		return v.(string) //nolint:forcetypeassert // only strings are stored
	}
	hash, err := h.Hash("decoy-password-for-unknown-accounts")
	if err != nil {
		return ""
	}
	v, _ := decoys.LoadOrStore(p, hash)
	return v.(string) //nolint:forcetypeassert // only strings are stored
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	rest, ok := strings.CutPrefix(encoded, argon2Prefix)
	if !ok {
		return p, nil, nil, errHashFormat
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, nil, nil, errHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("argon2 version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("argon2 version %d not supported", version)
	}

	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("argon2 params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[2])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2 salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[3])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2 key: %w", err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	p.KeyLen = uint32(len(key))
	p.SaltLen = len(salt)
	return p, salt, key, nil
}

func isBcryptHash(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}
