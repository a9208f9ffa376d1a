// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := Argon2Hasher{}

	hash, err := hasher.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("hash %q is not argon2id", hash)
	}

	ok, rehash, err := hasher.Verify("s3cret-pass", &hash)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	if rehash != "" {
		t.Error("current hash should not need a rehash")
	}

	ok, _, err = hasher.Verify("wrong", &hash)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
}

func TestVerifyMissingHashNeverMatches(t *testing.T) {
	ok, _, err := Argon2Hasher{}.Verify("anything", nil)
	if err != nil || ok {
		t.Fatalf("Verify(nil hash) = %v, %v", ok, err)
	}

	empty := ""
	ok, _, err = Argon2Hasher{}.Verify("anything", &empty)
	if err != nil || ok {
		t.Fatalf("Verify(empty hash) = %v, %v", ok, err)
	}
}

func TestLegacyBcryptUpgradesToArgon2(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	encoded := string(legacy)

	ok, rehash, err := Argon2Hasher{}.Verify("old-password", &encoded)
	if err != nil || !ok {
		t.Fatalf("Verify(legacy) = %v, %v", ok, err)
	}
	if !strings.HasPrefix(rehash, "$argon2id$") {
		t.Fatalf("legacy hash should be upgraded, got %q", rehash)
	}

	ok, _, err = Argon2Hasher{}.Verify("not-it", &encoded)
	if err != nil || ok {
		t.Fatalf("Verify(legacy, wrong) = %v, %v", ok, err)
	}
}

func TestCostChangeTriggersRehash(t *testing.T) {
	cheap := Argon2Hasher{Params: Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}}

	hash, err := cheap.Hash("rotate-me")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, rehash, err := Argon2Hasher{}.Verify("rotate-me", &hash)
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
	if rehash == "" || rehash == hash {
		t.Fatal("hash with outdated cost should be replaced")
	}

	ok, rehash, err = Argon2Hasher{}.Verify("rotate-me", &rehash)
	if err != nil || !ok || rehash != "" {
		t.Fatalf("upgraded hash = %v, %q, %v", ok, rehash, err)
	}
}

func TestVerifyRejectsGarbageHash(t *testing.T) {
	garbage := "$argon2id$nonsense"
	if ok, _, err := (Argon2Hasher{}).Verify("x", &garbage); ok || err == nil {
		t.Fatalf("Verify(garbage) = %v, %v", ok, err)
	}
}
