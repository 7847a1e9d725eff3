package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/and161185/cargodesk/internal/errs"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal, looks non-random", n)
	}
}

func TestHashPassword_EncodedFormAndSalt(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(h1, "$argon2id$v=19$m=65536,t=3,p=4$") {
		t.Fatalf("unexpected encoding: %s", h1)
	}
	h2, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if h1 == h2 {
		t.Fatalf("same password must produce different hashes (random salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil || !ok {
		t.Fatalf("VerifyPassword: expected true, got ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("VerifyPassword: expected false,nil for wrong password, got ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword(hash, "")
	if err != nil || ok {
		t.Fatalf("VerifyPassword: expected false,nil for empty password, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=16$m=65536,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=3,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$",
	}
	for _, c := range cases {
		ok, err := VerifyPassword(c, "whatever")
		if ok || !errors.Is(err, errs.ErrMalformedHash) {
			t.Fatalf("%q: want ErrMalformedHash, got ok=%v err=%v", c, ok, err)
		}
	}
}

func TestParseParams_ForeignHash(t *testing.T) {
	t.Parallel()

	// Hash produced by another argon2 implementation with different cost settings.
	const foreign = "$argon2id$v=19$m=65536,t=3,p=4$s/EhQRg9e4LHAprqRXFlnA$wSRg1KrJA/LWrNdVXwN2B4blOOeCbIf5+EZ0KNlq+fA"
	p, err := ParseParams(foreign)
	if err != nil {
		t.Fatalf("ParseParams: %v", err)
	}
	if p.Memory != 65536 || p.Time != 3 || p.Threads != 4 {
		t.Fatalf("params mismatch: %+v", p)
	}
}
