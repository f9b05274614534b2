package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(Default, "CorrectHorse9!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected PHC prefix: %s", phc)
	}
	if !Verify("CorrectHorse9!", phc) {
		t.Fatal("expected verify to succeed")
	}
	if Verify("WrongHorse9!", phc) {
		t.Fatal("expected verify to fail for wrong password")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := Hash(Default, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	a, err := Hash(Default, "RepeatedPass1!")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash(Default, "RepeatedPass1!")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two hashes of same password must differ (random salt)")
	}
	if !Verify("RepeatedPass1!", a) || !Verify("RepeatedPass1!", b) {
		t.Fatal("both hashes must verify")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$ZGsr", // wrong variant
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$ZGsr",
		"$argon2id$v=19$m=65536,t=3$c2FsdA$ZGsr",
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$ZGsr",
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$",
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA",
	}
	for _, phc := range bad {
		if Verify("whatever", phc) {
			t.Fatalf("expected malformed hash to fail: %q", phc)
		}
	}
}

func TestPolicyValidate(t *testing.T) {
	pol := Policy{MinLength: 10, RequireUpper: true, RequireLower: true, RequireDigit: true}

	ok, reasons := pol.Validate("Abcdefgh12")
	if !ok || len(reasons) != 0 {
		t.Fatalf("expected valid, got reasons %v", reasons)
	}

	ok, reasons = pol.Validate("short")
	if ok {
		t.Fatal("expected invalid")
	}
	want := map[string]bool{"too_short": true, "missing_upper": true, "missing_digit": true}
	for _, r := range reasons {
		if !want[r] {
			t.Fatalf("unexpected reason %q in %v", r, reasons)
		}
		delete(want, r)
	}
	if len(want) != 0 {
		t.Fatalf("missing reasons: %v (got %v)", want, reasons)
	}

	pol.RequireSymbol = true
	ok, reasons = pol.Validate("Abcdefgh12")
	if ok {
		t.Fatal("expected missing_symbol")
	}
	found := false
	for _, r := range reasons {
		if r == "missing_symbol" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing_symbol not reported: %v", reasons)
	}
}
