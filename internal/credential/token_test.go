package credential

import (
	"strings"
	"testing"
)

func TestSignAndVerifyHS256(t *testing.T) {
	secret := []byte("secret")
	claims := map[string]any{"sub": "abc", "exp": float64(9999999999)}

	token, err := SignHS256(claims, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := ParseAndVerifyHS256(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if parsed["sub"] != "abc" {
		t.Fatalf("unexpected sub claim: %v", parsed["sub"])
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	secret := []byte("secret")
	token, err := SignHS256(map[string]any{"sub": "abc"}, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseAndVerifyHS256(token, []byte("other")); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + ".eyJzdWIiOiJldmlsIn0." + parts[2]
	if _, err := ParseAndVerifyHS256(tampered, secret); err == nil {
		t.Fatal("expected verification failure for tampered payload")
	}

	if _, err := ParseAndVerifyHS256("garbage", secret); err == nil {
		t.Fatal("expected failure for malformed token")
	}
}
