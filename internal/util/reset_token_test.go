package util

import "testing"

func TestGenerateResetToken(t *testing.T) {
	raw, digest, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(raw))
	}
	if digest == raw {
		t.Fatalf("digest must differ from the raw token")
	}
	if HashResetToken(raw) != digest {
		t.Fatalf("digest must be reproducible from the raw token")
	}

	other, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if other == raw {
		t.Fatalf("expected distinct tokens")
	}
}

func TestHashResetTokenKnownValue(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := HashResetToken("hello"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
