package secretbox

import "testing"

func TestSealOpenRoundTrip(t *testing.T) {
	b, err := New("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sealed, err := b.Seal("olt-password-123")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	plaintext, err := b.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if plaintext != "olt-password-123" {
		t.Errorf("plaintext = %q, want olt-password-123", plaintext)
	}
}

func TestNewRejectsShortSecret(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Fatal("expected an error for a secret under 32 bytes")
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	b, _ := New("0123456789abcdef0123456789abcdef")
	sealed, _ := b.Seal("olt-password-123")
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := b.Open(sealed); err == nil {
		t.Fatal("expected tampered ciphertext to fail authentication")
	}
}
