package sealer

import (
	"errors"
	"testing"
)

func TestPlainSealerIsIdentity(t *testing.T) {
	s, err := New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	got, _ := s.Seal("hello")
	if got != "hello" {
		t.Errorf("Seal = %q, want %q", got, "hello")
	}
}

func TestFernetRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	s, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sealed, err := s.Seal("I feel hopeless today")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == "I feel hopeless today" {
		t.Fatal("Seal returned plaintext")
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != "I feel hopeless today" {
		t.Errorf("Open = %q, want original text", opened)
	}
}

func TestFernetRejectsForeignToken(t *testing.T) {
	k1, _ := GenerateKey()
	k2, _ := GenerateKey()
	s1, _ := New(k1)
	s2, _ := New(k2)

	sealed, err := s1.Seal("secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := s2.Open(sealed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Open with wrong key error = %v, want ErrInvalidToken", err)
	}
	if _, err := s1.Open("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Open(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestNewRejectsBadKey(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}
