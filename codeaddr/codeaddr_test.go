package codeaddr

import (
	"testing"
)

func TestCodeCID_Deterministic(t *testing.T) {
	code := []byte("\x00asm\x01\x00\x00\x00")

	id1, err := CodeCID(code)
	if err != nil {
		t.Fatalf("CodeCID: %v", err)
	}
	id2, err := CodeCID(code)
	if err != nil {
		t.Fatalf("CodeCID: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("CID must be deterministic: %s vs %s", id1, id2)
	}

	other, err := CodeCID([]byte("different artifact"))
	if err != nil {
		t.Fatalf("CodeCID: %v", err)
	}
	if id1 == other {
		t.Fatalf("different bytes must not share a CID")
	}
}

func TestCIDForHash_MatchesCodeCID(t *testing.T) {
	code := []byte("some artifact bytes")

	want, err := CodeCID(code)
	if err != nil {
		t.Fatalf("CodeCID: %v", err)
	}
	hash := CodeHash(code)
	got, err := CIDForHash(hash[:])
	if err != nil {
		t.Fatalf("CIDForHash: %v", err)
	}
	if got != want {
		t.Fatalf("hash-derived CID mismatch: %s vs %s", got, want)
	}
}

func TestCIDForHash_RejectsBadLength(t *testing.T) {
	if _, err := CIDForHash(make([]byte, 31)); err == nil {
		t.Fatalf("expected error for short hash")
	}
}
