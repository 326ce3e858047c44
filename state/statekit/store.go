// Package statekit provides a conformance suite for state.Store
// implementations.
package statekit

import (
	"bytes"
	"testing"

	"signet.sh/signet/state"
)

// NewStore constructs a fresh, empty Store instance for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) state.Store

func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("SetGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte("hello, signet state")

		if err := s.Set("greeting", want); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := s.Get("greeting")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch: got %q want %q", got, want)
		}
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set("k", []byte("one")); err != nil {
			t.Fatalf("Set(1) failed: %v", err)
		}
		if err := s.Set("k", []byte("two")); err != nil {
			t.Fatalf("Set(2) failed: %v", err)
		}
		got, err := s.Get("k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "two" {
			t.Fatalf("overwrite not visible: got %q", got)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		if s.Has("missing") {
			t.Fatalf("Has returned true for missing key")
		}
		_, err := s.Get("missing")
		if !state.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if err := s.Set("missing", []byte("present now")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if !s.Has("missing") {
			t.Fatalf("Has returned false after Set")
		}
	})

	t.Run("EmptyValueAllowed", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set("marker", nil); err != nil {
			t.Fatalf("Set of empty value failed: %v", err)
		}
		got, err := s.Get("marker")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty value, got %q", got)
		}
		if !s.Has("marker") {
			t.Fatalf("Has returned false for empty-value key")
		}
	})

	t.Run("RejectEmptyKey", func(t *testing.T) {
		s := newStore(t)
		if s.Has("") {
			t.Fatalf("Has should be false for empty key")
		}
		if _, err := s.Get(""); err == nil {
			t.Fatalf("Get should fail for empty key")
		}
		if err := s.Set("", []byte("x")); err == nil {
			t.Fatalf("Set should fail for empty key")
		}
	})

	t.Run("ValueIsolation", func(t *testing.T) {
		s := newStore(t)
		v := []byte("original")
		if err := s.Set("iso", v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		v[0] = 'X'
		got, err := s.Get("iso")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "original" {
			t.Fatalf("store aliased caller buffer: got %q", got)
		}
		got[0] = 'Y'
		again, err := s.Get("iso")
		if err != nil {
			t.Fatalf("Get(2) failed: %v", err)
		}
		if string(again) != "original" {
			t.Fatalf("store aliased returned buffer: got %q", again)
		}
	})
}
