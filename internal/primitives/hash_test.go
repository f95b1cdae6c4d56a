package primitives

import (
	"encoding/json"
	"testing"
)

func TestParseHash256RoundTrip(t *testing.T) {
	h := HashCode([]byte("some wasm bytecode"))
	parsed, err := ParseHash256(h.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != h {
		t.Fatalf("round-tripped hash = %s, want %s", parsed, h)
	}
}

func TestParseHash256RejectsWrongLength(t *testing.T) {
	if _, err := ParseHash256("deadbeef"); err == nil {
		t.Fatal("expected an error for a too-short hash")
	}
}

func TestHashCodeIsDeterministicAndSensitiveToInput(t *testing.T) {
	a := HashCode([]byte("module-a"))
	b := HashCode([]byte("module-a"))
	c := HashCode([]byte("module-b"))
	if a != b {
		t.Fatal("hashing the same bytecode twice must produce the same hash")
	}
	if a == c {
		t.Fatal("hashing different bytecode must produce different hashes")
	}
}

func TestHash256JSONRoundTrip(t *testing.T) {
	h := HashCode([]byte("payload"))
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Hash256
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != h {
		t.Fatalf("round-tripped hash = %s, want %s", got, h)
	}
}

func TestHash160Compare(t *testing.T) {
	var a, b Hash160
	a[0] = 1
	b[0] = 2
	if a.Compare(b) >= 0 {
		t.Fatal("a must compare less than b")
	}
	if a.Compare(a) != 0 {
		t.Fatal("a value must compare equal to itself")
	}
}
