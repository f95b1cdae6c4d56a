package store

import (
	"math"
	"testing"
)

func TestCounterStartsAtZeroAndFirstNextReturnsDelta(t *testing.T) {
	s := NewMemStore()
	c := NewCounter("nonce", []byte{0x30})

	if c.Current(s) != 0 {
		t.Fatalf("fresh counter current = %d, want 0", c.Current(s))
	}
	v, err := c.Next(s, 1)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if v != 1 {
		t.Fatalf("first Next(1) on a fresh counter = %d, want 1", v)
	}
}

func TestCounterNextAccumulates(t *testing.T) {
	s := NewMemStore()
	c := NewCounter("nonce", []byte{0x31})

	if _, err := c.Next(s, 5); err != nil {
		t.Fatalf("next: %v", err)
	}
	v, err := c.Next(s, 3)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if v != 8 {
		t.Fatalf("accumulated counter = %d, want 8", v)
	}
	if c.Current(s) != 8 {
		t.Fatalf("current after two Next calls = %d, want 8", c.Current(s))
	}
}

func TestCounterResetOverridesValue(t *testing.T) {
	s := NewMemStore()
	c := NewCounter("nonce", []byte{0x32})

	if _, err := c.Next(s, 10); err != nil {
		t.Fatalf("next: %v", err)
	}
	c.Reset(s, 100)
	if c.Current(s) != 100 {
		t.Fatalf("current after Reset = %d, want 100", c.Current(s))
	}
}

func TestCounterNextDetectsOverflow(t *testing.T) {
	s := NewMemStore()
	c := NewCounter("nonce", []byte{0x33})
	c.Reset(s, math.MaxUint64)

	if _, err := c.Next(s, 1); err == nil {
		t.Fatal("expected an overflow error incrementing past math.MaxUint64")
	}
}
