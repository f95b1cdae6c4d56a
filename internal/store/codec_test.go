package store

import "testing"

type codecRecord struct {
	Name  string
	Value uint64
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := JSONCodec[codecRecord]{}
	rec := codecRecord{Name: "alice", Value: 42}
	b, err := c.Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != rec {
		t.Fatalf("round-tripped value = %+v, want %+v", got, rec)
	}
}

func TestRLPCodecRoundTrip(t *testing.T) {
	c := RLPCodec[codecRecord]{}
	rec := codecRecord{Name: "bob", Value: 7}
	b, err := c.Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != rec {
		t.Fatalf("round-tripped value = %+v, want %+v", got, rec)
	}
}

func TestRawCodecIsVerbatim(t *testing.T) {
	c := RawCodec{}
	data := []byte{0x01, 0x02, 0x03}
	b, err := c.Encode(data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("round-tripped data = %x, want %x", got, data)
	}
}

func TestJSONCodecDecodeErrorsOnMalformedInput(t *testing.T) {
	c := JSONCodec[codecRecord]{}
	if _, err := c.Decode([]byte("not json")); err == nil {
		t.Fatal("expected a decode error for malformed JSON")
	}
}
