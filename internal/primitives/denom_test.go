package primitives

import "testing"

func TestParseDenomRoundTripsExactly(t *testing.T) {
	cases := []string{"uatom", "factory/alice/mycoin", "a/b/c/d"}
	for _, s := range cases {
		d, err := ParseDenom(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if d.String() != s {
			t.Fatalf("ParseDenom(%q).String() = %q, want %q", s, d.String(), s)
		}
	}
}

func TestParseDenomRejectsInvalidParts(t *testing.T) {
	cases := []string{"", "UPPER", "has space", "trailing/", "/leading", "under_score"}
	for _, s := range cases {
		if _, err := ParseDenom(s); err == nil {
			t.Fatalf("ParseDenom(%q) should have failed", s)
		}
	}
}

func TestDenomNamespaceIsFirstPart(t *testing.T) {
	d, err := ParseDenom("factory/alice/mycoin")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Namespace() != "factory" {
		t.Fatalf("namespace = %q, want factory", d.Namespace())
	}
	parts := d.Parts()
	if len(parts) != 3 || parts[1] != "alice" || parts[2] != "mycoin" {
		t.Fatalf("parts = %v, want [factory alice mycoin]", parts)
	}
}

func TestDenomEqual(t *testing.T) {
	a := MustParseDenom("uatom")
	b := MustParseDenom("uatom")
	c := MustParseDenom("uosmo")
	if !a.Equal(b) {
		t.Fatal("identical denoms must compare equal")
	}
	if a.Equal(c) {
		t.Fatal("different denoms must not compare equal")
	}
}

func TestMustParseDenomPanicsOnInvalidInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustParseDenom to panic on invalid input")
		}
	}()
	MustParseDenom("INVALID")
}
