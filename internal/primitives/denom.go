package primitives

import (
	"fmt"
	"strings"
)

// Denom is a non-empty ASCII token identifier partitioned by "/" into Parts
// (spec §3.1). The first Part is the namespace.
type Denom struct {
	parts []string
}

// isValidPart reports whether s matches [a-z0-9]+.
func isValidPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ParseDenom parses a "/"-delimited denom string, validating every Part.
// Rendering the result with String reproduces the input exactly
// (spec §8 property 7, denom parsing idempotence).
func ParseDenom(s string) (Denom, error) {
	if s == "" {
		return Denom{}, fmt.Errorf("denom: empty string")
	}
	parts := strings.Split(s, "/")
	for _, p := range parts {
		if !isValidPart(p) {
			return Denom{}, fmt.Errorf("denom: invalid part %q in %q", p, s)
		}
	}
	out := make([]string, len(parts))
	copy(out, parts)
	return Denom{parts: out}, nil
}

// MustParseDenom panics if s is not a valid denom. Intended for genesis
// constants and tests, never for untrusted input.
func MustParseDenom(s string) Denom {
	d, err := ParseDenom(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Namespace returns the first Part, which is owned by at most one address.
func (d Denom) Namespace() string { return d.parts[0] }

// Parts returns a copy of the underlying path segments.
func (d Denom) Parts() []string {
	out := make([]string, len(d.parts))
	copy(out, d.parts)
	return out
}

// String renders the canonical "/"-joined form.
func (d Denom) String() string { return strings.Join(d.parts, "/") }

func (d Denom) Equal(other Denom) bool { return d.String() == other.String() }

func (d Denom) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Denom) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("denom: not a JSON string")
	}
	parsed, err := ParseDenom(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
