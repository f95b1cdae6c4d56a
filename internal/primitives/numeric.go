package primitives

import (
	"fmt"
	"math/big"
)

// BitWidth enumerates the supported unsigned integer widths (spec §3.1).
type BitWidth int

const (
	Bits64  BitWidth = 64
	Bits128 BitWidth = 128
	Bits256 BitWidth = 256
	Bits512 BitWidth = 512
)

func maxForWidth(w BitWidth) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(w))
	return max.Sub(max, big.NewInt(1))
}

// Uint is a checked, fixed-width unsigned integer. All arithmetic returns an
// explicit error on overflow/underflow instead of wrapping, per spec §3.1.
// A single big.Int-backed representation is used for every width rather than
// distinct 64/128/256/512-bit struct layouts: the width only changes where
// the bound is enforced, not how the value is stored, which keeps the
// checked-arithmetic code in one place.
type Uint struct {
	width BitWidth
	val   *big.Int
}

// NewUint constructs a zero-valued Uint at the given width.
func NewUint(width BitWidth) Uint {
	return Uint{width: width, val: new(big.Int)}
}

// UintFromUint64 constructs a Uint at the given width from a uint64 literal.
func UintFromUint64(width BitWidth, v uint64) Uint {
	return Uint{width: width, val: new(big.Int).SetUint64(v)}
}

// UintFromString parses a base-10 string into a Uint of the given width,
// rejecting negative values and values exceeding the width.
func UintFromString(width BitWidth, s string) (Uint, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Uint{}, fmt.Errorf("uint%d: invalid decimal string %q", width, s)
	}
	if v.Sign() < 0 {
		return Uint{}, fmt.Errorf("uint%d: negative value %q", width, s)
	}
	if v.Cmp(maxForWidth(width)) > 0 {
		return Uint{}, fmt.Errorf("uint%d: value %q exceeds width", width, s)
	}
	return Uint{width: width, val: v}, nil
}

func (u Uint) Width() BitWidth    { return u.width }
func (u Uint) String() string     { return u.val.String() }
func (u Uint) IsZero() bool       { return u.val.Sign() == 0 }
func (u Uint) Cmp(other Uint) int { return u.val.Cmp(other.val) }

func (u Uint) checkWidth(result *big.Int) (Uint, error) {
	if result.Sign() < 0 {
		return Uint{}, fmt.Errorf("uint%d: underflow", u.width)
	}
	if result.Cmp(maxForWidth(u.width)) > 0 {
		return Uint{}, fmt.Errorf("uint%d: overflow", u.width)
	}
	return Uint{width: u.width, val: result}, nil
}

// CheckedAdd returns u+other, or an overflow error.
func (u Uint) CheckedAdd(other Uint) (Uint, error) {
	return u.checkWidth(new(big.Int).Add(u.val, other.val))
}

// CheckedSub returns u-other, or an underflow error.
func (u Uint) CheckedSub(other Uint) (Uint, error) {
	return u.checkWidth(new(big.Int).Sub(u.val, other.val))
}

// CheckedMul returns u*other, or an overflow error.
func (u Uint) CheckedMul(other Uint) (Uint, error) {
	return u.checkWidth(new(big.Int).Mul(u.val, other.val))
}

// CheckedDivTowardZero returns u/other truncated toward zero (the default,
// per spec §3.1), erroring on division by zero.
func (u Uint) CheckedDivTowardZero(other Uint) (Uint, error) {
	if other.IsZero() {
		return Uint{}, fmt.Errorf("uint%d: division by zero", u.width)
	}
	q := new(big.Int).Quo(u.val, other.val)
	return u.checkWidth(q)
}

// CheckedDivCeil returns ceil(u/other) for unsigned operands.
func (u Uint) CheckedDivCeil(other Uint) (Uint, error) {
	if other.IsZero() {
		return Uint{}, fmt.Errorf("uint%d: division by zero", u.width)
	}
	q, r := new(big.Int).QuoRem(u.val, other.val, new(big.Int))
	if r.Sign() != 0 {
		q = new(big.Int).Add(q, big.NewInt(1))
	}
	return u.checkWidth(q)
}

// CheckedDivFloor returns floor(u/other); identical to CheckedDivTowardZero
// for unsigned operands, since there is no sign to round away from.
func (u Uint) CheckedDivFloor(other Uint) (Uint, error) {
	return u.CheckedDivTowardZero(other)
}

func (u Uint) MarshalJSON() ([]byte, error) {
	// Integers beyond 2^53 serialize as decimal strings, per spec §6.4.
	return []byte(`"` + u.val.String() + `"`), nil
}

func (u *Uint) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("uint: not a JSON string")
	}
	if u.width == 0 {
		u.width = Bits256
	}
	parsed, err := UintFromString(u.width, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// DecScale enumerates the compile-time fractional scales spec §3.1 allows.
type DecScale int

const (
	Scale6  DecScale = 6
	Scale18 DecScale = 18
	Scale24 DecScale = 24
)

// Dec is a fixed-point decimal backed by a Uint atomic-unit representation:
// the stored integer is the value multiplied by 10^scale.
type Dec struct {
	scale DecScale
	atoms Uint
}

func scaleFactor(scale DecScale) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
}

// NewDecFromAtoms wraps a raw atomic-unit Uint as a Dec at the given scale.
func NewDecFromAtoms(scale DecScale, atoms Uint) Dec {
	return Dec{scale: scale, atoms: atoms}
}

// DecFromString parses a base-10 decimal string (e.g. "1.500000") into a Dec
// at the given scale and width.
func DecFromString(width BitWidth, scale DecScale, s string) (Dec, error) {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	for i, r := range s {
		if r == '.' {
			whole, frac = s[:i], s[i+1:]
			break
		}
	}
	if len(frac) > int(scale) {
		return Dec{}, fmt.Errorf("dec: too many fractional digits in %q for scale %d", s, scale)
	}
	for len(frac) < int(scale) {
		frac += "0"
	}
	combined := whole + frac
	if combined == "" {
		combined = "0"
	}
	if neg {
		combined = "-" + combined
	}
	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return Dec{}, fmt.Errorf("dec: invalid decimal string %q", s)
	}
	if v.Sign() < 0 {
		return Dec{}, fmt.Errorf("dec: negative value %q not representable as Uint atoms", s)
	}
	if v.Cmp(maxForWidth(width)) > 0 {
		return Dec{}, fmt.Errorf("dec: value %q exceeds width", s)
	}
	return Dec{scale: scale, atoms: Uint{width: width, val: v}}, nil
}

func (d Dec) Scale() DecScale { return d.scale }
func (d Dec) Atoms() Uint     { return d.atoms }
func (d Dec) IsZero() bool    { return d.atoms.IsZero() }

// String renders the decimal form, trimming no digits (fixed scale).
func (d Dec) String() string {
	factor := scaleFactor(d.scale)
	whole, frac := new(big.Int).QuoRem(d.atoms.val, factor, new(big.Int))
	fracStr := frac.String()
	for len(fracStr) < int(d.scale) {
		fracStr = "0" + fracStr
	}
	if d.scale == 0 {
		return whole.String()
	}
	return fmt.Sprintf("%s.%s", whole.String(), fracStr)
}

// MarshalJSON renders the decimal string form, per spec §6.4.
func (d Dec) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a decimal string, defaulting scale/width for a
// zero-valued receiver the same way Uint.UnmarshalJSON does.
func (d *Dec) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("dec: not a JSON string")
	}
	if d.scale == 0 {
		d.scale = Scale18
	}
	width := d.atoms.width
	if width == 0 {
		width = Bits256
	}
	parsed, err := DecFromString(width, d.scale, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CheckedAdd adds two Dec values of the same scale.
func (d Dec) CheckedAdd(other Dec) (Dec, error) {
	if d.scale != other.scale {
		return Dec{}, fmt.Errorf("dec: scale mismatch %d vs %d", d.scale, other.scale)
	}
	atoms, err := d.atoms.CheckedAdd(other.atoms)
	if err != nil {
		return Dec{}, err
	}
	return Dec{scale: d.scale, atoms: atoms}, nil
}

// CheckedSub subtracts two Dec values of the same scale.
func (d Dec) CheckedSub(other Dec) (Dec, error) {
	if d.scale != other.scale {
		return Dec{}, fmt.Errorf("dec: scale mismatch %d vs %d", d.scale, other.scale)
	}
	atoms, err := d.atoms.CheckedSub(other.atoms)
	if err != nil {
		return Dec{}, err
	}
	return Dec{scale: d.scale, atoms: atoms}, nil
}

// CheckedMul multiplies two same-scale Dec values, rescaling the product back
// down by one factor of 10^scale (since multiplying two fixed-point values
// doubles the implicit scale).
func (d Dec) CheckedMul(other Dec) (Dec, error) {
	if d.scale != other.scale {
		return Dec{}, fmt.Errorf("dec: scale mismatch %d vs %d", d.scale, other.scale)
	}
	product := new(big.Int).Mul(d.atoms.val, other.atoms.val)
	q := new(big.Int).Quo(product, scaleFactor(d.scale))
	atoms, err := d.atoms.checkWidth(q)
	if err != nil {
		return Dec{}, err
	}
	return Dec{scale: d.scale, atoms: atoms}, nil
}
