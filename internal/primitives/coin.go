package primitives

import (
	"fmt"
	"sort"
)

// Coin is a single (denom, amount) pair.
type Coin struct {
	Denom  Denom
	Amount Uint
}

// Coins is an ordered map from denom to non-zero amount. A Coins value never
// contains a zero entry (spec §3.1, tested as property 8 in spec §8).
type Coins struct {
	byDenom map[string]Uint
}

// NewCoins builds an empty Coins set.
func NewCoins() Coins {
	return Coins{byDenom: make(map[string]Uint)}
}

// Add inserts amount of denom into the set, dropping the entry entirely if
// the resulting amount is zero, and erroring on overflow.
func (c *Coins) Add(denom Denom, amount Uint) error {
	if c.byDenom == nil {
		c.byDenom = make(map[string]Uint)
	}
	key := denom.String()
	total := amount
	if existing, ok := c.byDenom[key]; ok {
		var err error
		total, err = existing.CheckedAdd(amount)
		if err != nil {
			return err
		}
	}
	if total.IsZero() {
		delete(c.byDenom, key)
		return nil
	}
	c.byDenom[key] = total
	return nil
}

// Subtract deducts amount of denom, erroring on underflow, and again
// dropping the entry if the result is zero.
func (c *Coins) Subtract(denom Denom, amount Uint) error {
	key := denom.String()
	existing, ok := c.byDenom[key]
	if !ok {
		existing = NewUint(amount.Width())
	}
	remainder, err := existing.CheckedSub(amount)
	if err != nil {
		return fmt.Errorf("coins: insufficient %s balance: %w", key, err)
	}
	if remainder.IsZero() {
		delete(c.byDenom, key)
		return nil
	}
	c.byDenom[key] = remainder
	return nil
}

// AmountOf returns the amount held of denom, or a zero Uint if absent.
func (c Coins) AmountOf(denom Denom, width BitWidth) Uint {
	if v, ok := c.byDenom[denom.String()]; ok {
		return v
	}
	return NewUint(width)
}

// IsEmpty reports whether the set holds no entries.
func (c Coins) IsEmpty() bool { return len(c.byDenom) == 0 }

// sortedDenoms returns the denom strings in stable lexicographic order, so
// that two Coins values holding the same denom-amount set always serialize
// identically (spec §8 property 8).
func (c Coins) sortedDenoms() []string {
	keys := make([]string, 0, len(c.byDenom))
	for k := range c.byDenom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsCoinList renders the set as a slice ordered by denom, for iteration.
func (c Coins) AsCoinList() []Coin {
	keys := c.sortedDenoms()
	out := make([]Coin, 0, len(keys))
	for _, k := range keys {
		d, _ := ParseDenom(k)
		out = append(out, Coin{Denom: d, Amount: c.byDenom[k]})
	}
	return out
}

func (c Coins) MarshalJSON() ([]byte, error) {
	buf := []byte("{")
	for i, k := range c.sortedDenoms() {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = append(buf, k...)
		buf = append(buf, `":"`...)
		buf = append(buf, c.byDenom[k].String()...)
		buf = append(buf, '"')
	}
	buf = append(buf, '}')
	return buf, nil
}
