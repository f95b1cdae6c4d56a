package store

import (
	"encoding/binary"

	"corechain/internal/apperror"
)

// Counter is a monotonic uint64 sequence stored under a single key, used for
// things like the next contract instantiation nonce (spec §4.2).
//
// An unset counter is treated as zero and then incremented: Next on a fresh
// counter returns 1, not 0. This follows spec §4.2's wording literally; it
// diverges from the Rust original (crates/storage/src/counter.rs), where an
// absent counter resolves to zero and the first call returns 0. The spec
// text is the source of truth here, not the original crate.
type Counter struct {
	key  []byte
	name string
}

func NewCounter(name string, key []byte) *Counter {
	return &Counter{key: append([]byte(nil), key...), name: name}
}

func (c *Counter) current(s Storage) uint64 {
	b := s.Read(c.key)
	if b == nil || len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Current returns the counter's present value without incrementing it.
func (c *Counter) Current(s Storage) uint64 {
	return c.current(s)
}

func (c *Counter) store(s Storage, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	s.Write(c.key, b[:])
}

// Next increments the counter by delta and returns the new value. An unset
// counter starts from zero, so Next(s, 1) on a fresh counter returns 1.
func (c *Counter) Next(s Storage, delta uint64) (uint64, error) {
	cur := c.current(s)
	next := cur + delta
	if next < cur {
		return 0, apperror.Std("counter %s overflowed uint64", c.name)
	}
	c.store(s, next)
	return next, nil
}

// Reset sets the counter to an explicit value.
func (c *Counter) Reset(s Storage, v uint64) {
	c.store(s, v)
}
