// Package gas implements the process-wide gas accounting of spec §4.5:
// a reference-counted tracker shared across nested Wasm calls so that
// sub-messages and cross-contract queries spend out of one transaction
// budget, grounded on original_source/crates/app/src/gas.rs.
package gas

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"corechain/internal/apperror"
)

// Tracker holds { limit, used } behind a mutex. A nil limit means
// Unlimited: used is still tracked (useful for reporting gas_used after
// simulate/genesis/cronjobs) but consumption never fails.
type Tracker struct {
	mu    sync.Mutex
	limit *uint64
	used  uint64
	log   *logrus.Entry
}

// NewLimited creates a tracker that refuses consumption beyond limit.
func NewLimited(limit uint64) *Tracker {
	return &Tracker{limit: &limit, log: logrus.WithField("component", "gas")}
}

// NewUnlimited creates a tracker that tracks usage but never fails —
// genesis, cronjobs, and query paths with no explicit budget, plus
// simulate (spec §4.5).
func NewUnlimited() *Tracker {
	return &Tracker{log: logrus.WithField("component", "gas")}
}

// Limit reports the tracker's limit and whether one is set.
func (t *Tracker) Limit() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == nil {
		return 0, false
	}
	return *t.limit, true
}

// Used reports gas consumed so far.
func (t *Tracker) Used() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Consume attempts to spend n units of gas. It is atomic: if the tracker
// is Limited and used+n would exceed the limit, used is left unchanged and
// an OutOfGas error is returned.
func (t *Tracker) Consume(n uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.used + n
	if t.limit != nil && next > *t.limit {
		t.log.WithFields(logrus.Fields{"limit": *t.limit, "attempted": next}).Warn("out of gas")
		return apperror.OutOfGas(*t.limit, next)
	}
	t.used = next
	return nil
}

// String renders the tracker's state for debugging/logging.
func (t *Tracker) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit == nil {
		return fmt.Sprintf("Tracker{limit: none, used: %d}", t.used)
	}
	return fmt.Sprintf("Tracker{limit: %d, used: %d}", *t.limit, t.used)
}
