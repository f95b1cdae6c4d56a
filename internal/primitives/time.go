package primitives

import "time"

// Timestamp is a nanosecond-resolution monotonic scalar, stored as
// nanoseconds since Unix epoch.
type Timestamp int64

// Duration is a nanosecond-resolution span between two Timestamps.
type Duration int64

// NewTimestamp converts a time.Time to a Timestamp, truncating to
// nanosecond resolution (time.Time already is nanosecond resolution, this
// just fixes the representation used on the wire).
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

func (t Timestamp) Add(d Duration) Timestamp        { return t + Timestamp(d) }
func (t Timestamp) Sub(other Timestamp) Duration    { return Duration(t - other) }
func (t Timestamp) Before(other Timestamp) bool     { return t < other }
func (t Timestamp) After(other Timestamp) bool      { return t > other }
func (t Timestamp) AtOrBefore(other Timestamp) bool { return t <= other }

func (t Timestamp) AsTime() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

func SecondsToDuration(s int64) Duration { return Duration(s * int64(time.Second)) }
