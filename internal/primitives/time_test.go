package primitives

import (
	"testing"
	"time"
)

func TestTimestampAddAndSub(t *testing.T) {
	start := Timestamp(1000)
	d := SecondsToDuration(5)
	end := start.Add(d)
	if end.Sub(start) != d {
		t.Fatalf("end.Sub(start) = %d, want %d", end.Sub(start), d)
	}
	if !start.Before(end) {
		t.Fatal("start must be before end")
	}
	if !end.After(start) {
		t.Fatal("end must be after start")
	}
	if !start.AtOrBefore(start) {
		t.Fatal("a timestamp must be AtOrBefore itself")
	}
}

func TestNewTimestampFromTimeRoundTrips(t *testing.T) {
	tm := time.Date(2026, 1, 1, 0, 0, 0, 123, time.UTC)
	ts := NewTimestamp(tm)
	if !ts.AsTime().Equal(tm) {
		t.Fatalf("round-tripped time = %v, want %v", ts.AsTime(), tm)
	}
}

func TestSecondsToDurationScalesToNanoseconds(t *testing.T) {
	d := SecondsToDuration(2)
	if d != Duration(2*time.Second) {
		t.Fatalf("SecondsToDuration(2) = %d, want %d", d, 2*time.Second)
	}
}
