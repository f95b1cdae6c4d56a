package store

import (
	"testing"
)

func TestMapSaveLoadMayLoadHasRemove(t *testing.T) {
	s := NewMemStore()
	m := NewMap[StringKey, string]("accounts", []byte{0x10}, JSONCodec[string]{})

	if m.Has(s, "alice") {
		t.Fatal("Has on an empty map must be false")
	}
	if _, err := m.Load(s, "alice"); err == nil {
		t.Fatal("Load on a missing key must error")
	}
	if _, ok, err := m.MayLoad(s, "alice"); err != nil || ok {
		t.Fatalf("MayLoad on a missing key = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	if err := m.Save(s, "alice", "hello"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !m.Has(s, "alice") {
		t.Fatal("Has must be true after Save")
	}
	got, err := m.Load(s, "alice")
	if err != nil || got != "hello" {
		t.Fatalf("Load = (%q, %v), want (hello, nil)", got, err)
	}

	m.Remove(s, "alice")
	if m.Has(s, "alice") {
		t.Fatal("Has must be false after Remove")
	}
}

func TestMapUpdateSeesPriorValue(t *testing.T) {
	s := NewMemStore()
	m := NewMap[StringKey, int]("counters", []byte{0x11}, JSONCodec[int]{})

	err := m.Update(s, "x", func(cur int, ok bool) (int, error) {
		if ok {
			t.Fatal("first Update call should see no existing value")
		}
		return cur + 1, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	err = m.Update(s, "x", func(cur int, ok bool) (int, error) {
		if !ok || cur != 1 {
			t.Fatalf("second Update call should see (1, true), got (%d, %v)", cur, ok)
		}
		return cur + 1, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := m.Load(s, "x")
	if err != nil || got != 2 {
		t.Fatalf("Load after two updates = (%d, %v), want (2, nil)", got, err)
	}
}

func TestMapRangeWithPair2PrefixScopesToFirstSegment(t *testing.T) {
	s := NewMemStore()
	type balanceKey = Pair2[StringKey, StringKey]
	m := NewMap[balanceKey, int64]("balances", []byte{0x12}, JSONCodec[int64]{})

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	must(m.Save(s, balanceKey{A: "alice", B: "uatom"}, 10))
	must(m.Save(s, balanceKey{A: "alice", B: "uosmo"}, 20))
	must(m.Save(s, balanceKey{A: "bob", B: "uatom"}, 30))

	entries, err := m.Range(s, Pair2Prefix[StringKey]("alice"), Ascending)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("range over alice's prefix returned %d entries, want 2", len(entries))
	}
	total := int64(0)
	for _, e := range entries {
		total += e.Value
	}
	if total != 30 {
		t.Fatalf("sum of alice's balances = %d, want 30", total)
	}

	all, err := m.Range(s, nil, Ascending)
	if err != nil {
		t.Fatalf("range all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("range with nil prefix returned %d entries, want 3", len(all))
	}
}

func TestMapClearPrefixRemovesOnlyMatchingEntries(t *testing.T) {
	s := NewMemStore()
	type balanceKey = Pair2[StringKey, StringKey]
	m := NewMap[balanceKey, int64]("balances2", []byte{0x13}, JSONCodec[int64]{})

	_ = m.Save(s, balanceKey{A: "alice", B: "uatom"}, 10)
	_ = m.Save(s, balanceKey{A: "bob", B: "uatom"}, 30)

	m.ClearPrefix(s, Pair2Prefix[StringKey]("alice"))

	if m.Has(s, balanceKey{A: "alice", B: "uatom"}) {
		t.Fatal("alice's entry should have been cleared")
	}
	if !m.Has(s, balanceKey{A: "bob", B: "uatom"}) {
		t.Fatal("bob's entry must survive clearing alice's prefix")
	}
}
