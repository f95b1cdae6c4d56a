package store

import "testing"

func TestPrefixStoreIsolatesReadsAndWrites(t *testing.T) {
	root := NewMemStore()
	a := NewPrefixStore(root, []byte{0x01})
	b := NewPrefixStore(root, []byte{0x02})

	a.Write([]byte("key"), []byte("from-a"))
	if b.Read([]byte("key")) != nil {
		t.Fatal("writing under prefix 0x01 must not be visible under prefix 0x02")
	}
	if got := a.Read([]byte("key")); string(got) != "from-a" {
		t.Fatalf("a.Read(key) = %q, want from-a", got)
	}

	// Confirm the underlying key is actually prefixed in the root store.
	if got := root.Read([]byte{0x01, 'k', 'e', 'y'}); string(got) != "from-a" {
		t.Fatalf("root.Read(0x01‖key) = %q, want from-a", got)
	}
}

func TestPrefixStoreScanTrimsPrefixFromKeys(t *testing.T) {
	root := NewMemStore()
	p := NewPrefixStore(root, []byte{0x05})

	p.Write([]byte("alice"), []byte("1"))
	p.Write([]byte("bob"), []byte("2"))
	// A sibling prefix must never leak into the scan.
	sibling := NewPrefixStore(root, []byte{0x06})
	sibling.Write([]byte("carol"), []byte("3"))

	it := p.Scan(nil, nil, Ascending)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	if len(keys) != 2 || keys[0] != "alice" || keys[1] != "bob" {
		t.Fatalf("scan returned %v, want [alice bob]", keys)
	}
}

func TestPrefixStoreRemoveRangeStaysWithinPrefix(t *testing.T) {
	root := NewMemStore()
	p := NewPrefixStore(root, []byte{0x07})
	sibling := NewPrefixStore(root, []byte{0x08})

	p.Write([]byte("a"), []byte("1"))
	sibling.Write([]byte("a"), []byte("1"))

	p.RemoveRange(nil, nil)

	if p.Read([]byte("a")) != nil {
		t.Fatal("RemoveRange(nil, nil) must clear every key within the prefix")
	}
	if sibling.Read([]byte("a")) == nil {
		t.Fatal("RemoveRange on one prefix must not affect a sibling prefix")
	}
}

func TestPrefixUpperBoundCarries(t *testing.T) {
	got := prefixUpperBound([]byte{0x01, 0xff})
	want := []byte{0x02}
	if string(got) != string(want) {
		t.Fatalf("prefixUpperBound([0x01,0xff]) = %x, want %x", got, want)
	}
	if prefixUpperBound([]byte{0xff, 0xff}) != nil {
		t.Fatal("an all-0xff prefix's upper bound must be nil (runs to the end of the keyspace)")
	}
}
