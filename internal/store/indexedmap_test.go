package store

import "testing"

type testAccount struct {
	CodeHash string
}

func codeHashExtractor(a testAccount) []byte { return []byte(a.CodeHash) }

func TestUniqueIndexRejectsDuplicateSecondaryKey(t *testing.T) {
	s := NewMemStore()
	primary := NewMap[StringKey, testAccount]("accounts", []byte{0x40}, JSONCodec[testAccount]{})
	ix := NewUniqueIndex[StringKey, testAccount]([]byte{0x41}, codeHashExtractor)
	im := NewIndexedMap[StringKey, testAccount](primary, ix)

	if err := im.Save(s, "contract1", testAccount{CodeHash: "hash-a"}); err != nil {
		t.Fatalf("save contract1: %v", err)
	}
	if err := im.Save(s, "contract2", testAccount{CodeHash: "hash-a"}); err == nil {
		t.Fatal("expected a unique index violation binding a second primary key to the same code hash")
	}

	bound := ix.Load(s, []byte("hash-a"))
	if string(bound) != "contract1" {
		t.Fatalf("index bound to %q, want contract1", bound)
	}
}

func TestUniqueIndexReleasesOldSecondaryOnChange(t *testing.T) {
	s := NewMemStore()
	primary := NewMap[StringKey, testAccount]("accounts2", []byte{0x42}, JSONCodec[testAccount]{})
	ix := NewUniqueIndex[StringKey, testAccount]([]byte{0x43}, codeHashExtractor)
	im := NewIndexedMap[StringKey, testAccount](primary, ix)

	if err := im.Save(s, "contract1", testAccount{CodeHash: "hash-a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := im.Save(s, "contract1", testAccount{CodeHash: "hash-b"}); err != nil {
		t.Fatalf("save with a new code hash: %v", err)
	}

	if bound := ix.Load(s, []byte("hash-a")); bound != nil {
		t.Fatalf("old secondary key hash-a must be released, still bound to %q", bound)
	}
	if bound := ix.Load(s, []byte("hash-b")); string(bound) != "contract1" {
		t.Fatalf("new secondary key hash-b bound to %q, want contract1", bound)
	}
}

func TestUniqueIndexRemoveReleasesSecondaryKey(t *testing.T) {
	s := NewMemStore()
	primary := NewMap[StringKey, testAccount]("accounts3", []byte{0x44}, JSONCodec[testAccount]{})
	ix := NewUniqueIndex[StringKey, testAccount]([]byte{0x45}, codeHashExtractor)
	im := NewIndexedMap[StringKey, testAccount](primary, ix)

	_ = im.Save(s, "contract1", testAccount{CodeHash: "hash-a"})
	if err := im.Remove(s, "contract1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if bound := ix.Load(s, []byte("hash-a")); bound != nil {
		t.Fatalf("removing the primary entry must release its secondary key, still bound to %q", bound)
	}
}

func TestMultiIndexTracksManyPrimariesPerSecondary(t *testing.T) {
	s := NewMemStore()
	primary := NewMap[StringKey, testAccount]("accounts4", []byte{0x46}, JSONCodec[testAccount]{})
	ix := NewMultiIndex[StringKey, testAccount]([]byte{0x47}, codeHashExtractor)
	im := NewIndexedMap[StringKey, testAccount](primary, ix)

	_ = im.Save(s, "contract1", testAccount{CodeHash: "hash-a"})
	_ = im.Save(s, "contract2", testAccount{CodeHash: "hash-a"})
	_ = im.Save(s, "contract3", testAccount{CodeHash: "hash-b"})

	bound := ix.Range(s, []byte("hash-a"))
	if len(bound) != 2 {
		t.Fatalf("multi index for hash-a returned %d entries, want 2", len(bound))
	}

	_ = im.Remove(s, "contract1")
	bound = ix.Range(s, []byte("hash-a"))
	if len(bound) != 1 || string(bound[0]) != "contract2" {
		t.Fatalf("multi index after removing contract1 = %v, want [contract2]", bound)
	}
}
