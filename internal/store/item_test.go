package store

import "testing"

func TestItemLoadOnUnsetReturnsDataNotFound(t *testing.T) {
	s := NewMemStore()
	it := NewItem[string]("config", []byte{0x01}, JSONCodec[string]{})

	if it.Exists(s) {
		t.Fatal("Exists must be false before any Save")
	}
	if _, err := it.Load(s); err == nil {
		t.Fatal("Load on an unset item must error")
	}
	if _, ok, err := it.MayLoad(s); err != nil || ok {
		t.Fatalf("MayLoad on an unset item = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestItemSaveLoadRemove(t *testing.T) {
	s := NewMemStore()
	it := NewItem[string]("config", []byte{0x01}, JSONCodec[string]{})

	if err := it.Save(s, "hello"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !it.Exists(s) {
		t.Fatal("Exists must be true after Save")
	}
	got, err := it.Load(s)
	if err != nil || got != "hello" {
		t.Fatalf("Load = (%q, %v), want (hello, nil)", got, err)
	}

	it.Remove(s)
	if it.Exists(s) {
		t.Fatal("Exists must be false after Remove")
	}
}

func TestItemUpdateSeesAbsenceThenPriorValue(t *testing.T) {
	s := NewMemStore()
	it := NewItem[int]("counter", []byte{0x02}, JSONCodec[int]{})

	err := it.Update(s, func(cur int, ok bool) (int, error) {
		if ok {
			t.Fatal("first Update should see no existing value")
		}
		return cur + 1, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	err = it.Update(s, func(cur int, ok bool) (int, error) {
		if !ok || cur != 1 {
			t.Fatalf("second Update should see (1, true), got (%d, %v)", cur, ok)
		}
		return cur + 1, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := it.Load(s)
	if err != nil || got != 2 {
		t.Fatalf("load after two updates = (%d, %v), want (2, nil)", got, err)
	}
}
