package vm

import (
	"encoding/json"
	"testing"
)

func TestGenericResultMarshalOk(t *testing.T) {
	r := Ok(42)
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"ok":42}` {
		t.Fatalf("marshalled = %s, want {\"ok\":42}", b)
	}
	if r.IsErr() {
		t.Fatal("Ok result must not report IsErr")
	}
	v, errMsg := r.Unwrap()
	if v != 42 || errMsg != "" {
		t.Fatalf("unwrap = (%d, %q), want (42, \"\")", v, errMsg)
	}
}

func TestGenericResultMarshalErr(t *testing.T) {
	r := Err[int]("contract trapped")
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"err":"contract trapped"}` {
		t.Fatalf("marshalled = %s, want {\"err\":\"contract trapped\"}", b)
	}
	if !r.IsErr() {
		t.Fatal("Err result must report IsErr")
	}
}

func TestGenericResultUnmarshalRoundTrip(t *testing.T) {
	ok := Ok("hello")
	b, _ := json.Marshal(ok)
	var got GenericResult[string]
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal ok: %v", err)
	}
	v, errMsg := got.Unwrap()
	if v != "hello" || errMsg != "" {
		t.Fatalf("unwrap = (%q, %q), want (hello, \"\")", v, errMsg)
	}

	failed := Err[string]("boom")
	b, _ = json.Marshal(failed)
	var gotErr GenericResult[string]
	if err := json.Unmarshal(b, &gotErr); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if !gotErr.IsErr() {
		t.Fatal("expected the round-tripped result to report IsErr")
	}
	_, errMsg = gotErr.Unwrap()
	if errMsg != "boom" {
		t.Fatalf("unwrapped error = %q, want boom", errMsg)
	}
}
