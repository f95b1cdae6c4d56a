package primitives

import (
	"encoding/json"
	"testing"
)

func TestParseAddressRoundTrip(t *testing.T) {
	a := MockAddress(42)
	parsed, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != a {
		t.Fatalf("round-tripped address = %s, want %s", parsed, a)
	}
}

func TestParseAddressRejectsWrongLength(t *testing.T) {
	if _, err := ParseAddress("deadbeef"); err == nil {
		t.Fatal("expected an error for a too-short address")
	}
	if _, err := ParseAddress("not-hex-at-all-not-hex-at-all-zzzzzzzz"); err == nil {
		t.Fatal("expected an error for non-hex input")
	}
}

func TestMockAddressIsDeterministic(t *testing.T) {
	if MockAddress(7) != MockAddress(7) {
		t.Fatal("MockAddress must be deterministic for the same index")
	}
	if MockAddress(7) == MockAddress(8) {
		t.Fatal("MockAddress must differ across indices")
	}
}

func TestDeriveGenesisAddressDependsOnSenderAndIndex(t *testing.T) {
	sender1 := MockAddress(1)
	sender2 := MockAddress(2)

	a := DeriveGenesisAddress(sender1, 0)
	b := DeriveGenesisAddress(sender1, 1)
	c := DeriveGenesisAddress(sender2, 0)

	if a == b {
		t.Fatal("different indices under the same sender must derive different addresses")
	}
	if a == c {
		t.Fatal("different senders at the same index must derive different addresses")
	}
	if DeriveGenesisAddress(sender1, 0) != a {
		t.Fatal("derivation must be deterministic")
	}
}

func TestDeriveContractAddressDependsOnSaltAndCodeHash(t *testing.T) {
	deployer := MockAddress(1)
	code1 := HashCode([]byte("contract-a"))
	code2 := HashCode([]byte("contract-b"))

	addr1 := DeriveContractAddress(deployer, code1, []byte("salt"))
	addr2 := DeriveContractAddress(deployer, code2, []byte("salt"))
	addr3 := DeriveContractAddress(deployer, code1, []byte("other-salt"))

	if addr1 == addr2 {
		t.Fatal("different code hashes must derive different contract addresses")
	}
	if addr1 == addr3 {
		t.Fatal("different salts must derive different contract addresses")
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	a := MockAddress(9)
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Address
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != a {
		t.Fatalf("round-tripped address = %s, want %s", got, a)
	}
}

func TestAddressAsJSONMapKeyRoundTrips(t *testing.T) {
	m := map[Address]int{MockAddress(1): 10, MockAddress(2): 20}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[Address]int
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[MockAddress(1)] != 10 || got[MockAddress(2)] != 20 {
		t.Fatalf("round-tripped map = %v, want %v", got, m)
	}
}

func TestAddressIsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Fatal("the zero value must report IsZero")
	}
	if MockAddress(1).IsZero() {
		t.Fatal("a non-zero address must not report IsZero")
	}
}
