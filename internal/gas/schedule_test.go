package gas

import "testing"

func TestLinearGasCostCost(t *testing.T) {
	c := LinearGasCost{Base: 2, PerItem: 3}
	if got := c.Cost(0); got != 2 {
		t.Fatalf("cost(0) = %d, want 2 (base only)", got)
	}
	if got := c.Cost(5); got != 17 {
		t.Fatalf("cost(5) = %d, want 17 (2 + 3*5)", got)
	}
}

func TestDefaultCostsWritesAreMoreExpensiveThanReads(t *testing.T) {
	if DefaultCosts.DBWrite.Base <= DefaultCosts.DBRead.Base {
		t.Fatalf("DBWrite base cost %d must exceed DBRead base cost %d", DefaultCosts.DBWrite.Base, DefaultCosts.DBRead.Base)
	}
	if DefaultCosts.DBRemove.Base <= DefaultCosts.DBRead.Base {
		t.Fatalf("DBRemove base cost %d must exceed DBRead base cost %d", DefaultCosts.DBRemove.Base, DefaultCosts.DBRead.Base)
	}
}
