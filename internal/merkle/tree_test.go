package merkle

import (
	"crypto/sha256"
	"testing"

	"corechain/internal/primitives"
	"corechain/internal/store"
)

func newTestTree() *Tree {
	return New(store.NewMemStore())
}

func TestApplyProduceDeterministicRootHash(t *testing.T) {
	batch := []Op{
		{Key: []byte("alice"), Value: []byte("100")},
		{Key: []byte("bob"), Value: []byte("200")},
	}

	t1 := newTestTree()
	h1, err := t1.Apply(0, 1, batch)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	t2 := newTestTree()
	h2, err := t2.Apply(0, 1, batch)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if h1 != h2 {
		t.Fatalf("same batch applied from the same empty tree produced different roots: %x vs %x", h1, h2)
	}
	if h1 == EmptyTreeHash {
		t.Fatal("non-empty batch must not hash to the empty tree root")
	}
}

func TestApplyRejectsNonIncreasingVersion(t *testing.T) {
	tree := newTestTree()
	if _, err := tree.Apply(0, 1, []Op{{Key: []byte("k"), Value: []byte("v")}}); err != nil {
		t.Fatalf("apply v1: %v", err)
	}
	if _, err := tree.Apply(1, 1, nil); err == nil {
		t.Fatal("expected an error applying new_version == old_version")
	}
}

func TestMembershipProofVerifies(t *testing.T) {
	tree := newTestTree()
	root, err := tree.Apply(0, 1, []Op{
		{Key: []byte("alice"), Value: []byte("100")},
		{Key: []byte("bob"), Value: []byte("200")},
		{Key: []byte("carol"), Value: []byte("300")},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	keyHash := primitives.Hash256(sha256.Sum256([]byte("bob")))
	proof, err := tree.Prove(keyHash, 1)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if proof.Kind != ProofMembership {
		t.Fatalf("proof kind = %v, want ProofMembership", proof.Kind)
	}
	if err := Verify(proof, root, keyHash, []byte("200")); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := Verify(proof, root, keyHash, []byte("wrong-value")); err == nil {
		t.Fatal("verify must reject a mismatched value")
	}
}

func TestAbsenceProofOnEmptyTreeVerifies(t *testing.T) {
	tree := newTestTree()
	keyHash := primitives.Hash256(sha256.Sum256([]byte("nobody")))
	proof, err := tree.Prove(keyHash, 0)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if proof.Kind != ProofAbsenceEmpty {
		t.Fatalf("proof kind = %v, want ProofAbsenceEmpty", proof.Kind)
	}
	if err := Verify(proof, EmptyTreeHash, keyHash, nil); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestAbsenceProofAgainstDivergentLeafVerifies(t *testing.T) {
	tree := newTestTree()
	root, err := tree.Apply(0, 1, []Op{
		{Key: []byte("alice"), Value: []byte("100")},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	missingHash := primitives.Hash256(sha256.Sum256([]byte("zzz-not-present")))
	proof, err := tree.Prove(missingHash, 1)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if proof.Kind == ProofMembership {
		t.Fatal("key was never inserted, proof must not claim membership")
	}
	if err := Verify(proof, root, missingHash, nil); err != nil {
		t.Fatalf("verify absence proof: %v", err)
	}
}

func TestDeleteRemovesKeyAndUpdatesRoot(t *testing.T) {
	tree := newTestTree()
	afterInsert, err := tree.Apply(0, 1, []Op{
		{Key: []byte("alice"), Value: []byte("100")},
		{Key: []byte("bob"), Value: []byte("200")},
	})
	if err != nil {
		t.Fatalf("apply insert: %v", err)
	}

	afterDelete, err := tree.Apply(1, 2, []Op{{Key: []byte("bob"), Value: nil}})
	if err != nil {
		t.Fatalf("apply delete: %v", err)
	}
	if afterDelete == afterInsert {
		t.Fatal("deleting a key must change the root hash")
	}

	bobHash := primitives.Hash256(sha256.Sum256([]byte("bob")))
	proof, err := tree.Prove(bobHash, 2)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if proof.Kind == ProofMembership {
		t.Fatal("bob was deleted, proof must not claim membership at version 2")
	}
	if err := Verify(proof, afterDelete, bobHash, nil); err != nil {
		t.Fatalf("verify absence after delete: %v", err)
	}

	// The old version is still provable until pruned.
	oldProof, err := tree.Prove(bobHash, 1)
	if err != nil {
		t.Fatalf("prove at old version: %v", err)
	}
	if oldProof.Kind != ProofMembership {
		t.Fatal("bob must still be provable at version 1")
	}
	if err := Verify(oldProof, afterInsert, bobHash, []byte("200")); err != nil {
		t.Fatalf("verify membership at old version: %v", err)
	}
}

func TestPruneDropsOrphansButKeepsRetainedVersions(t *testing.T) {
	tree := newTestTree()
	if _, err := tree.Apply(0, 1, []Op{{Key: []byte("a"), Value: []byte("1")}}); err != nil {
		t.Fatalf("apply v1: %v", err)
	}
	v2, err := tree.Apply(1, 2, []Op{{Key: []byte("a"), Value: []byte("2")}})
	if err != nil {
		t.Fatalf("apply v2: %v", err)
	}

	// The rewrite of "a" at version 2 orphans its version-1 node record,
	// orphaned_since == 2. Pruning up to version 2 reclaims it.
	tree.Prune(2)

	keyHash := primitives.Hash256(sha256.Sum256([]byte("a")))
	proof, err := tree.Prove(keyHash, 2)
	if err != nil {
		t.Fatalf("prove at retained version after prune: %v", err)
	}
	if err := Verify(proof, v2, keyHash, []byte("2")); err != nil {
		t.Fatalf("verify at retained version after prune: %v", err)
	}

	if _, err := tree.Prove(keyHash, 1); err == nil {
		t.Fatal("expected pruned version's node lookup to fail")
	}
}
