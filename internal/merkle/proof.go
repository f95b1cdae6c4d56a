package merkle

import (
	"crypto/sha256"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
)

// ProofKind tags whether a MerkleProof attests membership or absence.
type ProofKind int

const (
	ProofMembership ProofKind = iota
	ProofAbsenceEmpty
	ProofAbsenceDivergentLeaf
)

// MerkleProof is a sequence of sibling hashes from leaf to root (spec
// §4.3), plus enough information to reconstruct the claimed leaf (or
// divergent-leaf/empty-slot) hash at the bottom of the chain.
type MerkleProof struct {
	Kind ProofKind
	// Siblings holds one hash per level walked, from the deepest level up
	// to (but not including) the root's own hash. Siblings[i] is the hash
	// of the node NOT on the path at that level (or the zero hash if that
	// side was absent).
	Siblings []primitives.Hash256

	// ValueHash is set for ProofMembership: the hash of the proven value.
	ValueHash primitives.Hash256

	// DivergentKeyHash/DivergentValueHash are set for
	// ProofAbsenceDivergentLeaf: the leaf actually found where the proven
	// key would have been, which differs from it starting at some bit.
	DivergentKeyHash   primitives.Hash256
	DivergentValueHash primitives.Hash256
}

// Prove builds a MerkleProof that keyHash either is or is not present in
// the tree at version.
func (t *Tree) Prove(keyHash primitives.Hash256, version uint64) (*MerkleProof, error) {
	if _, ok := t.RootHash(version); !ok {
		return &MerkleProof{Kind: ProofAbsenceEmpty}, nil
	}

	bits := EmptyBits
	slotVersion := version
	var siblings []primitives.Hash256

	for {
		node, err := t.loadNode(NodeKey{Version: slotVersion, Bits: bits})
		if err != nil {
			return nil, err
		}
		switch n := node.(type) {
		case LeafNode:
			if n.KeyHash == keyHash {
				reverse(siblings)
				return &MerkleProof{Kind: ProofMembership, Siblings: siblings, ValueHash: n.ValueHash}, nil
			}
			reverse(siblings)
			return &MerkleProof{
				Kind:               ProofAbsenceDivergentLeaf,
				Siblings:           siblings,
				DivergentKeyHash:   n.KeyHash,
				DivergentValueHash: n.ValueHash,
			}, nil
		case InternalNode:
			depth := bits.Len()
			bit := BitAt(keyHash, depth)
			var taken, sibling *Child
			if bit {
				taken, sibling = n.Right, n.Left
			} else {
				taken, sibling = n.Left, n.Right
			}
			if sibling != nil {
				siblings = append(siblings, sibling.Hash)
			} else {
				siblings = append(siblings, primitives.ZeroHash256)
			}
			if taken == nil {
				reverse(siblings)
				return &MerkleProof{Kind: ProofAbsenceEmpty, Siblings: siblings}, nil
			}
			bits = bits.Append(bit)
			slotVersion = taken.Version
		default:
			return nil, apperror.DB("merkle: unknown node type during proof")
		}
	}
}

func reverse(hs []primitives.Hash256) {
	for i, j := 0, len(hs)-1; i < j; i, j = i+1, j-1 {
		hs[i], hs[j] = hs[j], hs[i]
	}
}

// Verify checks proof against rootHash for keyHash. value is the claimed
// value bytes for a membership proof, or nil for an absence proof.
func Verify(proof *MerkleProof, rootHash primitives.Hash256, keyHash primitives.Hash256, value []byte) error {
	var leafHash primitives.Hash256
	depth := len(proof.Siblings)

	switch proof.Kind {
	case ProofMembership:
		if value == nil {
			return apperror.Std("merkle: membership proof requires a value to verify")
		}
		valueHash := sha256.Sum256(value)
		if valueHash != proof.ValueHash {
			return apperror.Std("merkle: value hash mismatch")
		}
		leafHash = LeafNode{KeyHash: keyHash, ValueHash: proof.ValueHash}.Hash()
	case ProofAbsenceEmpty:
		leafHash = primitives.ZeroHash256
	case ProofAbsenceDivergentLeaf:
		if proof.DivergentKeyHash == keyHash {
			return apperror.Std("merkle: divergent leaf has the same key hash as the proven key")
		}
		leafHash = LeafNode{KeyHash: proof.DivergentKeyHash, ValueHash: proof.DivergentValueHash}.Hash()
	default:
		return apperror.Std("merkle: unknown proof kind")
	}

	// Siblings is ordered leaf-to-root (Prove reverses it after descent):
	// Siblings[0] is the deepest level's sibling, Siblings[depth-1] is the
	// one nearest the root.
	cur := leafHash
	for j := 0; j < depth; j++ {
		level := depth - 1 - j
		bit := BitAt(keyHash, level)
		n := InternalNode{}
		sib := proof.Siblings[j]
		if bit {
			n.Right = &Child{Hash: cur}
			if sib != primitives.ZeroHash256 {
				n.Left = &Child{Hash: sib}
			}
		} else {
			n.Left = &Child{Hash: cur}
			if sib != primitives.ZeroHash256 {
				n.Right = &Child{Hash: sib}
			}
		}
		cur = n.Hash()
	}

	if cur != rootHash {
		return apperror.Std("merkle: proof does not verify against the given root hash")
	}
	return nil
}
