package merkle

import (
	"crypto/sha256"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
)

// Domain-separation prefixes so no internal-node preimage can collide with a
// leaf-node preimage, per spec §3.5 and original_source's node.rs
// (INTERNAL_NODE_HASH_PREFIX / LEAF_NODE_HASH_PERFIX).
const (
	internalHashPrefix = byte(0x00)
	leafHashPrefix     = byte(0x01)
)

// Node is either a LeafNode or an InternalNode.
type Node interface {
	Hash() primitives.Hash256
	isNode()
}

// Child is a pointer from an InternalNode to one of its two children: the
// version at which that child was last written, and its hash (so the parent
// hash can be computed without loading the child).
type Child struct {
	Version uint64
	Hash    primitives.Hash256
}

// LeafNode stores a hashed key and a hashed value; the tree never stores
// plaintext keys or values itself (those live in the raw KV store).
type LeafNode struct {
	KeyHash   primitives.Hash256
	ValueHash primitives.Hash256
}

func (LeafNode) isNode() {}

func (n LeafNode) Hash() primitives.Hash256 {
	h := sha256.New()
	h.Write([]byte{leafHashPrefix})
	h.Write(n.KeyHash[:])
	h.Write(n.ValueHash[:])
	var out primitives.Hash256
	copy(out[:], h.Sum(nil))
	return out
}

// InternalNode has up to two children; a nil child hashes as the all-zero
// value in the parent preimage, keeping every internal node's hash
// computation arity-2 regardless of which children are present.
type InternalNode struct {
	Left  *Child
	Right *Child
}

func (InternalNode) isNode() {}

func (n InternalNode) Hash() primitives.Hash256 {
	h := sha256.New()
	h.Write([]byte{internalHashPrefix})
	if n.Left != nil {
		h.Write(n.Left.Hash[:])
	} else {
		h.Write(primitives.ZeroHash256[:])
	}
	if n.Right != nil {
		h.Write(n.Right.Hash[:])
	} else {
		h.Write(primitives.ZeroHash256[:])
	}
	var out primitives.Hash256
	copy(out[:], h.Sum(nil))
	return out
}

// node wire tags, used only for on-disk encoding (not part of the hash
// preimage).
const (
	tagLeaf     byte = 0
	tagInternal byte = 1
)

func encodeNode(n Node) []byte {
	switch v := n.(type) {
	case LeafNode:
		out := make([]byte, 1+32+32)
		out[0] = tagLeaf
		copy(out[1:33], v.KeyHash[:])
		copy(out[33:65], v.ValueHash[:])
		return out
	case InternalNode:
		out := []byte{tagInternal}
		out = append(out, encodeChild(v.Left)...)
		out = append(out, encodeChild(v.Right)...)
		return out
	default:
		panic("merkle: unknown node type")
	}
}

func encodeChild(c *Child) []byte {
	if c == nil {
		return []byte{0}
	}
	out := make([]byte, 1+8+32)
	out[0] = 1
	beUint64(out[1:9], c.Version)
	copy(out[9:41], c.Hash[:])
	return out
}

func decodeNode(b []byte) (Node, error) {
	if len(b) == 0 {
		return nil, apperror.DB("merkle: empty node record")
	}
	switch b[0] {
	case tagLeaf:
		if len(b) != 65 {
			return nil, apperror.DB("merkle: malformed leaf node record")
		}
		var leaf LeafNode
		copy(leaf.KeyHash[:], b[1:33])
		copy(leaf.ValueHash[:], b[33:65])
		return leaf, nil
	case tagInternal:
		rest := b[1:]
		left, n1, err := decodeChild(rest)
		if err != nil {
			return nil, err
		}
		right, _, err := decodeChild(rest[n1:])
		if err != nil {
			return nil, err
		}
		return InternalNode{Left: left, Right: right}, nil
	default:
		return nil, apperror.DB("merkle: unknown node tag %d", b[0])
	}
}

func decodeChild(b []byte) (*Child, int, error) {
	if len(b) < 1 {
		return nil, 0, apperror.DB("merkle: truncated child record")
	}
	if b[0] == 0 {
		return nil, 1, nil
	}
	if len(b) < 41 {
		return nil, 0, apperror.DB("merkle: truncated child record")
	}
	c := &Child{Version: beUint64ToU(b[1:9])}
	copy(c.Hash[:], b[9:41])
	return c, 41, nil
}

func beUint64(dst []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

func beUint64ToU(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}
