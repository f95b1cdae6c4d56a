package vm

import (
	"testing"

	"corechain/internal/apperror"
	"corechain/internal/primitives"
)

func TestInstanceBuilderCallRejectsUnknownExport(t *testing.T) {
	b := &InstanceBuilder{}
	_, err := b.Call(primitives.Hash256{}, nil, "not_a_real_export", Context{}, nil)
	if !apperror.IsKind(err, apperror.KindVM) {
		t.Fatalf("expected a KindVM error for an unknown export, got %v", err)
	}
}

func TestInstanceBuilderCallRejectsWrongArity(t *testing.T) {
	b := &InstanceBuilder{}
	// "execute" takes exactly one input region; supplying two must fail
	// before any module compilation is attempted.
	_, err := b.Call(primitives.Hash256{}, nil, "execute", Context{}, [][]byte{[]byte("a"), []byte("b")})
	if !apperror.IsKind(err, apperror.KindVM) {
		t.Fatalf("expected a KindVM error for wrong arity, got %v", err)
	}
}

func TestInstanceBuilderCallRejectsZeroArityExportWithArgs(t *testing.T) {
	b := &InstanceBuilder{}
	// "receive" takes zero input regions.
	_, err := b.Call(primitives.Hash256{}, nil, "receive", Context{}, [][]byte{[]byte("unexpected")})
	if !apperror.IsKind(err, apperror.KindVM) {
		t.Fatalf("expected a KindVM error supplying args to a zero-arity export, got %v", err)
	}
}
