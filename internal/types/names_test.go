package types

import (
	"testing"

	"phlox/internal/source"
)

func TestMangleNameTracksArity(t *testing.T) {
	r := NewRegistry(nil, nil)
	plain := r.Declare("Plain", TypeKindClass, NoNamedID, source.Span{})
	pair := declareGeneric(t, r, "Pair", "K", "V")

	if r.MangleName(plain) {
		t.Fatalf("arity-0 names are never mangled")
	}
	if !r.MangleName(pair) {
		t.Fatalf("generic definitions mangle their metadata name")
	}
	inst, err := r.Construct(pair, []TypeArg{intArg(r), intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	// Mangling is a function of arity, not instantiation state.
	if !r.MangleName(inst) {
		t.Fatalf("constructed types mangle exactly like their definition")
	}
}

func TestMetadataName(t *testing.T) {
	r := NewRegistry(nil, nil)
	pair := declareGeneric(t, r, "Pair", "K", "V")
	plain := r.Declare("Plain", TypeKindClass, NoNamedID, source.Span{})

	if got := r.MetadataName(pair); got != "Pair`2" {
		t.Fatalf("metadata name = %q", got)
	}
	if got := r.MetadataName(plain); got != "Plain" {
		t.Fatalf("metadata name = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	if got := r.DisplayName(box); got != "Box<T>" {
		t.Fatalf("definition display = %q", got)
	}
	inst, err := r.Construct(box, []TypeArg{intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if got := r.DisplayName(inst); got != "Box<int>" {
		t.Fatalf("constructed display = %q", got)
	}
	if got := r.DisplayName(r.ConstructUnbound(box)); got != "Box<>" {
		t.Fatalf("unbound display = %q", got)
	}
}
