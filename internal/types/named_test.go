package types

import (
	"testing"

	"phlox/internal/source"
	"phlox/internal/symbols"
)

func TestOriginalDefinitionIdempotent(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	inst, err := r.Construct(box, []TypeArg{intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	def := r.OriginalDefinition(inst)
	if def != box {
		t.Fatalf("original definition must be the declared type")
	}
	if r.OriginalDefinition(def) != def {
		t.Fatalf("original definition must be idempotent")
	}
	if r.ConstructedFrom(box) != box {
		t.Fatalf("a definition is its own ConstructedFrom")
	}
}

func TestEnumUnderlying(t *testing.T) {
	r := NewRegistry(nil, nil)
	e := r.Declare("Color", TypeKindEnum, NoNamedID, source.Span{})
	r.SetEnumBase(e, r.Types.Builtins().Int)
	if got := r.EnumUnderlying(e); got != r.Types.Builtins().Int {
		t.Fatalf("enum underlying = %d", got)
	}
	cls := r.Declare("NotEnum", TypeKindClass, NoNamedID, source.Span{})
	if r.EnumUnderlying(cls) != NoTypeID {
		t.Fatalf("underlying type is enum-only")
	}
}

func TestEnumUnderlyingSubstituted(t *testing.T) {
	r := NewRegistry(nil, nil)
	e := r.Declare("Tagged", TypeKindEnum, NoNamedID, source.Span{})
	tp := r.AddTypeParam(e, "T")
	r.SetEnumBase(e, tp)

	inst, err := r.Construct(e, []TypeArg{intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if got := r.EnumUnderlying(inst); got != r.Types.Builtins().Int {
		t.Fatalf("substituted underlying = %d", got)
	}
}

func TestLayoutReadThroughOrigin(t *testing.T) {
	r := NewRegistry(nil, nil)
	s := declareGeneric(t, r, "Packet", "T")
	r.SetLayout(s, TypeLayout{Kind: LayoutSequential, Pack: 1, Size: 16})

	inst, err := r.Construct(s, []TypeArg{intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	l, ok := r.Layout(inst)
	if !ok || l.Kind != LayoutSequential || l.Pack != 1 || l.Size != 16 {
		t.Fatalf("layout through origin = %+v %v", l, ok)
	}
	if _, ok := r.Layout(declareGeneric(t, r, "Free", "U")); ok {
		t.Fatalf("types without explicit layout report none")
	}
}

func TestMembersReadThroughOrigin(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	m := r.AddMember(box, "value", symbols.SymbolField, 0)
	inst, err := r.Construct(box, []TypeArg{intArg(r)})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	got := r.MembersOf(inst)
	if len(got) != 1 || got[0] != m {
		t.Fatalf("constructed members come from the definition: %v", got)
	}
}
