package manifest

import (
	"strings"
	"testing"

	"phlox/internal/source"
	"phlox/internal/types"
)

func newRefRegistry(t *testing.T) (*types.Registry, Scope) {
	t.Helper()
	r := types.NewRegistry(nil, nil)
	box := r.Declare("Box", types.TypeKindClass, types.NoNamedID, source.Span{})
	tp := r.AddTypeParam(box, "T")
	plain := r.Declare("Plain", types.TypeKindClass, types.NoNamedID, source.Span{})
	scope := Scope{
		Params: map[string]types.TypeID{"T": tp},
		Named:  map[string]types.NamedID{"Box": box, "Plain": plain},
	}
	return r, scope
}

func TestParseTypeRefPrimitives(t *testing.T) {
	r, scope := newRefRegistry(t)
	b := r.Types.Builtins()
	cases := map[string]types.TypeID{
		"int":    b.Int,
		"float":  b.Float,
		"bool":   b.Bool,
		"string": b.String,
		"mixed":  b.Mixed,
		"null":   b.Null,
	}
	for src, want := range cases {
		arg, err := ParseTypeRef(r, scope, src)
		if err != nil {
			t.Fatalf("ParseTypeRef(%q): %v", src, err)
		}
		if arg.Type != want || arg.Mods != types.ModNone {
			t.Fatalf("ParseTypeRef(%q) = %+v, want type %d", src, arg, want)
		}
	}
}

func TestParseTypeRefNullableAndArray(t *testing.T) {
	r, scope := newRefRegistry(t)
	b := r.Types.Builtins()

	arg, err := ParseTypeRef(r, scope, "?int")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	if arg.Type != b.Int || arg.Mods != types.ModNullable {
		t.Fatalf("nullable int = %+v", arg)
	}

	arg, err = ParseTypeRef(r, scope, "int[][]")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	inner := r.Types.MustLookup(arg.Type)
	if inner.Kind != types.KindArray {
		t.Fatalf("int[][] outer kind = %v", inner.Kind)
	}
	elem := r.Types.MustLookup(inner.Elem)
	if elem.Kind != types.KindArray || elem.Elem != b.Int {
		t.Fatalf("int[][] inner = %+v", elem)
	}
}

func TestParseTypeRefParamAndNamed(t *testing.T) {
	r, scope := newRefRegistry(t)

	arg, err := ParseTypeRef(r, scope, "T")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	if arg.Type != scope.Params["T"] {
		t.Fatalf("T resolved to %d, want %d", arg.Type, scope.Params["T"])
	}

	arg, err = ParseTypeRef(r, scope, "Plain")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	if r.Types.NamedOf(arg.Type) != scope.Named["Plain"] {
		t.Fatalf("Plain resolved to %d", arg.Type)
	}
}

func TestParseTypeRefGenericConstructsOnce(t *testing.T) {
	r, scope := newRefRegistry(t)

	first, err := ParseTypeRef(r, scope, "Box<int>")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	second, err := ParseTypeRef(r, scope, " Box < int > ")
	if err != nil {
		t.Fatalf("ParseTypeRef: %v", err)
	}
	if first.Type != second.Type {
		t.Fatalf("identical generic refs produced distinct types: %d vs %d", first.Type, second.Type)
	}
	inst := r.Types.NamedOf(first.Type)
	if r.ConstructedFrom(inst) != scope.Named["Box"] {
		t.Fatalf("Box<int> not constructed from Box")
	}
}

func TestParseTypeRefErrors(t *testing.T) {
	r, scope := newRefRegistry(t)
	for _, src := range []string{
		"",
		"Unknown",
		"Box<int",
		"Box<int;>",
		"int extra",
		"Plain<int>",
		"Box<int, int>",
	} {
		if _, err := ParseTypeRef(r, scope, src); err == nil {
			t.Fatalf("ParseTypeRef(%q) succeeded, want error", src)
		}
	}
}

func TestParseTypeRefTrailingError(t *testing.T) {
	r, scope := newRefRegistry(t)
	_, err := ParseTypeRef(r, scope, "int!")
	if err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("trailing junk error = %v", err)
	}
}
