package types

import "testing"

func TestSubstLookupAndApply(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	tp := r.TypeParameters(box)[0]
	intID := r.Types.Builtins().Int

	sub := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID}})
	if arg, ok := sub.Lookup(tp); !ok || arg.Type != intID {
		t.Fatalf("lookup of mapped parameter failed: %v %v", arg, ok)
	}
	if got := sub.Apply(r, tp); got != intID {
		t.Fatalf("apply on the parameter must yield the argument, got %d", got)
	}
	// Unmapped expressions pass through untouched.
	if got := sub.Apply(r, r.Types.Builtins().String); got != r.Types.Builtins().String {
		t.Fatalf("apply must leave unrelated types alone")
	}
}

func TestSubstAppliesThroughArrays(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	tp := r.TypeParameters(box)[0]
	intID := r.Types.Builtins().Int

	arr := r.Types.Intern(MakeArray(tp))
	sub := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID}})
	got := r.Types.MustLookup(sub.Apply(r, arr))
	if got.Kind != KindArray || got.Elem != intID {
		t.Fatalf("array substitution produced %+v", got)
	}
}

func TestSubstAppliesThroughNamedReferences(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	list := declareGeneric(t, r, "List", "E")
	tp := r.TypeParameters(box)[0]
	intID := r.Types.Builtins().Int

	// List<T> as a type expression inside Box's shape.
	listOfT, err := r.Construct(list, []TypeArg{{Type: tp}})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	expr := r.Types.NamedRef(listOfT)

	sub := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID}})
	got := r.Types.NamedOf(sub.Apply(r, expr))
	if !got.IsValid() {
		t.Fatalf("substitution must keep the named reference")
	}
	args := r.TypeArguments(got)
	if len(args) != 1 || args[0].Type != intID {
		t.Fatalf("List<T> seen through T=int must be List<int>, got %v", args)
	}
	// The result reuses the construction cache.
	direct, err := r.Construct(list, []TypeArg{{Type: intID}})
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if got != direct {
		t.Fatalf("substituted instantiation must be identical to the direct one")
	}
}

func TestComposeIsAssociativeInEffect(t *testing.T) {
	r := NewRegistry(nil, nil)
	outerDef := declareGeneric(t, r, "Outer", "A")
	innerDef := declareGeneric(t, r, "Inner", "B")
	a := r.TypeParameters(outerDef)[0]
	b := r.TypeParameters(innerDef)[0]
	intID := r.Types.Builtins().Int

	inner := NewSubst([]TypeID{b}, []TypeArg{{Type: a}}) // B -> A
	outer := NewSubst([]TypeID{a}, []TypeArg{{Type: intID}})

	composed := Compose(r, inner, outer)
	exprs := []TypeID{b, a, r.Types.Intern(MakeArray(b))}
	for _, e := range exprs {
		sequential := outer.Apply(r, inner.Apply(r, e))
		if got := composed.Apply(r, e); got != sequential {
			t.Fatalf("composed map diverges on %d: %d vs %d", e, got, sequential)
		}
	}
}

func TestSubstEqual(t *testing.T) {
	r := NewRegistry(nil, nil)
	box := declareGeneric(t, r, "Box", "T")
	tp := r.TypeParameters(box)[0]
	intID := r.Types.Builtins().Int

	a := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID}})
	b := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID}})
	c := NewSubst([]TypeID{tp}, []TypeArg{{Type: intID, Mods: ModNullable}})
	if !a.Equal(b) {
		t.Fatalf("identical maps must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("modifier differences must break equality")
	}
	var nilSub *Subst
	if !nilSub.Equal(nil) {
		t.Fatalf("two empty maps are equal")
	}
	if nilSub.Equal(a) {
		t.Fatalf("empty and non-empty maps differ")
	}
}

func TestArgsKeyIsStable(t *testing.T) {
	args := []TypeArg{{Type: 7}, {Type: 9, Mods: ModNullable}}
	if argsKey(args) != argsKey([]TypeArg{{Type: 7}, {Type: 9, Mods: ModNullable}}) {
		t.Fatalf("equal argument lists must produce equal keys")
	}
	if argsKey(args) == argsKey([]TypeArg{{Type: 9, Mods: ModNullable}, {Type: 7}}) {
		t.Fatalf("order must matter")
	}
	if argsKey(nil) != "" {
		t.Fatalf("empty list must key to the empty string")
	}
}
