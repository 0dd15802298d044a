package types

import "phlox/internal/symbols"

// Well-known member names.
const (
	// CtorName is the canonical constructor method name.
	CtorName = "__construct"
	// InvokeName is the delegate invoke member name.
	InvokeName = "__invoke"
)

// Constructors returns every constructor of the type, instance and
// static, in declaration order. Inherited constructors are not
// included. An empty result is fine: imported definitions may
// legitimately declare none.
func (r *Registry) Constructors(id NamedID) []symbols.SymbolID {
	return r.filterCtors(id, func(flags symbols.SymbolFlags) bool { return true })
}

// InstanceConstructors returns the non-static constructors.
func (r *Registry) InstanceConstructors(id NamedID) []symbols.SymbolID {
	return r.filterCtors(id, func(flags symbols.SymbolFlags) bool {
		return flags&symbols.SymbolFlagStatic == 0
	})
}

// StaticConstructors returns the static constructors.
func (r *Registry) StaticConstructors(id NamedID) []symbols.SymbolID {
	return r.filterCtors(id, func(flags symbols.SymbolFlags) bool {
		return flags&symbols.SymbolFlagStatic != 0
	})
}

func (r *Registry) filterCtors(id NamedID, keep func(symbols.SymbolFlags) bool) []symbols.SymbolID {
	var out []symbols.SymbolID
	for _, m := range r.MembersOf(id) {
		sym := r.Syms.Get(m)
		if sym == nil || sym.Kind != symbols.SymbolMethod || sym.Name != r.ctorName {
			continue
		}
		if keep(sym.Flags) {
			out = append(out, m)
		}
	}
	return out
}

// DelegateInvokeMethod returns the invoke member of a delegate type.
// Non-delegates resolve to NoSymbolID, as do delegates with zero or
// more than one member carrying the invoke name: ambiguity in an
// imported definition is tolerated, not raised.
func (r *Registry) DelegateInvokeMethod(id NamedID) symbols.SymbolID {
	if r.TypeKindOf(id) != TypeKindDelegate {
		return symbols.NoSymbolID
	}
	var found symbols.SymbolID
	for _, m := range r.MembersOf(id) {
		sym := r.Syms.Get(m)
		if sym == nil || sym.Name != r.invokeName {
			continue
		}
		if found.IsValid() {
			return symbols.NoSymbolID
		}
		found = m
	}
	return found
}

// ResolveCtor performs the language's two-tier constructor lookup: a
// member named by the canonical constructor name wins; failing that, a
// member sharing the type's own name is the legacy-style constructor.
// With recursive set, an unresolved lookup continues into the base
// chain. The fallback order is part of the observed contract and must
// not be reordered.
func (r *Registry) ResolveCtor(id NamedID, recursive bool) symbols.SymbolID {
	return r.resolveCtor(id, recursive, make(Guard))
}

func (r *Registry) resolveCtor(id NamedID, recursive bool, guard Guard) symbols.SymbolID {
	if !guard.enter(id) {
		return symbols.NoSymbolID
	}
	defer guard.leave(id)

	rec := r.get(id)
	if rec == nil {
		return symbols.NoSymbolID
	}
	for _, m := range r.MembersOf(id) {
		if sym := r.Syms.Get(m); sym != nil && sym.Name == r.ctorName {
			return m
		}
	}
	for _, m := range r.MembersOf(id) {
		if sym := r.Syms.Get(m); sym != nil && sym.Name == rec.Name {
			return m
		}
	}
	if !recursive {
		return symbols.NoSymbolID
	}
	base, ok := r.BaseType(id)
	if !ok {
		return symbols.NoSymbolID
	}
	return r.resolveCtor(base, recursive, guard)
}
