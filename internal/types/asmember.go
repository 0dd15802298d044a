package types

// rebaseKey is a comparable cache key for nested-type rebasing.
type rebaseKey struct {
	Def   NamedID
	Owner NamedID
}

// AsMember produces the symbol representing the nested definition as it
// appears inside the (possibly constructed) owner.
//
// The contract is assertion-level: the nested type must be its own
// definition and the owner must be some instantiation of the type that
// originally contains it. A violation is a compiler bug, so it panics
// rather than returning a recoverable error.
//
// Rebasing under a plain definition is the identity operation. The
// result is cached per (definition, owner) pair, so repeated rebasing
// under the same owner preserves symbol identity.
func (r *Registry) AsMember(nested, owner NamedID) NamedID {
	d := r.get(nested)
	o := r.get(owner)
	if d == nil || o == nil || !d.IsDefinition() {
		panic("types: AsMember requires a nested type definition")
	}
	if r.OriginalDefinition(owner) != r.OriginalDefinition(d.Containing) {
		panic("types: AsMember owner is not an instantiation of the declaring type")
	}
	if o.IsDefinition() {
		return nested
	}

	key := rebaseKey{Def: nested, Owner: owner}
	r.mu.RLock()
	id, ok := r.rebased[key]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.rebased[key]; ok {
		return id
	}
	id = r.appendUnlocked(Named{
		Name:       d.Name,
		Kind:       d.Kind,
		Prov:       ProvNested,
		Sym:        d.Sym,
		Containing: owner,
		Decl:       d.Decl,
		// The enclosing map carries over as-is: the nested type's own
		// parameters are not mapped by it and stay unsubstituted.
		Subst:           o.Subst,
		origin:          nested,
		constructedFrom: nested,
	})
	r.rebased[key] = id
	return id
}
