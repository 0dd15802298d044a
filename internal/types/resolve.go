package types

// Guard is the set of named types currently being resolved, threaded
// through recursive walks. Recursion that reaches a type already in the
// set stops instead of recursing unboundedly; cycles are a controlled
// absence, never a deadlock.
type Guard map[NamedID]struct{}

func (g Guard) enter(id NamedID) bool {
	if _, busy := g[id]; busy {
		return false
	}
	g[id] = struct{}{}
	return true
}

func (g Guard) leave(id NamedID) { delete(g, id) }

// BaseType resolves the base type of a named type. For constructed and
// nested-rebased types the definition's declared base is seen through
// the substitution in effect. Missing bases resolve to (NoNamedID,
// false), a legitimate state for root types and malformed imports.
//
// The result is memoized; racing computations are idempotent and
// converge on the same value.
func (r *Registry) BaseType(id NamedID) (NamedID, bool) {
	r.mu.RLock()
	memo, ok := r.baseMemo[id]
	r.mu.RUnlock()
	if ok {
		return memo, memo.IsValid()
	}

	rec := r.get(id)
	if rec == nil {
		return NoNamedID, false
	}
	def := r.get(rec.origin)
	if def == nil || def.Base == NoTypeID {
		return NoNamedID, false
	}
	base := def.Base
	if rec.Subst != nil {
		base = rec.Subst.Apply(r, base)
	}
	resolved := r.Types.NamedOf(base)

	r.mu.Lock()
	r.baseMemo[id] = resolved
	r.mu.Unlock()
	return resolved, resolved.IsValid()
}

// DeclaredInterfaces returns the direct interface list of a named type,
// seen through the substitution in effect. The guard breaks reference
// cycles between mutually-inheriting interfaces: a type currently being
// expanded contributes nothing instead of recursing.
func (r *Registry) DeclaredInterfaces(id NamedID, guard Guard) []NamedID {
	if guard == nil {
		guard = make(Guard)
	}
	if !guard.enter(id) {
		return nil
	}
	defer guard.leave(id)
	return r.declaredInterfaces(id)
}

func (r *Registry) declaredInterfaces(id NamedID) []NamedID {
	rec := r.get(id)
	if rec == nil {
		return nil
	}
	def := r.get(rec.origin)
	if def == nil || len(def.Interfaces) == 0 {
		return nil
	}
	out := make([]NamedID, 0, len(def.Interfaces))
	for _, iface := range def.Interfaces {
		t := iface
		if rec.Subst != nil {
			t = rec.Subst.Apply(r, t)
		}
		if n := r.Types.NamedOf(t); n.IsValid() {
			out = append(out, n)
		}
	}
	return out
}

// AllInterfaces returns the transitive interface closure of a named
// type: declared interfaces, their bases, and the interfaces of every
// base class. Order is deterministic (declaration order, outside-in);
// each interface appears once. Cycles are broken by the guard.
func (r *Registry) AllInterfaces(id NamedID) []NamedID {
	var out []NamedID
	seen := make(map[NamedID]struct{})
	guard := make(Guard)
	r.collectInterfaces(id, guard, seen, &out)
	return out
}

func (r *Registry) collectInterfaces(id NamedID, guard Guard, seen map[NamedID]struct{}, out *[]NamedID) {
	if !guard.enter(id) {
		return
	}
	defer guard.leave(id)

	for _, iface := range r.declaredInterfaces(id) {
		if _, dup := seen[iface]; !dup {
			seen[iface] = struct{}{}
			*out = append(*out, iface)
		}
		r.collectInterfaces(iface, guard, seen, out)
	}
	if base, ok := r.BaseType(id); ok {
		r.collectInterfaces(base, guard, seen, out)
	}
}

// IsConditional reports whether the type carries the
// conditional-compilation attribute, inherited along the base chain.
// Base chains are acyclic by construction, but a malformed import can
// still close a loop; the guard turns that into "not conditional".
func (r *Registry) IsConditional(id NamedID) bool {
	return r.isConditional(id, make(Guard))
}

func (r *Registry) isConditional(id NamedID, guard Guard) bool {
	if !guard.enter(id) {
		return false
	}
	defer guard.leave(id)

	def := r.get(r.OriginalDefinition(id))
	if def == nil {
		return false
	}
	if def.Conditional {
		return true
	}
	base, ok := r.BaseType(id)
	if !ok {
		return false
	}
	return r.isConditional(base, guard)
}
