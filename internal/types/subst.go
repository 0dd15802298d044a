package types

import (
	"strconv"
	"strings"
	"sync"
)

// Subst is an immutable mapping from type parameters to type arguments
// (with per-argument modifiers). Applying it materializes a constructed
// type's shape from its definition.
//
// The memo converges racing computations: concurrent Apply calls may
// both compute a value, but the computation is idempotent and both
// callers observe the same result.
type Subst struct {
	keys []TypeID // parameter identity types, declaration order
	vals []TypeArg

	mu   sync.Mutex
	memo map[TypeID]TypeID
}

// NewSubst pairs parameters with arguments positionally. The two slices
// must have equal length; Construct validates that before calling here.
func NewSubst(params []TypeID, args []TypeArg) *Subst {
	s := &Subst{
		keys: make([]TypeID, len(params)),
		vals: make([]TypeArg, len(args)),
	}
	copy(s.keys, params)
	copy(s.vals, args)
	return s
}

// Len returns the number of mapped parameters.
func (s *Subst) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Lookup returns the argument mapped to the given parameter type.
func (s *Subst) Lookup(param TypeID) (TypeArg, bool) {
	if s == nil {
		return TypeArg{}, false
	}
	for i, k := range s.keys {
		if k == param {
			return s.vals[i], true
		}
	}
	return TypeArg{}, false
}

// Apply substitutes through a type expression, interning whatever new
// descriptors the walk produces. Parameters the map does not cover are
// left untouched. Modifiers on a mapped argument do not propagate into
// expression positions; they only matter on the argument list itself.
func (s *Subst) Apply(r *Registry, id TypeID) TypeID {
	if s == nil || r == nil || id == NoTypeID {
		return id
	}
	s.mu.Lock()
	if s.memo != nil {
		if out, ok := s.memo[id]; ok {
			s.mu.Unlock()
			return out
		}
	}
	s.mu.Unlock()

	out := s.applyNoMemo(r, id)

	s.mu.Lock()
	if s.memo == nil {
		s.memo = make(map[TypeID]TypeID, 16)
	}
	s.memo[id] = out
	s.mu.Unlock()
	return out
}

func (s *Subst) applyNoMemo(r *Registry, id TypeID) TypeID {
	tt, ok := r.Types.Lookup(id)
	if !ok {
		return id
	}

	switch tt.Kind {
	case KindTypeParam:
		if arg, ok := s.Lookup(id); ok && arg.Type != NoTypeID {
			return arg.Type
		}
		return id

	case KindArray:
		elem := s.Apply(r, tt.Elem)
		if elem == tt.Elem {
			return id
		}
		return r.Types.Intern(MakeArray(elem))

	case KindNamed:
		named := NamedID(tt.Payload)
		args := r.TypeArguments(named)
		if len(args) == 0 {
			return id
		}
		newArgs := make([]TypeArg, len(args))
		changed := false
		for i, a := range args {
			newArgs[i] = TypeArg{Type: s.Apply(r, a.Type), Mods: a.Mods}
			changed = changed || newArgs[i].Type != a.Type
		}
		if !changed {
			return id
		}
		inst, err := r.Construct(r.ConstructedFrom(named), newArgs)
		if err != nil {
			return id
		}
		return r.Types.NamedRef(inst)

	default:
		return id
	}
}

// ApplyArgs substitutes through an argument list, preserving modifiers.
func (s *Subst) ApplyArgs(r *Registry, args []TypeArg) []TypeArg {
	if s == nil || len(args) == 0 {
		return args
	}
	out := make([]TypeArg, len(args))
	changed := false
	for i, a := range args {
		out[i] = TypeArg{Type: s.Apply(r, a.Type), Mods: a.Mods}
		changed = changed || out[i].Type != a.Type
	}
	if !changed {
		return args
	}
	return out
}

// Compose builds the map equivalent to applying s first and outer
// second: Compose(s, outer).Apply(x) == outer.Apply(s.Apply(x)). Every
// parameter s maps keeps its slot with the outer map applied to its
// argument; parameters only outer maps are appended, which is what
// rebasing a nested generic under a constructed owner needs.
func Compose(r *Registry, s, outer *Subst) *Subst {
	if s == nil {
		return outer
	}
	if outer == nil {
		return s
	}
	keys := make([]TypeID, 0, len(s.keys)+len(outer.keys))
	vals := make([]TypeArg, 0, len(s.vals)+len(outer.vals))
	keys = append(keys, s.keys...)
	for _, v := range s.vals {
		vals = append(vals, TypeArg{Type: outer.Apply(r, v.Type), Mods: v.Mods})
	}
	for i, k := range outer.keys {
		if _, shadowed := s.Lookup(k); shadowed {
			continue
		}
		keys = append(keys, k)
		vals = append(vals, outer.vals[i])
	}
	return &Subst{keys: keys, vals: vals}
}

// Equal reports whether two maps carry the same parameters and the same
// argument/modifier pairs. Together with reference-identical original
// definitions this is the symbol identity relation.
func (a *Subst) Equal(b *Subst) bool {
	if a.Len() != b.Len() {
		return false
	}
	if a == nil || b == nil {
		return a.Len() == b.Len()
	}
	for i, k := range a.keys {
		arg, ok := b.Lookup(k)
		if !ok || arg != a.vals[i] {
			return false
		}
	}
	return true
}

// argsKey produces a deterministic cache key for an argument list.
// Go maps cannot use slices as keys, so a stable string stands in.
func argsKey(args []TypeArg) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg.Type), 10))
		if arg.Mods != ModNone {
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(arg.Mods), 10))
		}
	}
	return b.String()
}
