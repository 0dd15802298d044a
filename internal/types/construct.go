package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Usage errors returned by Construct. They always indicate a bug in the
// calling compiler phase, never bad user input.
var (
	// ErrNotDefinition: the receiver is not its own ConstructedFrom.
	// Constructing a construction directly is forbidden.
	ErrNotDefinition = errors.New("types: only generic definitions can be constructed")
	// ErrNotGeneric: the definition declares no type parameters.
	ErrNotGeneric = errors.New("types: cannot construct a type with arity 0")
	// ErrNilArgs: the argument list is absent (not merely empty).
	ErrNilArgs = errors.New("types: type argument list is nil")
	// ErrArgCount: the argument list length does not match the arity.
	ErrArgCount = errors.New("types: wrong number of type arguments")
)

// instKey is a comparable cache key for constructed types.
type instKey struct {
	Def     NamedID
	ArgsKey string
}

func (k instKey) String() string {
	return strconv.FormatUint(uint64(k.Def), 10) + "@" + k.ArgsKey
}

// Construct produces (or retrieves) the instantiation of a generic
// definition with the supplied arguments.
//
// When every argument is the corresponding parameter's own identity
// type, the definition itself is returned: reconstructing a definition
// with its own parameters is idempotent and referentially stable.
//
// Construction is lazy: no member binding happens here, which keeps
// cycles through not-yet-fully-bound definitions harmless. Two
// concurrent calls with the same arguments converge on one winning
// symbol that both callers receive.
func (r *Registry) Construct(def NamedID, args []TypeArg) (NamedID, error) {
	rec := r.get(def)
	if rec == nil || !rec.IsDefinition() || rec.constructedFrom != def {
		return NoNamedID, fmt.Errorf("%w (target %d)", ErrNotDefinition, def)
	}
	arity := len(rec.TypeParams)
	if arity == 0 {
		return NoNamedID, fmt.Errorf("%w (%s)", ErrNotGeneric, r.NameOf(def))
	}
	if args == nil {
		return NoNamedID, ErrNilArgs
	}
	if len(args) != arity {
		return NoNamedID, fmt.Errorf("%w: got %d, want %d", ErrArgCount, len(args), arity)
	}

	identity := true
	for i, a := range args {
		if a.Type != rec.TypeParams[i] || a.Mods != ModNone {
			identity = false
			break
		}
	}
	if identity {
		return def, nil
	}

	key := instKey{Def: def, ArgsKey: argsKey(args)}
	r.mu.RLock()
	id, ok := r.constructed[key]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	v, _, _ := r.flight.Do(key.String(), func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if id, ok := r.constructed[key]; ok {
			return id, nil
		}
		own := make([]TypeArg, len(args))
		copy(own, args)
		id := r.appendUnlocked(Named{
			Name:            rec.Name,
			Kind:            rec.Kind,
			Prov:            ProvConstructed,
			Sym:             rec.Sym,
			Containing:      rec.Containing,
			Decl:            rec.Decl,
			Args:            own,
			Subst:           NewSubst(rec.TypeParams, own),
			origin:          def,
			constructedFrom: def,
		})
		r.constructed[key] = id
		return id, nil
	})
	return v.(NamedID), nil
}

// ConstructUnbound returns the unbound form of a generic type: the
// construction of its original definition with a "missing" placeholder
// for every parameter. Calling it on a non-generic type is a no-op.
// Unbound types represent open generic references and must not be used
// for member binding.
func (r *Registry) ConstructUnbound(id NamedID) NamedID {
	arity := r.Arity(id)
	if arity == 0 {
		return id
	}
	missing := r.Types.Builtins().Missing
	args := make([]TypeArg, arity)
	for i := range args {
		args[i] = TypeArg{Type: missing}
	}
	inst, err := r.Construct(r.OriginalDefinition(id), args)
	if err != nil {
		// The original definition is constructible by definition of
		// arity > 0; reaching here is a registry corruption.
		panic(err)
	}
	return inst
}

// IsUnbound reports whether every type argument is the "missing"
// placeholder, i.e. the type is an open generic reference.
func (r *Registry) IsUnbound(id NamedID) bool {
	rec := r.get(id)
	if rec == nil || rec.Prov != ProvConstructed || len(rec.Args) == 0 {
		return false
	}
	missing := r.Types.Builtins().Missing
	for _, a := range rec.Args {
		if a.Type != missing {
			return false
		}
	}
	return true
}
