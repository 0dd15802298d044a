package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"phlox/internal/source"
	"phlox/internal/symbols"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Missing TypeID
	Null    TypeID
	Bool    TypeID
	Int     TypeID
	Float   TypeID
	String  TypeID
	Mixed   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// Unlike names and symbols, type expressions keep being interned after
// the binding phase: substitution at query time materializes array and
// named-reference descriptors on demand, so the interner is guarded for
// concurrent use.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[Type]TypeID
	params   []TypeParamInfo
	builtins Builtins
}

// TypeParamInfo stores metadata about a generic type parameter.
type TypeParamInfo struct {
	Name  source.StringID
	Owner NamedID
	Index uint32
	Sym   symbols.SymbolID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:  make(map[Type]TypeID, 64),
		params: []TypeParamInfo{{}}, // reserve 0 as invalid sentinel
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Missing = in.Intern(Type{Kind: KindMissing})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Mixed = in.Intern(Type{Kind: KindMixed})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor without consulting the index first.
// Callers must hold the write lock (NewInterner runs before publication).
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// NamedRef returns the type expression referencing a named type.
func (in *Interner) NamedRef(n NamedID) TypeID {
	if n == NoNamedID {
		return NoTypeID
	}
	return in.Intern(Type{Kind: KindNamed, Payload: uint32(n)})
}

// NamedOf extracts the named type referenced by a type expression,
// or NoNamedID when the expression is not a named reference.
func (in *Interner) NamedOf(id TypeID) NamedID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindNamed {
		return NoNamedID
	}
	return NamedID(tt.Payload)
}

// RegisterTypeParam allocates a fresh generic-parameter descriptor.
// Every declared parameter gets its own slot: two parameters are never
// the same type even when their owner and index collide across reloads.
func (in *Interner) RegisterTypeParam(name source.StringID, owner NamedID, index uint32, sym symbols.SymbolID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	lenParams, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("type param index overflow: %w", err))
	}
	in.params = append(in.params, TypeParamInfo{
		Name:  name,
		Owner: owner,
		Index: index,
		Sym:   sym,
	})
	return in.internRaw(Type{Kind: KindTypeParam, Payload: lenParams})
}

// TypeParamInfo returns metadata for the provided generic parameter.
func (in *Interner) TypeParamInfo(id TypeID) (TypeParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam {
		return TypeParamInfo{}, false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return TypeParamInfo{}, false
	}
	return in.params[tt.Payload], true
}
