package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/sync/singleflight"

	"phlox/internal/source"
	"phlox/internal/symbols"
)

// NamedID identifies a named type inside the registry arena.
type NamedID uint32

// NoNamedID marks the absence of a named type.
const NoNamedID NamedID = 0

// IsValid reports whether the ID refers to an allocated named type.
func (id NamedID) IsValid() bool { return id != NoNamedID }

// TypeKind classifies named-type declarations.
type TypeKind uint8

const (
	TypeKindInvalid TypeKind = iota
	TypeKindClass
	TypeKindInterface
	TypeKindStruct
	TypeKindEnum
	TypeKindDelegate
	// TypeKindError stands in for unresolvable type references so the
	// rest of the graph can keep a well-formed shape.
	TypeKindError
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindClass:
		return "class"
	case TypeKindInterface:
		return "interface"
	case TypeKindStruct:
		return "struct"
	case TypeKindEnum:
		return "enum"
	case TypeKindDelegate:
		return "delegate"
	case TypeKindError:
		return "error"
	default:
		return "invalid"
	}
}

// Provenance tags the closed set of named-type variants.
type Provenance uint8

const (
	// ProvDefinition is a declared (or imported) generic definition or
	// plain type; it is its own original definition.
	ProvDefinition Provenance = iota
	// ProvConstructed is the result of substituting type arguments into
	// a generic definition.
	ProvConstructed
	// ProvNested represents a nested definition viewed through a
	// constructed enclosing type.
	ProvNested
	// ProvSynthesized marks compiler-generated types.
	ProvSynthesized
)

// LayoutKind describes how instance fields are laid out in memory.
type LayoutKind uint8

const (
	LayoutNone LayoutKind = iota
	LayoutAuto
	LayoutSequential
	LayoutExplicit
)

// TypeLayout captures explicit layout metadata imported with a type.
type TypeLayout struct {
	Kind LayoutKind
	Pack uint8
	Size uint32
}

// Named is the shared record behind every named-type variant. A record
// is immutable once the binding phase publishes the registry; variants
// differ only in which fields are populated (see Provenance).
type Named struct {
	Name       source.StringID
	Kind       TypeKind
	Prov       Provenance
	Sym        symbols.SymbolID
	Containing NamedID
	Decl       source.Span

	// Definition shape. Empty on constructed and nested records, which
	// read these through their original definition.
	TypeParams  []TypeID
	Base        TypeID   // declared, unsubstituted
	Interfaces  []TypeID // declared, unsubstituted
	EnumBase    TypeID
	Conditional bool
	Members     []symbols.SymbolID

	// Instantiation shape.
	Args  []TypeArg // constructed only, len == Arity of the definition
	Subst *Subst    // nil for plain definitions

	origin          NamedID // original definition; self for definitions
	constructedFrom NamedID // the definition this was built from; self if not constructed
}

// IsDefinition reports whether the record is its own original definition.
func (n *Named) IsDefinition() bool { return n.Prov == ProvDefinition || n.Prov == ProvSynthesized }

// Registry owns the named-type arena and the caches that keep
// construction and rebasing referentially stable.
//
// Declarations are registered during the single-threaded binding phase.
// Everything else (construction, rebasing, lazy resolution) is safe
// under concurrent access: records are immutable once created, and the
// caches converge racing computations onto a single winner.
type Registry struct {
	mu    sync.RWMutex
	arena []Named

	Types *Interner
	Syms  *symbols.Table

	layouts map[NamedID]TypeLayout

	flight      singleflight.Group
	constructed map[instKey]NamedID
	rebased     map[rebaseKey]NamedID
	baseMemo    map[NamedID]NamedID

	// Well-known names, interned up front so query-time lookups never
	// write to the string interner.
	ctorName   source.StringID
	invokeName source.StringID
}

// NewRegistry builds an empty registry over the given interner and
// symbol table. Nil collaborators are allocated fresh.
func NewRegistry(in *Interner, syms *symbols.Table) *Registry {
	if syms == nil {
		syms = symbols.NewTable(symbols.Hints{}, nil)
	}
	r := &Registry{
		arena:       make([]Named, 1), // slot 0 = NoNamedID sentinel
		Syms:        syms,
		layouts:     make(map[NamedID]TypeLayout),
		constructed: make(map[instKey]NamedID),
		rebased:     make(map[rebaseKey]NamedID),
		baseMemo:    make(map[NamedID]NamedID),
	}
	if in == nil {
		in = NewInterner()
	}
	r.Types = in
	r.ctorName = syms.Strings.Intern(CtorName)
	r.invokeName = syms.Strings.Intern(InvokeName)
	return r
}

// Declare registers a new type definition and its symbol. Binding-phase
// only; shape setters below fill the record in before publication.
func (r *Registry) Declare(name string, kind TypeKind, containing NamedID, span source.Span) NamedID {
	nameID := r.Syms.Strings.Intern(name)
	var ownerSym symbols.SymbolID
	if containing.IsValid() {
		ownerSym = r.arena[containing].Sym
	}
	sym := r.Syms.New(symbols.Symbol{
		Name:  nameID,
		Kind:  symbols.SymbolType,
		Owner: ownerSym,
		Span:  span,
	})
	id := r.appendLocked(Named{
		Name:       nameID,
		Kind:       kind,
		Prov:       ProvDefinition,
		Sym:        sym,
		Containing: containing,
		Decl:       span,
	})
	rec := &r.arena[id]
	rec.origin = id
	rec.constructedFrom = id
	return id
}

// AddTypeParam appends a declared type parameter to a definition and
// returns its identity type.
func (r *Registry) AddTypeParam(def NamedID, name string) TypeID {
	rec := r.get(def)
	if rec == nil || !rec.IsDefinition() {
		panic("types: AddTypeParam requires a type definition")
	}
	nameID := r.Syms.Strings.Intern(name)
	index, err := safecast.Conv[uint32](len(rec.TypeParams))
	if err != nil {
		panic(fmt.Errorf("type parameter count overflow: %w", err))
	}
	sym := r.Syms.New(symbols.Symbol{
		Name:  nameID,
		Kind:  symbols.SymbolTypeParam,
		Owner: rec.Sym,
	})
	tp := r.Types.RegisterTypeParam(nameID, def, index, sym)
	rec.TypeParams = append(rec.TypeParams, tp)
	return tp
}

// SetBase records the declared (unsubstituted) base type expression.
func (r *Registry) SetBase(def NamedID, base TypeID) {
	if rec := r.get(def); rec != nil {
		rec.Base = base
	}
}

// AddInterface appends a declared (unsubstituted) interface reference.
func (r *Registry) AddInterface(def NamedID, iface TypeID) {
	if rec := r.get(def); rec != nil {
		rec.Interfaces = append(rec.Interfaces, iface)
	}
}

// SetEnumBase records the underlying type of an enum definition.
func (r *Registry) SetEnumBase(def NamedID, underlying TypeID) {
	if rec := r.get(def); rec != nil {
		rec.EnumBase = underlying
	}
}

// SetConditional marks a definition as carrying the
// conditional-compilation attribute.
func (r *Registry) SetConditional(def NamedID, v bool) {
	if rec := r.get(def); rec != nil {
		rec.Conditional = v
	}
}

// SetLayout stores explicit layout metadata for a definition.
func (r *Registry) SetLayout(def NamedID, layout TypeLayout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if layout.Kind == LayoutNone {
		delete(r.layouts, def)
		return
	}
	r.layouts[def] = layout
}

// AddMember registers a member symbol owned by the definition. The
// member is opaque to the type core; only its name, kind and flags
// participate in the lookups this package performs.
func (r *Registry) AddMember(def NamedID, name string, kind symbols.SymbolKind, flags symbols.SymbolFlags) symbols.SymbolID {
	rec := r.get(def)
	if rec == nil || !rec.IsDefinition() {
		panic("types: AddMember requires a type definition")
	}
	sym := r.Syms.New(symbols.Symbol{
		Name:  r.Syms.Strings.Intern(name),
		Kind:  kind,
		Owner: rec.Sym,
		Flags: flags,
	})
	rec.Members = append(rec.Members, sym)
	return sym
}

// appendLocked allocates a record under the write lock.
func (r *Registry) appendLocked(n Named) NamedID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendUnlocked(n)
}

func (r *Registry) appendUnlocked(n Named) NamedID {
	lenArena, err := safecast.Conv[uint32](len(r.arena))
	if err != nil {
		panic(fmt.Errorf("named arena overflow: %w", err))
	}
	id := NamedID(lenArena)
	r.arena = append(r.arena, n)
	return id
}

// get returns the record for id, nil when invalid. The returned pointer
// stays valid across arena growth because records are never mutated
// after publication.
func (r *Registry) get(id NamedID) *Named {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !id.IsValid() || int(id) >= len(r.arena) {
		return nil
	}
	return &r.arena[id]
}

// Get exposes the shared record for inspection; nil for invalid IDs.
func (r *Registry) Get(id NamedID) *Named { return r.get(id) }

// Len returns the number of allocated records, counting the sentinel.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.arena)
}

// OriginalDefinition returns the original definition of a named type;
// the relation is idempotent.
func (r *Registry) OriginalDefinition(id NamedID) NamedID {
	rec := r.get(id)
	if rec == nil {
		return NoNamedID
	}
	return rec.origin
}

// ConstructedFrom returns the generic definition a constructed type was
// built from, or the type itself when it is not constructed.
func (r *Registry) ConstructedFrom(id NamedID) NamedID {
	rec := r.get(id)
	if rec == nil {
		return NoNamedID
	}
	return rec.constructedFrom
}

// Arity returns the number of type parameters the original definition
// declares.
func (r *Registry) Arity(id NamedID) int {
	return len(r.TypeParameters(id))
}

// TypeParameters always reads from the original definition, never from
// an instantiated record.
func (r *Registry) TypeParameters(id NamedID) []TypeID {
	rec := r.get(id)
	if rec == nil {
		return nil
	}
	if rec.origin != id {
		rec = r.get(rec.origin)
		if rec == nil {
			return nil
		}
	}
	return rec.TypeParams
}

// TypeArguments returns the supplied arguments of a constructed type,
// empty for definitions.
func (r *Registry) TypeArguments(id NamedID) []TypeArg {
	rec := r.get(id)
	if rec == nil {
		return nil
	}
	return rec.Args
}

// IsGeneric reports whether the type's original definition declares
// type parameters.
func (r *Registry) IsGeneric(id NamedID) bool {
	return r.Arity(id) > 0
}

// IsInterface reports whether the named type is an interface.
func (r *Registry) IsInterface(id NamedID) bool {
	rec := r.get(id)
	return rec != nil && rec.Kind == TypeKindInterface
}

// TypeKindOf returns the declaration kind of a named type.
func (r *Registry) TypeKindOf(id NamedID) TypeKind {
	rec := r.get(id)
	if rec == nil {
		return TypeKindInvalid
	}
	return rec.Kind
}

// NameOf returns the declared name of a named type.
func (r *Registry) NameOf(id NamedID) string {
	rec := r.get(id)
	if rec == nil {
		return ""
	}
	s, _ := r.Syms.Strings.Lookup(rec.Name)
	return s
}

// ContainingOf returns the enclosing named type; for nested-rebased
// records this is the constructed owner they were rebased under.
func (r *Registry) ContainingOf(id NamedID) NamedID {
	rec := r.get(id)
	if rec == nil {
		return NoNamedID
	}
	return rec.Containing
}

// MembersOf returns the member symbols of the type, read through the
// original definition. Unbound types carry no usable members.
func (r *Registry) MembersOf(id NamedID) []symbols.SymbolID {
	if r.IsUnbound(id) {
		return nil
	}
	rec := r.get(r.OriginalDefinition(id))
	if rec == nil {
		return nil
	}
	return rec.Members
}

// EnumUnderlying returns the underlying type of an enum, substituted
// for constructed enums, NoTypeID for every other kind.
func (r *Registry) EnumUnderlying(id NamedID) TypeID {
	rec := r.get(id)
	if rec == nil || rec.Kind != TypeKindEnum {
		return NoTypeID
	}
	def := r.get(rec.origin)
	if def == nil || def.EnumBase == NoTypeID {
		return NoTypeID
	}
	if rec.Subst != nil {
		return rec.Subst.Apply(r, def.EnumBase)
	}
	return def.EnumBase
}

// Layout returns explicit layout metadata recorded for the type's
// original definition.
func (r *Registry) Layout(id NamedID) (TypeLayout, bool) {
	def := r.OriginalDefinition(id)
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[def]
	return l, ok
}
