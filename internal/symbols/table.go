package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"phlox/internal/source"
)

// Hints provide optional capacity suggestions for the table arena.
type Hints struct{ Symbols uint }

// Table owns the symbol arena and the shared string interner.
//
// All writes happen during the single-threaded binding phase; once the
// table is published every operation on it is a plain index read, safe
// under concurrent access.
type Table struct {
	arena   []Symbol
	byOwner map[SymbolID][]SymbolID
	Strings *source.Interner
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	if _, err := safecast.Conv[uint32](h.Symbols); err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		arena:   make([]Symbol, 1, h.Symbols+1), // slot 0 = NoSymbolID sentinel
		byOwner: make(map[SymbolID][]SymbolID),
		Strings: strings,
	}
}

// New allocates a symbol and returns its ID. The Origin of the new
// symbol is itself: declared symbols are their own original definition.
func (t *Table) New(sym Symbol) SymbolID {
	lenArena, err := safecast.Conv[uint32](len(t.arena))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	id := SymbolID(lenArena)
	sym.Origin = id
	t.arena = append(t.arena, sym)
	if sym.Owner.IsValid() {
		t.byOwner[sym.Owner] = append(t.byOwner[sym.Owner], id)
	}
	return id
}

// Get returns the symbol record for id, or nil for invalid IDs.
func (t *Table) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.arena) {
		return nil
	}
	return &t.arena[id]
}

// Len returns the number of allocated symbols, counting the sentinel.
func (t *Table) Len() int { return len(t.arena) }

// MembersOf returns the symbols owned by the given symbol, in
// declaration order. The returned slice is shared; do not modify it.
func (t *Table) MembersOf(owner SymbolID) []SymbolID {
	return t.byOwner[owner]
}

// MembersNamed returns the owned symbols whose name matches, in
// declaration order. Zero matches yield nil, not an error: absent
// members are a legitimate state for imported definitions.
func (t *Table) MembersNamed(owner SymbolID, name source.StringID) []SymbolID {
	if name == source.NoStringID {
		return nil
	}
	var out []SymbolID
	for _, id := range t.byOwner[owner] {
		if t.arena[id].Name == name {
			out = append(out, id)
		}
	}
	return out
}

// NameOf returns the display name of a symbol, "" when absent.
func (t *Table) NameOf(id SymbolID) string {
	sym := t.Get(id)
	if sym == nil {
		return ""
	}
	s, _ := t.Strings.Lookup(sym.Name)
	return s
}
