package symbols

import "phlox/internal/source"

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolType
	SymbolMethod
	SymbolField
	SymbolConstant
	SymbolTypeParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolType:
		return "type"
	case SymbolMethod:
		return "method"
	case SymbolField:
		return "field"
	case SymbolConstant:
		return "constant"
	case SymbolTypeParam:
		return "typeparam"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagStatic
	SymbolFlagAbstract
	SymbolFlagFinal
	SymbolFlagImported
	SymbolFlagSynthesized
)

// Strings returns textual flag labels, for dumps and tests.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&SymbolFlagStatic != 0 {
		labels = append(labels, "static")
	}
	if f&SymbolFlagAbstract != 0 {
		labels = append(labels, "abstract")
	}
	if f&SymbolFlagFinal != 0 {
		labels = append(labels, "final")
	}
	if f&SymbolFlagImported != 0 {
		labels = append(labels, "imported")
	}
	if f&SymbolFlagSynthesized != 0 {
		labels = append(labels, "synthesized")
	}
	return labels
}

// Symbol describes a named entity in the symbol graph.
//
// Owner is a back reference into the same arena, never an owning link:
// containment cycles cannot leak because the arena owns every record.
// Origin is the original definition of the symbol; for source-declared
// symbols it is the symbol itself, which makes the relation idempotent.
type Symbol struct {
	Name   source.StringID
	Kind   SymbolKind
	Owner  SymbolID
	Origin SymbolID
	Flags  SymbolFlags
	Span   source.Span
}
