package types

import "fmt"

// TypeID uniquely identifies a type expression inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of type expressions.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindMissing is the "no argument supplied" placeholder used as the
	// argument of unbound generic types.
	KindMissing
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindMixed
	KindArray
	KindNamed
	KindTypeParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindMissing:
		return "missing"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMixed:
		return "mixed"
	case KindArray:
		return "array"
	case KindNamed:
		return "named"
	case KindTypeParam:
		return "typeparam"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Modifiers is a per-argument modifier bitset carried alongside a type
// argument when a generic type is constructed.
type Modifiers uint8

const (
	ModNone     Modifiers = 0
	ModNullable Modifiers = 1 << 0
	ModByRef    Modifiers = 1 << 1
)

// TypeArg pairs a type with the modifiers it was supplied with.
type TypeArg struct {
	Type TypeID
	Mods Modifiers
}

// Type is a compact descriptor for any supported type expression.
// Descriptors are comparable values; identity lives in the interner.
type Type struct {
	Kind    Kind
	Elem    TypeID // for arrays
	Payload uint32 // NamedID for KindNamed, param slot for KindTypeParam
}

// MakeArray describes an array of the element type.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}
