package diag

import "fmt"

// Code is a compact, stable identifier for a class of findings.
type Code uint16

const (
	UnknownCode Code = 0

	// Manifest / declaration loading
	DeclInfo          Code = 1000
	DeclBadKind       Code = 1001
	DeclDuplicateType Code = 1002
	DeclUnknownType   Code = 1003
	DeclBadTypeRef    Code = 1004
	DeclBadMemberKind Code = 1005
	DeclBadLayout     Code = 1006
	DeclEnumBase      Code = 1007

	// Generic instantiation
	InstInfo       Code = 2000
	InstArity      Code = 2001
	InstNotGeneric Code = 2002
	InstBadArg     Code = 2003

	// Resolution
	ResBaseCycle      Code = 3000
	ResInterfaceCycle Code = 3001
	ResBaseNotClass   Code = 3002
)

func (c Code) String() string {
	switch {
	case c >= 3000:
		return fmt.Sprintf("RES%04d", uint16(c))
	case c >= 2000:
		return fmt.Sprintf("INST%04d", uint16(c))
	case c >= 1000:
		return fmt.Sprintf("DECL%04d", uint16(c))
	default:
		return fmt.Sprintf("PHX%04d", uint16(c))
	}
}
