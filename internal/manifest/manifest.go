// Package manifest loads symbol manifests: TOML files declaring the
// named types of a module (their kind, generic parameters, bases,
// interfaces, members and layout) plus the generic instantiations the
// module requests. It is the binding collaborator feeding the type
// registry; everything downstream works on the loaded symbol graph.
package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"phlox/internal/diag"
	"phlox/internal/source"
	"phlox/internal/symbols"
	"phlox/internal/types"
)

// File mirrors the TOML schema of one symbol manifest.
type File struct {
	Types      []TypeDecl  `toml:"type"`
	Constructs []Construct `toml:"construct"`
}

// TypeDecl declares one named type.
type TypeDecl struct {
	Name        string       `toml:"name"`
	Kind        string       `toml:"kind"`
	Params      []string     `toml:"params"`
	Base        string       `toml:"base"`
	Interfaces  []string     `toml:"interfaces"`
	EnumBase    string       `toml:"enum_base"`
	Conditional bool         `toml:"conditional"`
	NestedIn    string       `toml:"nested_in"`
	Layout      *LayoutDecl  `toml:"layout"`
	Members     []MemberDecl `toml:"member"`
}

// LayoutDecl carries explicit layout metadata.
type LayoutDecl struct {
	Kind string `toml:"kind"`
	Pack uint8  `toml:"pack"`
	Size uint32 `toml:"size"`
}

// MemberDecl declares one opaque member symbol.
type MemberDecl struct {
	Name   string `toml:"name"`
	Kind   string `toml:"kind"`
	Static bool   `toml:"static"`
	Public bool   `toml:"public"`
}

// Construct requests one generic instantiation.
type Construct struct {
	Type    string   `toml:"type"`
	Args    []string `toml:"args"`
	Unbound bool     `toml:"unbound"`
}

// Result is the outcome of loading manifests into a registry.
type Result struct {
	Registry    *types.Registry
	Bag         *diag.Bag
	Declared    []types.NamedID
	Constructed []types.NamedID
}

// Parse decodes one manifest file from TOML text.
func Parse(data string) (*File, error) {
	var f File
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest TOML: %w", err)
	}
	return &f, nil
}

// Load binds the declarations of the given manifests, in order, into a
// fresh registry. Malformed declarations are reported through the bag
// and skipped; loading keeps going so one bad declaration does not hide
// the rest.
func Load(files []*File, maxDiagnostics int) *Result {
	res := &Result{
		Registry: types.NewRegistry(nil, nil),
		Bag:      diag.NewBag(maxDiagnostics),
	}
	l := &loader{
		r:          res.Registry,
		report:     diag.BagReporter{Bag: res.Bag},
		byName:     make(map[string]types.NamedID),
		paramsOf:   make(map[types.NamedID]map[string]types.TypeID),
		declaredAt: make(map[string]declKey),
	}
	l.declareAll(files, res)
	for fi, f := range files {
		l.file = source.FileID(fi + 1)
		l.bindAll(f)
	}
	for fi, f := range files {
		l.file = source.FileID(fi + 1)
		l.constructAll(f, res)
	}
	return res
}

type loader struct {
	r          *types.Registry
	report     diag.Reporter
	file       source.FileID
	byName     map[string]types.NamedID
	paramsOf   map[types.NamedID]map[string]types.TypeID
	declaredAt map[string]declKey
}

// declKey identifies which declaration won a name, so a duplicate does
// not get its shape bound onto the winner's record.
type declKey struct {
	file source.FileID
	idx  int
}

func (l *loader) span() source.Span { return source.Span{File: l.file} }

func parseTypeKind(s string) (types.TypeKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "":
		return types.TypeKindClass, true
	case "interface":
		return types.TypeKindInterface, true
	case "struct":
		return types.TypeKindStruct, true
	case "enum":
		return types.TypeKindEnum, true
	case "delegate":
		return types.TypeKindDelegate, true
	default:
		return types.TypeKindInvalid, false
	}
}

func parseMemberKind(s string) (symbols.SymbolKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "method", "":
		return symbols.SymbolMethod, true
	case "field":
		return symbols.SymbolField, true
	case "constant", "const":
		return symbols.SymbolConstant, true
	default:
		return symbols.SymbolInvalid, false
	}
}

func parseLayoutKind(s string) (types.LayoutKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return types.LayoutAuto, true
	case "sequential":
		return types.LayoutSequential, true
	case "explicit":
		return types.LayoutExplicit, true
	default:
		return types.LayoutNone, false
	}
}

// declareAll is the first pass: allocate every type and its parameters
// so later references can resolve regardless of declaration order. The
// fixpoint runs over all files at once, so a nested type may name a
// container declared in any manifest, not just an earlier one.
// Unresolved containers are reported after the fixpoint.
func (l *loader) declareAll(files []*File, res *Result) {
	type pendingDecl struct {
		decl TypeDecl
		file source.FileID
		idx  int
	}
	var pending []pendingDecl
	for fi, f := range files {
		for i, decl := range f.Types {
			pending = append(pending, pendingDecl{decl: decl, file: source.FileID(fi + 1), idx: i})
		}
	}
	for progress := true; progress && len(pending) > 0; {
		progress = false
		next := pending[:0]
		for _, pd := range pending {
			containing := types.NoNamedID
			if pd.decl.NestedIn != "" {
				owner, ok := l.byName[pd.decl.NestedIn]
				if !ok {
					next = append(next, pd)
					continue
				}
				containing = owner
			}
			l.file = pd.file
			l.declareOne(pd.decl, pd.idx, containing, res)
			progress = true
		}
		pending = next
	}
	for _, pd := range pending {
		l.file = pd.file
		l.report.Report(diag.DeclUnknownType, diag.SevError, l.span(),
			fmt.Sprintf("type %q is nested in unknown type %q", pd.decl.Name, pd.decl.NestedIn), nil)
	}
}

func (l *loader) declareOne(decl TypeDecl, idx int, containing types.NamedID, res *Result) {
	if _, dup := l.byName[decl.Name]; dup {
		l.report.Report(diag.DeclDuplicateType, diag.SevError, l.span(),
			fmt.Sprintf("type %q declared twice", decl.Name), nil)
		return
	}
	kind, ok := parseTypeKind(decl.Kind)
	if !ok {
		l.report.Report(diag.DeclBadKind, diag.SevError, l.span(),
			fmt.Sprintf("type %q has unknown kind %q", decl.Name, decl.Kind), nil)
		return
	}
	id := l.r.Declare(decl.Name, kind, containing, l.span())
	l.byName[decl.Name] = id
	l.declaredAt[decl.Name] = declKey{file: l.file, idx: idx}
	params := make(map[string]types.TypeID, len(decl.Params))
	for _, p := range decl.Params {
		params[p] = l.r.AddTypeParam(id, p)
	}
	l.paramsOf[id] = params
	res.Declared = append(res.Declared, id)
}

// scopeFor resolves names visible inside a declaration: its own
// parameters, then the parameters of every enclosing type.
func (l *loader) scopeFor(id types.NamedID) Scope {
	params := make(map[string]types.TypeID)
	for at := id; at.IsValid(); at = l.r.ContainingOf(at) {
		for name, tp := range l.paramsOf[at] {
			if _, shadowed := params[name]; !shadowed {
				params[name] = tp
			}
		}
	}
	return Scope{Params: params, Named: l.byName}
}

// bindAll is the second pass: resolve bases, interfaces, members and
// layout now that every name is known.
func (l *loader) bindAll(f *File) {
	for i, decl := range f.Types {
		id, ok := l.byName[decl.Name]
		if !ok || l.declaredAt[decl.Name] != (declKey{file: l.file, idx: i}) {
			continue
		}
		scope := l.scopeFor(id)
		if decl.Base != "" {
			if arg, err := ParseTypeRef(l.r, scope, decl.Base); err != nil {
				l.report.Report(diag.DeclBadTypeRef, diag.SevError, l.span(),
					fmt.Sprintf("type %q: bad base reference: %v", decl.Name, err), nil)
			} else {
				l.r.SetBase(id, arg.Type)
			}
		}
		for _, iface := range decl.Interfaces {
			if arg, err := ParseTypeRef(l.r, scope, iface); err != nil {
				l.report.Report(diag.DeclBadTypeRef, diag.SevError, l.span(),
					fmt.Sprintf("type %q: bad interface reference: %v", decl.Name, err), nil)
			} else {
				l.r.AddInterface(id, arg.Type)
			}
		}
		if decl.EnumBase != "" {
			if l.r.TypeKindOf(id) != types.TypeKindEnum {
				l.report.Report(diag.DeclEnumBase, diag.SevError, l.span(),
					fmt.Sprintf("type %q: enum_base on a non-enum", decl.Name), nil)
			} else if arg, err := ParseTypeRef(l.r, scope, decl.EnumBase); err != nil {
				l.report.Report(diag.DeclBadTypeRef, diag.SevError, l.span(),
					fmt.Sprintf("type %q: bad enum_base reference: %v", decl.Name, err), nil)
			} else {
				l.r.SetEnumBase(id, arg.Type)
			}
		}
		if decl.Conditional {
			l.r.SetConditional(id, true)
		}
		if decl.Layout != nil {
			kind, ok := parseLayoutKind(decl.Layout.Kind)
			if !ok {
				l.report.Report(diag.DeclBadLayout, diag.SevError, l.span(),
					fmt.Sprintf("type %q: unknown layout kind %q", decl.Name, decl.Layout.Kind), nil)
			} else {
				l.r.SetLayout(id, types.TypeLayout{Kind: kind, Pack: decl.Layout.Pack, Size: decl.Layout.Size})
			}
		}
		for _, m := range decl.Members {
			kind, ok := parseMemberKind(m.Kind)
			if !ok {
				l.report.Report(diag.DeclBadMemberKind, diag.SevError, l.span(),
					fmt.Sprintf("type %q: member %q has unknown kind %q", decl.Name, m.Name, m.Kind), nil)
				continue
			}
			var flags symbols.SymbolFlags
			if m.Static {
				flags |= symbols.SymbolFlagStatic
			}
			if m.Public {
				flags |= symbols.SymbolFlagPublic
			}
			l.r.AddMember(id, m.Name, kind, flags)
		}
	}
}

// constructAll is the third pass: evaluate instantiation requests.
func (l *loader) constructAll(f *File, res *Result) {
	for _, c := range f.Constructs {
		def, ok := l.byName[c.Type]
		if !ok {
			l.report.Report(diag.DeclUnknownType, diag.SevError, l.span(),
				fmt.Sprintf("construct: unknown type %q", c.Type), nil)
			continue
		}
		if c.Unbound {
			res.Constructed = append(res.Constructed, l.r.ConstructUnbound(def))
			continue
		}
		scope := l.scopeFor(def)
		args := make([]types.TypeArg, 0, len(c.Args))
		bad := false
		for _, a := range c.Args {
			arg, err := ParseTypeRef(l.r, scope, a)
			if err != nil {
				l.report.Report(diag.InstBadArg, diag.SevError, l.span(),
					fmt.Sprintf("construct %s: bad argument %q: %v", c.Type, a, err), nil)
				bad = true
				break
			}
			args = append(args, arg)
		}
		if bad {
			continue
		}
		inst, err := l.r.Construct(def, args)
		if err != nil {
			code := diag.InstArity
			if errors.Is(err, types.ErrNotGeneric) {
				code = diag.InstNotGeneric
			}
			l.report.Report(code, diag.SevError, l.span(),
				fmt.Sprintf("construct %s: %v", c.Type, err), nil)
			continue
		}
		res.Constructed = append(res.Constructed, inst)
	}
}
