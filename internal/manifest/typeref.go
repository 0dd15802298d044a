package manifest

import (
	"fmt"
	"strings"

	"phlox/internal/types"
)

// Scope resolves bare identifiers while parsing a type reference:
// type parameters in scope first, then declared type names.
type Scope struct {
	Params map[string]types.TypeID
	Named  map[string]types.NamedID
}

// ParseTypeRef parses the manifest's type-reference grammar:
//
//	ref      := "?"? core "[]"*
//	core     := primitive | ident | ident "<" ref ("," ref)* ">"
//
// A leading "?" records the nullable modifier on the resulting
// argument. Generic references construct through the registry, so
// Box<int> in two manifests is the same symbol.
func ParseTypeRef(r *types.Registry, scope Scope, s string) (types.TypeArg, error) {
	p := &refParser{r: r, scope: scope, s: s}
	arg, err := p.parseRef()
	if err != nil {
		return types.TypeArg{}, err
	}
	p.skipSpaces()
	if p.pos != len(p.s) {
		return types.TypeArg{}, fmt.Errorf("unexpected trailing %q in type reference %q", p.s[p.pos:], s)
	}
	return arg, nil
}

type refParser struct {
	r     *types.Registry
	scope Scope
	s     string
	pos   int
}

func (p *refParser) parseRef() (types.TypeArg, error) {
	p.skipSpaces()
	var mods types.Modifiers
	if p.peek() == '?' {
		mods |= types.ModNullable
		p.pos++
	}
	core, err := p.parseCore()
	if err != nil {
		return types.TypeArg{}, err
	}
	for {
		p.skipSpaces()
		if strings.HasPrefix(p.s[p.pos:], "[]") {
			p.pos += 2
			core = p.r.Types.Intern(types.MakeArray(core))
			continue
		}
		break
	}
	return types.TypeArg{Type: core, Mods: mods}, nil
}

func (p *refParser) parseCore() (types.TypeID, error) {
	name := p.parseIdent()
	if name == "" {
		return types.NoTypeID, fmt.Errorf("expected a type name at offset %d of %q", p.pos, p.s)
	}
	b := p.r.Types.Builtins()
	switch name {
	case "int":
		return b.Int, nil
	case "float":
		return b.Float, nil
	case "bool":
		return b.Bool, nil
	case "string":
		return b.String, nil
	case "mixed":
		return b.Mixed, nil
	case "null":
		return b.Null, nil
	}
	if tp, ok := p.scope.Params[name]; ok {
		return tp, nil
	}
	named, ok := p.scope.Named[name]
	if !ok {
		return types.NoTypeID, fmt.Errorf("unknown type %q", name)
	}
	p.skipSpaces()
	if p.peek() != '<' {
		return p.r.Types.NamedRef(named), nil
	}
	p.pos++
	var args []types.TypeArg
	for {
		arg, err := p.parseRef()
		if err != nil {
			return types.NoTypeID, err
		}
		args = append(args, arg)
		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			inst, err := p.r.Construct(named, args)
			if err != nil {
				return types.NoTypeID, fmt.Errorf("%s: %w", name, err)
			}
			return p.r.Types.NamedRef(inst), nil
		default:
			return types.NoTypeID, fmt.Errorf("expected ',' or '>' in arguments of %q", name)
		}
	}
}

func (p *refParser) parseIdent() string {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' && p.pos > start {
			p.pos++
			continue
		}
		break
	}
	return p.s[start:p.pos]
}

func (p *refParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *refParser) skipSpaces() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}
