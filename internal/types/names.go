package types

import "strconv"

// GenericNameSeparator joins a mangled name with its arity marker.
const GenericNameSeparator = "`"

// MangleName reports whether the type's external metadata name carries
// an arity marker. It is a pure function of arity, never of the
// current instantiation state, so overloaded-by-arity names stay
// unambiguous across every call site.
func (r *Registry) MangleName(id NamedID) bool {
	return r.Arity(id) > 0
}

// MetadataName produces the serialized name of the type as the
// metadata emitter sees it: the declared name, suffixed with the arity
// marker when the name is mangled.
func (r *Registry) MetadataName(id NamedID) string {
	name := r.NameOf(id)
	if !r.MangleName(id) {
		return name
	}
	return name + GenericNameSeparator + strconv.Itoa(r.Arity(id))
}

// DisplayName renders a human-readable form: definitions show their
// parameter list, constructed types their arguments, unbound types an
// empty argument list.
func (r *Registry) DisplayName(id NamedID) string {
	rec := r.get(id)
	if rec == nil {
		return ""
	}
	name := r.NameOf(id)
	if !r.IsGeneric(id) {
		return name
	}
	if r.IsUnbound(id) {
		return name + "<>"
	}
	out := name + "<"
	if rec.Prov == ProvConstructed {
		for i, a := range rec.Args {
			if i > 0 {
				out += ", "
			}
			out += r.typeString(a.Type)
			if a.Mods&ModNullable != 0 {
				out += "?"
			}
		}
	} else {
		for i, p := range r.TypeParameters(id) {
			if i > 0 {
				out += ", "
			}
			out += r.typeString(p)
		}
	}
	return out + ">"
}

func (r *Registry) typeString(id TypeID) string {
	tt, ok := r.Types.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindArray:
		return r.typeString(tt.Elem) + "[]"
	case KindNamed:
		return r.DisplayName(NamedID(tt.Payload))
	case KindTypeParam:
		info, ok := r.Types.TypeParamInfo(id)
		if !ok {
			return "?"
		}
		s, _ := r.Syms.Strings.Lookup(info.Name)
		return s
	default:
		return tt.Kind.String()
	}
}
