package source

import "testing"

func TestInternerDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern("Box")
	b := in.Intern("Box")
	if a != b {
		t.Fatalf("same string must intern to the same ID: %d vs %d", a, b)
	}
	if a == NoStringID {
		t.Fatalf("interned string must not get NoStringID")
	}
}

func TestInternerEmptyStringIsReserved(t *testing.T) {
	in := NewInterner()
	if got := in.Intern(""); got != NoStringID {
		t.Fatalf("empty string must map to NoStringID, got %d", got)
	}
	if in.Len() != 1 {
		t.Fatalf("fresh interner must hold only the reserved slot, len=%d", in.Len())
	}
}

func TestInternerLookupRoundTrip(t *testing.T) {
	in := NewInterner()
	id := in.Intern("__construct")
	s, ok := in.Lookup(id)
	if !ok || s != "__construct" {
		t.Fatalf("lookup(%d) = %q, %v", id, s, ok)
	}
	if _, ok := in.Lookup(StringID(999)); ok {
		t.Fatalf("lookup of unknown ID must fail")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("cover produced %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cover across files must be identity, got %v", got)
	}
}
