package diag

import (
	"testing"

	"phlox/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Severity: SevWarning, Code: DeclBadKind}) {
		t.Fatalf("first add must succeed")
	}
	if b.HasErrors() {
		t.Fatalf("warnings are not errors")
	}
	b.Add(Diagnostic{Severity: SevError, Code: DeclDuplicateType})
	if b.Add(Diagnostic{Severity: SevError, Code: DeclUnknownType}) {
		t.Fatalf("limit must drop the third diagnostic")
	}
	if !b.HasErrors() || b.Len() != 2 {
		t.Fatalf("bag state wrong: len=%d", b.Len())
	}
}

func TestBagLimitClamped(t *testing.T) {
	b := NewBag(-1)
	if b.Add(Diagnostic{Severity: SevError, Code: DeclBadKind}) || b.Len() != 0 {
		t.Fatalf("negative limit must behave as zero")
	}

	b = NewBag(1 << 20)
	for i := 0; i < 4; i++ {
		if !b.Add(Diagnostic{Severity: SevWarning, Code: DeclBadKind}) {
			t.Fatalf("oversized limit dropped diagnostic %d", i)
		}
	}
	if b.Len() != 4 {
		t.Fatalf("bag kept %d items", b.Len())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	b := NewBag(8)
	b.Add(Diagnostic{Severity: SevWarning, Code: DeclBadKind, Primary: source.Span{File: 2}})
	b.Add(Diagnostic{Severity: SevError, Code: DeclUnknownType, Primary: source.Span{File: 1, Start: 5}})
	b.Add(Diagnostic{Severity: SevError, Code: DeclDuplicateType, Primary: source.Span{File: 1}})
	b.Sort()
	items := b.Items()
	if items[0].Code != DeclDuplicateType || items[2].Primary.File != 2 {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	d := Diagnostic{Severity: SevError, Code: ResBaseCycle, Message: "cycle"}
	b.Add(d)
	b.Add(d)
	b.Add(Diagnostic{Severity: SevError, Code: ResBaseCycle, Message: "other"})
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("dedup kept %d items", b.Len())
	}
}
