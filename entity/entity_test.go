package entity

import "testing"

func TestAllocateDeallocateReuseBumpsGeneration(t *testing.T) {
	a := NewAllocator()
	e1 := a.Allocate()
	if !a.IsAlive(e1) {
		t.Fatal("freshly allocated entity should be alive")
	}

	a.Deallocate(e1)
	if a.IsAlive(e1) {
		t.Fatal("deallocated entity should no longer be alive")
	}

	e2 := a.Allocate()
	if e2.Index != e1.Index {
		t.Fatalf("expected slot reuse: got index %d, want %d", e2.Index, e1.Index)
	}
	if e2.Generation == e1.Generation {
		t.Fatal("reused slot must bump its generation so stale handles are detected")
	}
	if a.IsAlive(e1) {
		t.Fatal("the old (stale) handle must not be reported alive after reuse")
	}
	if !a.IsAlive(e2) {
		t.Fatal("the new handle must be alive")
	}
}

func TestNilNeverIssued(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < 3; i++ {
		if e := a.Allocate(); e.IsNil() {
			t.Fatalf("Allocate returned the Nil sentinel on iteration %d", i)
		}
	}
}

func TestAllDeterministicOrder(t *testing.T) {
	a := NewAllocator()
	var want []Entity
	for i := 0; i < 5; i++ {
		want = append(want, a.Allocate())
	}
	a.Deallocate(want[2])

	got := a.All()
	if len(got) != 4 {
		t.Fatalf("expected 4 live entities, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Index >= got[i].Index {
			t.Fatalf("All() must be ascending-index ordered, got %v", got)
		}
	}
}

func TestExportRestoreStateRoundTrip(t *testing.T) {
	a := NewAllocator()
	e1 := a.Allocate()
	_ = a.Allocate()
	a.Deallocate(e1)
	e3 := a.Allocate() // reuses e1's slot at a bumped generation

	restored := RestoreAllocator(a.ExportState())
	if !restored.IsAlive(e3) {
		t.Fatal("restored allocator must preserve liveness of the post-reuse handle")
	}
	if restored.IsAlive(e1) {
		t.Fatal("restored allocator must not resurrect a stale handle")
	}

	// A fresh allocation from the restored allocator must not collide
	// with any handle already live before the snapshot.
	e4 := restored.Allocate()
	if e4 == e3 {
		t.Fatalf("new allocation collided with an existing live handle: %v", e4)
	}
}
