package undo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// setter returns an edit that assigns v to *p and remembers the old value.
func setter(log *[]string, p *int, v int) Edit {
	old := *p
	*p = v
	return Func(fmt.Sprintf("set %d", v),
		func() { *p = old; *log = append(*log, fmt.Sprintf("undo %d", v)) },
		func() { *p = v; *log = append(*log, fmt.Sprintf("redo %d", v)) },
	)
}

func TestSingleEditUnit(t *testing.T) {
	var log []string
	x := 0
	m := NewManager(0)
	m.Fire(setter(&log, &x, 1))

	if !m.CanUndo() || m.UndoName() != "set 1" {
		t.Fatalf("CanUndo=%v UndoName=%q", m.CanUndo(), m.UndoName())
	}
	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	if x != 0 {
		t.Errorf("x = %d after undo, want 0", x)
	}
	if err := m.Redo(); err != nil {
		t.Fatal(err)
	}
	if x != 1 {
		t.Errorf("x = %d after redo, want 1", x)
	}
}

func TestCompoundOrder(t *testing.T) {
	var log []string
	a, b, c := 0, 0, 0
	m := NewManager(0)

	m.BeginEdit("attributes")
	m.Fire(setter(&log, &a, 1))
	m.Fire(setter(&log, &b, 2))
	m.Fire(setter(&log, &c, 3))
	if err := m.CommitEdit(); err != nil {
		t.Fatal(err)
	}

	if n, _ := m.Len(); n != 1 {
		t.Fatalf("undo stack has %d units, want 1", n)
	}
	if m.UndoName() != "attributes" {
		t.Errorf("UndoName = %q", m.UndoName())
	}

	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	if a != 0 || b != 0 || c != 0 {
		t.Errorf("after undo a=%d b=%d c=%d", a, b, c)
	}
	if err := m.Redo(); err != nil {
		t.Fatal(err)
	}
	if a != 1 || b != 2 || c != 3 {
		t.Errorf("after redo a=%d b=%d c=%d", a, b, c)
	}

	want := []string{"undo 3", "undo 2", "undo 1", "redo 1", "redo 2", "redo 3"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedEditsFlatten(t *testing.T) {
	var log []string
	x, y := 0, 0
	m := NewManager(0)

	m.BeginEdit("outer")
	m.Fire(setter(&log, &x, 1))
	m.BeginEdit("inner")
	m.Fire(setter(&log, &y, 2))
	if err := m.CommitEdit(); err != nil {
		t.Fatal(err)
	}
	if !m.InEdit() {
		t.Fatal("inner commit closed the outer edit")
	}
	if err := m.CommitEdit(); err != nil {
		t.Fatal(err)
	}

	if n, _ := m.Len(); n != 1 || m.UndoName() != "outer" {
		t.Fatalf("units=%d name=%q", n, m.UndoName())
	}
	_ = m.Undo()
	if x != 0 || y != 0 {
		t.Errorf("x=%d y=%d after undo", x, y)
	}
}

func TestCompoundAddFlattens(t *testing.T) {
	var log []string
	x := 0
	inner := NewCompound("inner")
	inner.Add(setter(&log, &x, 1))
	inner.Add(setter(&log, &x, 2))
	outer := NewCompound("outer")
	outer.Add(inner)
	if outer.Len() != 2 {
		t.Errorf("Len = %d, want 2", outer.Len())
	}
}

func TestFireClearsRedo(t *testing.T) {
	var log []string
	x := 0
	m := NewManager(0)
	m.Fire(setter(&log, &x, 1))
	_ = m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo")
	}
	m.Fire(setter(&log, &x, 5))
	if m.CanRedo() {
		t.Error("new edit did not clear redo stack")
	}
	if err := m.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo error = %v", err)
	}
}

func TestEmptyStacks(t *testing.T) {
	m := NewManager(0)
	if err := m.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo error = %v", err)
	}
	if err := m.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo error = %v", err)
	}
	if err := m.CommitEdit(); !errors.Is(err, ErrNoOpenEdit) {
		t.Errorf("CommitEdit error = %v", err)
	}
	if err := m.CancelEdit(); !errors.Is(err, ErrNoOpenEdit) {
		t.Errorf("CancelEdit error = %v", err)
	}
}

func TestUndoWhileOpen(t *testing.T) {
	var log []string
	x := 0
	m := NewManager(0)
	m.Fire(setter(&log, &x, 1))
	m.BeginEdit("move")
	if err := m.Undo(); !errors.Is(err, ErrEditOpen) {
		t.Errorf("Undo error = %v, want ErrEditOpen", err)
	}
	if m.CanUndo() {
		t.Error("CanUndo true while an edit is open")
	}
}

func TestEmptyCommitPushesNothing(t *testing.T) {
	m := NewManager(0)
	m.BeginEdit("noop")
	_ = m.CommitEdit()
	if m.CanUndo() {
		t.Error("empty edit pushed")
	}
}

func TestCancelEdit(t *testing.T) {
	var log []string
	x := 0
	m := NewManager(0)
	m.Fire(setter(&log, &x, 1))

	m.BeginEdit("move")
	m.Fire(setter(&log, &x, 2))
	m.Fire(setter(&log, &x, 3))
	if err := m.CancelEdit(); err != nil {
		t.Fatal(err)
	}
	if x != 1 {
		t.Errorf("x = %d after cancel, want 1", x)
	}
	if n, _ := m.Len(); n != 1 || m.UndoName() != "set 1" {
		t.Errorf("history changed by cancel: %d %q", n, m.UndoName())
	}
}

func TestLimit(t *testing.T) {
	var log []string
	x := 0
	m := NewManager(DefaultLimit)
	for i := 1; i <= 60; i++ {
		m.Fire(setter(&log, &x, i))
	}
	n, _ := m.Len()
	if n != DefaultLimit {
		t.Fatalf("undo stack = %d, want %d", n, DefaultLimit)
	}
	for m.CanUndo() {
		_ = m.Undo()
	}
	// The oldest ten units were dropped.
	if x != 10 {
		t.Errorf("x = %d after undoing everything, want 10", x)
	}
}

func TestOnChange(t *testing.T) {
	var log []string
	calls := 0
	x := 0
	m := NewManager(0)
	m.OnChange = func() { calls++ }
	m.Fire(setter(&log, &x, 1))
	_ = m.Undo()
	_ = m.Redo()
	if calls != 3 {
		t.Errorf("OnChange called %d times, want 3", calls)
	}
}
