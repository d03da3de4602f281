// Package undo records reversible edits. Edits fired while a named edit is
// open are buffered into it and undone or redone as one unit.
package undo

import "errors"

var (
	ErrNothingToUndo = errors.New("undo: nothing to undo")
	ErrNothingToRedo = errors.New("undo: nothing to redo")
	ErrEditOpen      = errors.New("undo: an edit is still open")
	ErrNoOpenEdit    = errors.New("undo: no open edit")
)

// DefaultLimit is the number of undo units kept when none is configured.
const DefaultLimit = 50

// Edit is a reversible change that has already been applied.
type Edit interface {
	Name() string
	Undo()
	Redo()
}

type funcEdit struct {
	name       string
	undo, redo func()
}

func (e *funcEdit) Name() string { return e.name }
func (e *funcEdit) Undo()        { e.undo() }
func (e *funcEdit) Redo()        { e.redo() }

// Func wraps a pair of closures as an Edit.
func Func(name string, undo, redo func()) Edit {
	return &funcEdit{name: name, undo: undo, redo: redo}
}

// Compound is an ordered group of edits acting as one.
type Compound struct {
	name  string
	edits []Edit
}

// NewCompound creates an empty compound edit.
func NewCompound(name string) *Compound {
	return &Compound{name: name}
}

// Add appends e. Nested compounds are flattened into c.
func (c *Compound) Add(e Edit) {
	if inner, ok := e.(*Compound); ok {
		c.edits = append(c.edits, inner.edits...)
		return
	}
	c.edits = append(c.edits, e)
}

// Edits returns the recorded edits in order.
func (c *Compound) Edits() []Edit { return c.edits }

// Len returns the number of recorded edits.
func (c *Compound) Len() int { return len(c.edits) }

func (c *Compound) Name() string { return c.name }

// Undo reverts the edits in reverse order.
func (c *Compound) Undo() {
	for i := len(c.edits) - 1; i >= 0; i-- {
		c.edits[i].Undo()
	}
}

// Redo reapplies the edits in recording order.
func (c *Compound) Redo() {
	for _, e := range c.edits {
		e.Redo()
	}
}

// Manager holds the undo and redo stacks.
type Manager struct {
	limit int
	undo  []Edit
	redo  []Edit
	open  *Compound
	depth int

	// OnChange, if set, is called after every stack change.
	OnChange func()
}

// NewManager creates a manager keeping at most limit units.
// A limit of zero or less selects DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// BeginEdit opens a named edit. Calls nest; only the outermost name is
// kept and the unit is pushed when the outermost edit commits.
func (m *Manager) BeginEdit(name string) {
	if m.open == nil {
		m.open = NewCompound(name)
	}
	m.depth++
}

// InEdit reports whether an edit is open.
func (m *Manager) InEdit() bool { return m.open != nil }

// CommitEdit closes the innermost open edit.
func (m *Manager) CommitEdit() error {
	if m.open == nil {
		return ErrNoOpenEdit
	}
	m.depth--
	if m.depth > 0 {
		return nil
	}
	c := m.open
	m.open = nil
	if c.Len() > 0 {
		m.push(c)
	}
	return nil
}

// CancelEdit reverts everything fired since the outermost BeginEdit and
// discards the open edit.
func (m *Manager) CancelEdit() error {
	if m.open == nil {
		return ErrNoOpenEdit
	}
	c := m.open
	m.open = nil
	m.depth = 0
	c.Undo()
	m.changed()
	return nil
}

// Fire records an applied edit.
func (m *Manager) Fire(e Edit) {
	if e == nil {
		return
	}
	if m.open != nil {
		m.open.Add(e)
		return
	}
	m.push(e)
}

func (m *Manager) push(e Edit) {
	m.undo = append(m.undo, e)
	if len(m.undo) > m.limit {
		m.undo = m.undo[len(m.undo)-m.limit:]
	}
	m.redo = nil
	m.changed()
}

// Undo reverts the most recent unit.
func (m *Manager) Undo() error {
	if m.open != nil {
		return ErrEditOpen
	}
	if len(m.undo) == 0 {
		return ErrNothingToUndo
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	e.Undo()
	m.redo = append(m.redo, e)
	m.changed()
	return nil
}

// Redo reapplies the most recently undone unit.
func (m *Manager) Redo() error {
	if m.open != nil {
		return ErrEditOpen
	}
	if len(m.redo) == 0 {
		return ErrNothingToRedo
	}
	e := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	e.Redo()
	m.undo = append(m.undo, e)
	m.changed()
	return nil
}

func (m *Manager) CanUndo() bool { return m.open == nil && len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return m.open == nil && len(m.redo) > 0 }

// UndoName returns the name of the unit Undo would revert.
func (m *Manager) UndoName() string {
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].Name()
}

// RedoName returns the name of the unit Redo would reapply.
func (m *Manager) RedoName() string {
	if len(m.redo) == 0 {
		return ""
	}
	return m.redo[len(m.redo)-1].Name()
}

// Len returns the sizes of the undo and redo stacks.
func (m *Manager) Len() (undo, redo int) {
	return len(m.undo), len(m.redo)
}

// Clear drops all history. An open edit is discarded without reverting.
func (m *Manager) Clear() {
	m.undo, m.redo = nil, nil
	m.open, m.depth = nil, 0
	m.changed()
}

func (m *Manager) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
