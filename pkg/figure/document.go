package figure

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/undo"
)

var (
	ErrNotInDocument = errors.New("figure: not in document")
	ErrInDocument    = errors.New("figure: already in document")
	ErrMixedParents  = errors.New("figure: figures have different parents")
)

// Document owns a tree of figures under a root group. Parent relations
// and identity lookups are tables kept by the document, updated from the
// structural events of the tree.
type Document struct {
	cfg     config.Config
	factory *Factory
	root    *Group
	index   map[ID]Figure
	parent  map[ID]*Group
}

// NewDocument creates an empty document.
func NewDocument(cfg config.Config) *Document {
	d := &Document{
		cfg:     cfg,
		factory: NewFactory(cfg),
		root:    newGroup(),
		index:   make(map[ID]Figure),
		parent:  make(map[ID]*Group),
	}
	d.root.AddObserver(observe(d.structureChanged))
	return d
}

func (d *Document) structureChanged(e Event) {
	switch e.Kind {
	case ChildAdded:
		d.parent[e.Child.ID()] = e.Source.(*Group)
		Walk(e.Child, func(f Figure) {
			d.index[f.ID()] = f
			if g, ok := f.(*Group); ok {
				for _, c := range g.children {
					d.parent[c.ID()] = g
				}
			}
		})
	case ChildRemoved:
		Walk(e.Child, func(f Figure) {
			delete(d.index, f.ID())
			delete(d.parent, f.ID())
		})
	}
}

// Config returns the configuration the document was created with.
func (d *Document) Config() config.Config { return d.cfg }

// Factory returns a figure factory using the document's configuration.
func (d *Document) Factory() *Factory { return d.factory }

// Root returns the top-level group.
func (d *Document) Root() *Group { return d.root }

// Figures returns the top-level figures in z-order.
func (d *Document) Figures() []Figure { return d.root.Children() }

// Len returns the number of figures in the document at any depth.
func (d *Document) Len() int { return len(d.index) }

// Lookup returns the figure with the given identity.
func (d *Document) Lookup(id ID) (Figure, bool) {
	f, ok := d.index[id]
	return f, ok
}

// Has reports whether f is part of the document.
func (d *Document) Has(f Figure) bool {
	_, ok := d.index[f.ID()]
	return ok
}

// Parent returns the composite owning f.
func (d *Document) Parent(f Figure) (*Group, bool) {
	g, ok := d.parent[f.ID()]
	return g, ok
}

// All returns every figure in the document in pre-order.
func (d *Document) All() []Figure {
	var out []Figure
	for _, f := range d.root.children {
		Walk(f, func(x Figure) { out = append(out, x) })
	}
	return out
}

// FindAt returns the topmost top-level figure containing p, or nil.
func (d *Document) FindAt(p geom.Point) Figure {
	for i := len(d.root.children) - 1; i >= 0; i-- {
		if f := d.root.children[i]; f.Contains(p) {
			return f
		}
	}
	return nil
}

// Bounds returns the union of all figure bounds.
func (d *Document) Bounds() geom.Rect { return d.root.Bounds() }

func (d *Document) checkParent(g *Group) error {
	if g != d.root && !d.Has(g) {
		return fmt.Errorf("parent %d: %w", g.ID(), ErrNotInDocument)
	}
	return nil
}

// Add appends f to the top level.
func (d *Document) Add(f Figure) (undo.Edit, error) {
	return d.AddTo(d.root, f)
}

// AddTo appends f to parent, which must be the root or a group in the
// document.
func (d *Document) AddTo(parent *Group, f Figure) (undo.Edit, error) {
	if err := d.checkParent(parent); err != nil {
		return nil, err
	}
	if d.Has(f) || f == Figure(d.root) {
		return nil, fmt.Errorf("figure %d: %w", f.ID(), ErrInDocument)
	}
	index := parent.Len()
	parent.Insert(index, f)
	Logger().Debug("figure added", "figure", f.ID(), "kind", f.Kind(), "parent", parent.ID())
	return undo.Func("Add",
		func() { parent.Remove(f) },
		func() { parent.Insert(index, f) },
	), nil
}

// AddAll appends figs to the top level as one edit.
func (d *Document) AddAll(figs ...Figure) (undo.Edit, error) {
	for _, f := range figs {
		if d.Has(f) {
			return nil, fmt.Errorf("figure %d: %w", f.ID(), ErrInDocument)
		}
	}
	c := undo.NewCompound("Add")
	for _, f := range figs {
		e, err := d.Add(f)
		if err != nil {
			c.Undo()
			return nil, err
		}
		c.Add(e)
	}
	return c, nil
}

type labelBinding struct {
	label  *Label
	target TextHolder
}

type lineBinding struct {
	line   *Line
	end    End
	target Connectable
}

// bindings collects the labels and lines pointing into the subtree of
// each figure, so that undoing a removal can restore them.
func (d *Document) bindings(figs ...Figure) ([]labelBinding, []lineBinding) {
	sub := make(map[ID]bool)
	for _, f := range figs {
		Walk(f, func(x Figure) { sub[x.ID()] = true })
	}
	var labels []labelBinding
	var lines []lineBinding
	for _, f := range d.All() {
		switch v := f.(type) {
		case *Label:
			if t := v.Target(); t != nil && sub[t.ID()] {
				labels = append(labels, labelBinding{v, t})
			}
		case *Line:
			for _, e := range [2]End{StartEnd, FinishEnd} {
				if c := v.Connector(e); c != nil && sub[c.Owner().ID()] {
					lines = append(lines, lineBinding{v, e, c.Owner()})
				}
			}
		}
	}
	return labels, lines
}

func rebind(labels []labelBinding, lines []lineBinding) {
	for _, b := range labels {
		b.label.SetLabelFor(b.target)
	}
	for _, b := range lines {
		b.line.basicConnect(b.end, b.target)
	}
}

// Remove detaches f from its parent. Labels bound to removed text holders
// and lines attached to removed figures let go of them; undoing the edit
// reinserts f at its old position and restores those bindings.
func (d *Document) Remove(f Figure) (undo.Edit, error) {
	parent, ok := d.Parent(f)
	if !ok {
		return nil, fmt.Errorf("figure %d: %w", f.ID(), ErrNotInDocument)
	}
	index := parent.IndexOf(f)
	labels, lines := d.bindings(f)
	parent.Remove(f)
	Logger().Debug("figure removed", "figure", f.ID(), "labels", len(labels), "lines", len(lines))
	return undo.Func("Delete",
		func() {
			parent.Insert(index, f)
			rebind(labels, lines)
		},
		func() { parent.Remove(f) },
	), nil
}

// RemoveAll removes several figures as one edit.
func (d *Document) RemoveAll(figs ...Figure) (undo.Edit, error) {
	for _, f := range figs {
		if !d.Has(f) {
			return nil, fmt.Errorf("figure %d: %w", f.ID(), ErrNotInDocument)
		}
	}
	c := undo.NewCompound("Delete")
	for _, f := range figs {
		// An earlier removal may have taken f along with its parent.
		if !d.Has(f) {
			continue
		}
		e, err := d.Remove(f)
		if err != nil {
			c.Undo()
			return nil, err
		}
		c.Add(e)
	}
	return c, nil
}

// sameParent returns the common parent of figs and their indices sorted
// in z-order.
func (d *Document) sameParent(figs []Figure) (*Group, []Figure, error) {
	if len(figs) == 0 {
		return nil, nil, errors.New("figure: nothing selected")
	}
	parent, ok := d.Parent(figs[0])
	if !ok {
		return nil, nil, fmt.Errorf("figure %d: %w", figs[0].ID(), ErrNotInDocument)
	}
	for _, f := range figs[1:] {
		p, ok := d.Parent(f)
		if !ok {
			return nil, nil, fmt.Errorf("figure %d: %w", f.ID(), ErrNotInDocument)
		}
		if p != parent {
			return nil, nil, ErrMixedParents
		}
	}
	sorted := slices.Clone(figs)
	slices.SortFunc(sorted, func(a, b Figure) int {
		return parent.IndexOf(a) - parent.IndexOf(b)
	})
	return parent, slices.Compact(sorted), nil
}

// GroupFigures moves figs, which must share a parent, into a new group
// placed where the lowest of them was.
func (d *Document) GroupFigures(figs ...Figure) (undo.Edit, *Group, error) {
	parent, sorted, err := d.sameParent(figs)
	if err != nil {
		return nil, nil, err
	}
	indices := make([]int, len(sorted))
	for i, f := range sorted {
		indices[i] = parent.IndexOf(f)
	}
	g := d.factory.NewGroup()

	apply := func() {
		for _, f := range sorted {
			parent.basicRemove(f)
			g.Add(f)
		}
		parent.Insert(indices[0], g)
	}
	revert := func() {
		parent.basicRemove(g)
		for i, f := range sorted {
			g.basicRemove(f)
			parent.Insert(indices[i], f)
		}
	}
	apply()
	return undo.Func("Group", revert, apply), g, nil
}

// Ungroup replaces g by its children.
func (d *Document) Ungroup(g *Group) (undo.Edit, []Figure, error) {
	parent, ok := d.Parent(g)
	if !ok {
		return nil, nil, fmt.Errorf("figure %d: %w", g.ID(), ErrNotInDocument)
	}
	index := parent.IndexOf(g)
	children := g.Children()
	_, lines := d.bindings(g)
	// Bindings into the children survive; only those on g itself matter.
	lines = slices.DeleteFunc(lines, func(b lineBinding) bool { return b.target != Connectable(g) })

	apply := func() {
		for i, c := range children {
			g.basicRemove(c)
			parent.Insert(index+1+i, c)
		}
		parent.Remove(g)
	}
	revert := func() {
		for _, c := range children {
			parent.basicRemove(c)
			g.Add(c)
		}
		parent.Insert(index, g)
		rebind(nil, lines)
	}
	apply()
	return undo.Func("Ungroup", revert, apply), children, nil
}

// Duplicate clones figs with a shared remap table, moves the copies by
// dx, dy and adds them to the top level.
func (d *Document) Duplicate(dx, dy float64, figs ...Figure) (undo.Edit, []Figure, []DroppedRef, error) {
	copies, dropped := CloneAll(figs...)
	m := geom.Translate(dx, dy)
	for _, c := range copies {
		c.Transform(m)
	}
	e, err := d.AddAll(copies...)
	if err != nil {
		return nil, nil, nil, err
	}
	return e, copies, dropped, nil
}
