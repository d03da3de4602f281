package figure

// Remap maps the identity of a source figure to its copy.
type Remap map[ID]Figure

// DroppedRef is a cross-reference that could not be carried over to a
// clone because its target lies outside the cloned figures.
type DroppedRef struct {
	Figure Figure // the copy that lost the reference
	Field  string // "labelFor", "start" or "end"
	Target ID     // identity of the original target
}

// CloneResult is the outcome of Clone.
type CloneResult struct {
	Figure  Figure
	Remap   Remap
	Dropped []DroppedRef
}

// Clone deep-copies f. The copy and all its descendants get new
// identities. References between figures inside f are rewritten to point
// at the corresponding copies; references leaving f are cleared and
// listed in Dropped.
func Clone(f Figure) CloneResult {
	copies, remap, dropped := cloneAll([]Figure{f})
	return CloneResult{Figure: copies[0], Remap: remap, Dropped: dropped}
}

// CloneAll clones several figures with one remap table, so references
// between them survive.
func CloneAll(figs ...Figure) (copies []Figure, dropped []DroppedRef) {
	copies, _, dropped = cloneAll(figs)
	return copies, dropped
}

func cloneAll(figs []Figure) ([]Figure, Remap, []DroppedRef) {
	remap := make(Remap)
	copies := make([]Figure, len(figs))
	for i, f := range figs {
		copies[i] = f.copyFigure(remap)
	}

	var dropped []DroppedRef
	for _, c := range copies {
		Walk(c, func(x Figure) {
			x.remapRefs(remap, &dropped)
		})
	}
	for _, d := range dropped {
		Logger().Debug("clone dropped reference",
			"figure", d.Figure.ID(), "field", d.Field, "target", d.Target)
	}
	return copies, remap, dropped
}
