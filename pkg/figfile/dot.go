package figfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/drawkit/pkg/figure"
)

var dotShapes = map[figure.Kind]string{
	figure.KindRectangle: "box",
	figure.KindDiamond:   "diamond",
	figure.KindEllipse:   "ellipse",
	figure.KindText:      "plaintext",
	figure.KindLabel:     "note",
	figure.KindImage:     "box3d",
}

// GenerateDOT converts a drawing to Graphviz DOT format. Groups become
// clusters, connected lines become edges and label bindings become dashed
// edges. Lines with a free end are left out.
func GenerateDOT(doc *figure.Document, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph drawing {\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	// Node names follow document order so that output is stable.
	names := make(map[figure.ID]string)
	for i, f := range doc.All() {
		names[f.ID()] = fmt.Sprintf("f%d", i+1)
	}

	var edges []string
	var write func(f figure.Figure, indent string)
	write = func(f figure.Figure, indent string) {
		switch v := f.(type) {
		case *figure.Group:
			sb.WriteString(fmt.Sprintf("%ssubgraph cluster_%s {\n", indent, names[f.ID()]))
			sb.WriteString(fmt.Sprintf("%s    label=\"group\";\n", indent))
			for _, c := range v.Children() {
				write(c, indent+"    ")
			}
			sb.WriteString(indent + "}\n")
		case *figure.Line:
			start, end := v.Connector(figure.StartEnd), v.Connector(figure.FinishEnd)
			if start == nil || end == nil {
				return
			}
			from, ok1 := names[start.Owner().ID()]
			to, ok2 := names[end.Owner().ID()]
			if ok1 && ok2 {
				edges = append(edges, fmt.Sprintf("    %s -> %s;\n", from, to))
			}
		default:
			label := string(f.Kind())
			if th, ok := f.(figure.TextHolder); ok {
				label = th.Text()
			}
			sb.WriteString(fmt.Sprintf("%s%s [shape=%s, label=\"%s\"];\n",
				indent, names[f.ID()], dotShapes[f.Kind()], escapeDOT(label)))
			if l, ok := f.(*figure.Label); ok && l.Target() != nil {
				if to, ok := names[l.Target().ID()]; ok {
					edges = append(edges, fmt.Sprintf("    %s -> %s [style=dashed, arrowhead=none];\n",
						names[f.ID()], to))
				}
			}
		}
	}
	for _, f := range doc.Figures() {
		write(f, "    ")
	}

	if len(edges) > 0 {
		sb.WriteString("\n")
		for _, e := range edges {
			sb.WriteString(e)
		}
	}
	sb.WriteString("}\n")

	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
