// Package figfile reads and writes drawings: a JSON document form, the
// zipped .drw archive with separate image assets, and a Graphviz export.
package figfile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/node"
	"github.com/ha1tch/drawkit/pkg/undo"
)

// Version is the document format version written by this package.
const Version = 1

// ErrVersion is returned for documents written by a newer format.
var ErrVersion = errors.New("figfile: unsupported document version")

// jsonDocument is the JSON representation of a drawing.
type jsonDocument struct {
	Version int          `json:"version"`
	Figures []*node.Node `json:"figures"`
}

// Marshal converts the top-level figures of doc to JSON. Image data is
// embedded.
func Marshal(doc *figure.Document, pretty bool) ([]byte, error) {
	return marshalNodes(figure.EncodeAll(doc.Figures()), pretty)
}

// MarshalFigures converts a selection to JSON, as used for the clipboard.
// References leaving the selection are not written.
func MarshalFigures(figs []figure.Figure, pretty bool) ([]byte, error) {
	return marshalNodes(figure.EncodeAll(figs), pretty)
}

func marshalNodes(nodes []*node.Node, pretty bool) ([]byte, error) {
	j := jsonDocument{Version: Version, Figures: nodes}
	if j.Figures == nil {
		j.Figures = []*node.Node{}
	}
	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}

func parseNodes(data []byte) ([]*node.Node, error) {
	var j jsonDocument
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	if j.Version < 1 || j.Version > Version {
		return nil, fmt.Errorf("%w %d", ErrVersion, j.Version)
	}
	return j.Figures, nil
}

// ParseFigures decodes JSON into detached figures.
func ParseFigures(data []byte) ([]figure.Figure, error) {
	nodes, err := parseNodes(data)
	if err != nil {
		return nil, err
	}
	return figure.DecodeAll(nodes)
}

// Unmarshal creates a document from JSON.
func Unmarshal(data []byte, cfg config.Config) (*figure.Document, error) {
	doc := figure.NewDocument(cfg)
	if _, err := ReadInto(doc, data); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadInto decodes JSON and appends the figures to doc. The target is
// only touched once the whole input has decoded; on error it is
// unchanged. The returned edit removes the added figures again.
func ReadInto(doc *figure.Document, data []byte) (undo.Edit, error) {
	figs, err := ParseFigures(data)
	if err != nil {
		return nil, err
	}
	return doc.AddAll(figs...)
}
