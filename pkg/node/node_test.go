package node

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestFloat(t *testing.T) {
	n := New("rect", 3)
	n.SetFloat("x", 10)
	n.SetFloat("w", math.Inf(1))

	if v, err := n.Float("x"); err != nil || v != 10 {
		t.Errorf("Float(x) = %v, %v", v, err)
	}

	tests := []struct {
		field  string
		reason string
	}{
		{"y", "missing"},
		{"w", "not finite"},
	}
	for _, tt := range tests {
		_, err := n.Float(tt.field)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("Float(%s) error = %v, want *FormatError", tt.field, err)
		}
		if fe.Field != tt.field || fe.Reason != tt.reason || fe.Type != "rect" || fe.ID != 3 {
			t.Errorf("Float(%s) = %+v", tt.field, fe)
		}
	}
}

func TestFloats(t *testing.T) {
	n := New("ellipse", 1)
	n.SetFloat("x", 1)
	n.SetFloat("y", 2)
	if _, err := n.Floats("x", "y", "w"); err == nil || !strings.Contains(err.Error(), "w: missing") {
		t.Errorf("Floats error = %v", err)
	}
	v, err := n.Floats("y", "x")
	if err != nil || v[0] != 2 || v[1] != 1 {
		t.Errorf("Floats = %v, %v", v, err)
	}
}

func TestWalkOrder(t *testing.T) {
	root := New("group", 1)
	a := New("group", 2)
	a.Children = []*Node{New("rect", 3)}
	root.Children = []*Node{a, New("text", 4)}

	var ids []int
	_ = root.Walk(func(n *Node) error {
		ids = append(ids, n.ID)
		return nil
	})
	want := []int{1, 2, 3, 4}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Walk order = %v, want %v", ids, want)
		}
	}

	stop := errors.New("stop")
	if err := root.Walk(func(n *Node) error {
		if n.ID == 3 {
			return stop
		}
		return nil
	}); err != stop {
		t.Errorf("Walk error = %v, want stop", err)
	}
}

func TestFormatErrorUnwrap(t *testing.T) {
	inner := errors.New("bad value")
	err := &FormatError{Type: "text", ID: 7, Field: "fontSize", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("FormatError does not unwrap")
	}
	if got := err.Error(); got != "format error: text #7: fontSize: bad value" {
		t.Errorf("Error() = %q", got)
	}
}
