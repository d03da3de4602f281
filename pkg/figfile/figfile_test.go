package figfile

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/node"
)

func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleDoc(t testing.TB) *figure.Document {
	t.Helper()
	doc := figure.NewDocument(config.Default())
	fa := doc.Factory()
	title := fa.NewText(geom.Pt(10, 10), "States")
	a := fa.NewEllipse(geom.Rect{X: 0, Y: 40, W: 60, H: 30})
	b := fa.NewDiamond(geom.Rect{X: 120, Y: 40, W: 40, H: 40}, true)
	attr.FillColor.Set(b.Attributes(), attr.RGB(240, 240, 200))
	name := fa.NewLabel(geom.Pt(0, 80), "start")
	name.SetLabelFor(title)
	line := fa.NewLine(geom.Pt(0, 0), geom.Pt(0, 0))
	line.Connect(figure.StartEnd, a)
	line.Connect(figure.FinishEnd, b)
	img := fa.NewImage(geom.Rect{X: 200, Y: 0, W: 1, H: 1})
	figure.SetImage(img, pngBytes(t, 4, 3), 4, 3)
	if _, err := doc.AddAll(title, fa.NewGroup(a, b), name, line, img); err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestJSONRoundTrip(t *testing.T) {
	doc := sampleDoc(t)
	data, err := Marshal(doc, true)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data, config.Default())
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Len() != doc.Len() {
		t.Errorf("Len = %d, want %d", back.Len(), doc.Len())
	}
	again, err := Marshal(back, true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(data), string(again)); diff != "" {
		t.Errorf("round trip differs (-want +got):\n%s", diff)
	}
	if got, want := back.Bounds(), doc.Bounds(); !got.ApproxEqual(want, 1e-9) {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestReadIntoLeavesDocumentOnError(t *testing.T) {
	doc := sampleDoc(t)
	before := doc.Len()

	bad := `{"version":1,"figures":[
		{"type":"ellipse","id":1,"geometry":{"x":0,"y":0,"w":5,"h":5}},
		{"type":"rect","id":2,"geometry":{"x":0,"y":0,"h":5}}
	]}`
	_, err := ReadInto(doc, []byte(bad))
	var fe *node.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want a FormatError", err)
	}
	if fe.Field != "w" || fe.ID != 2 {
		t.Errorf("FormatError = %+v", fe)
	}
	if doc.Len() != before {
		t.Errorf("document changed: %d figures, want %d", doc.Len(), before)
	}
}

func TestReadIntoUndo(t *testing.T) {
	doc := sampleDoc(t)
	before := doc.Len()
	data, _ := MarshalFigures(doc.Figures()[:1], false)
	e, err := ReadInto(doc, data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != before+1 {
		t.Fatalf("Len = %d", doc.Len())
	}
	e.Undo()
	if doc.Len() != before {
		t.Errorf("undo left %d figures", doc.Len())
	}
}

func TestVersion(t *testing.T) {
	for _, v := range []string{`{"figures":[]}`, `{"version":2,"figures":[]}`} {
		if _, err := Unmarshal([]byte(v), config.Default()); !errors.Is(err, ErrVersion) {
			t.Errorf("%s: err = %v", v, err)
		}
	}
	doc, err := Unmarshal([]byte(`{"version":1,"figures":[]}`), config.Default())
	if err != nil || doc.Len() != 0 {
		t.Errorf("empty document: %v", err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	doc := sampleDoc(t)
	var buf bytes.Buffer
	meta := Meta{Name: "sample", Description: "two states"}
	if err := WriteArchive(&buf, doc, meta); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	var entries []string
	for _, f := range zr.File {
		entries = append(entries, f.Name)
	}
	// The image is the seventh figure in pre-order.
	want := []string{"drawing.json", "meta.toml", "assets/7.png"}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}

	back, gotMeta, err := ReadBytes(buf.Bytes(), config.Default())
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if gotMeta.Name != "sample" || gotMeta.Description != "two states" || gotMeta.Version != Version {
		t.Errorf("meta = %+v", gotMeta)
	}
	j1, _ := Marshal(doc, false)
	j2, _ := Marshal(back, false)
	if !bytes.Equal(j1, j2) {
		t.Error("archive round trip changed the drawing")
	}
}

func TestArchiveCorruptAsset(t *testing.T) {
	doc := figure.NewDocument(config.Default())
	img := figure.NewImage(geom.Rect{W: 1, H: 1})
	img.SetImage([]byte("not an image"), 1, 1)
	doc.Add(img)

	var buf bytes.Buffer
	if err := WriteArchive(&buf, doc, Meta{}); err != nil {
		t.Fatal(err)
	}
	_, _, err := ReadBytes(buf.Bytes(), config.Default())
	var fe *node.FormatError
	if !errors.As(err, &fe) || fe.Field != "asset" {
		t.Fatalf("err = %v, want an asset FormatError", err)
	}
	if !strings.HasSuffix(fe.Reason, ".bin") {
		t.Errorf("Reason = %q", fe.Reason)
	}
}

func TestArchiveMissingDrawing(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Create("meta.toml")
	zw.Close()
	if _, _, err := ReadBytes(buf.Bytes(), config.Default()); err == nil {
		t.Error("archive without drawing.json accepted")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := t.TempDir() + "/sample.drw"
	doc := sampleDoc(t)
	if err := WriteFile(path, doc, Meta{Name: "file"}); err != nil {
		t.Fatal(err)
	}
	back, meta, err := ReadFile(path, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "file" || back.Len() != doc.Len() {
		t.Errorf("read back %d figures, meta %+v", back.Len(), meta)
	}
}

func TestGenerateDOT(t *testing.T) {
	dot := GenerateDOT(sampleDoc(t), "Sample")
	for _, want := range []string{
		"digraph drawing {",
		`label="Sample";`,
		"subgraph cluster_f2 {",
		`f3 [shape=ellipse, label="ellipse"];`,
		`f4 [shape=diamond, label="diamond"];`,
		`f1 [shape=plaintext, label="States"];`,
		"f3 -> f4;",
		"f5 -> f1 [style=dashed, arrowhead=none];",
		`f7 [shape=box3d, label="image"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "f6 [") {
		t.Error("line written as a node")
	}
}

func FuzzParseFigures(f *testing.F) {
	seed, _ := Marshal(sampleDoc(f), false)
	f.Add(seed)
	f.Add([]byte(`{"version":1,"figures":[{"type":"group","id":1,"children":[{"type":"group","id":1}]}]}`))
	f.Fuzz(func(t *testing.T, data []byte) {
		figs, err := ParseFigures(data)
		if err != nil {
			return
		}
		out, err := MarshalFigures(figs, false)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ParseFigures(out); err != nil {
			t.Errorf("re-parse failed: %v", err)
		}
	})
}
