package asset

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/geom"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type outcome struct {
	calls int
	res   Result
	err   error
}

func (o *outcome) done(res Result, err error) {
	o.calls++
	o.res, o.err = res, err
}

func TestLoadBytes(t *testing.T) {
	l := NewLoader(config.Default(), nil)
	img := figure.NewImage(geom.Rect{X: 5, Y: 6, W: 1, H: 1})
	var o outcome
	l.LoadBytes(context.Background(), img, "gray.png", pngBytes(t, 30, 20), o.done)

	if o.calls != 0 {
		t.Fatal("completion ran before Drain")
	}
	l.Drain()
	if o.calls != 1 || o.err != nil {
		t.Fatalf("calls = %d, err = %v", o.calls, o.err)
	}
	if o.res.Width != 30 || o.res.Height != 20 || o.res.Format != "png" {
		t.Errorf("Result = %dx%d %s", o.res.Width, o.res.Height, o.res.Format)
	}
	if img.ObserverCount() != 0 {
		t.Error("job still watching the figure")
	}

	e := Apply(img, o.res)
	if img.Bounds() != (geom.Rect{X: 5, Y: 6, W: 30, H: 20}) || !img.HasImage() {
		t.Errorf("Bounds = %+v", img.Bounds())
	}
	e.Undo()
	if img.HasImage() || img.Bounds() != (geom.Rect{X: 5, Y: 6, W: 1, H: 1}) {
		t.Error("undo did not restore the empty image")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(path, pngBytes(t, 3, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(config.Default(), nil)
	var ok, missing outcome
	l.LoadFile(context.Background(), figure.NewImage(geom.Rect{}), path, ok.done)
	l.LoadFile(context.Background(), figure.NewImage(geom.Rect{}), filepath.Join(dir, "nope.png"), missing.done)
	l.Drain()

	if ok.err != nil || ok.res.Width != 3 {
		t.Errorf("load: %+v", ok)
	}
	var le *LoadError
	if !errors.As(missing.err, &le) || le.Source != "nope.png" {
		t.Fatalf("err = %v, want a LoadError", missing.err)
	}
	if !errors.Is(missing.err, fs.ErrNotExist) {
		t.Errorf("LoadError does not unwrap to ErrNotExist: %v", missing.err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	l := NewLoader(config.Default(), nil)
	var o outcome
	l.LoadBytes(context.Background(), figure.NewImage(geom.Rect{}), "junk", []byte("junk"), o.done)
	l.Drain()
	var le *LoadError
	if !errors.As(o.err, &le) {
		t.Errorf("err = %v, want a LoadError", o.err)
	}
}

func TestCancelDiscardsResult(t *testing.T) {
	l := NewLoader(config.Default(), nil)
	img := figure.NewImage(geom.Rect{})
	var o outcome
	job := l.LoadBytes(context.Background(), img, "a.png", pngBytes(t, 2, 2), o.done)
	job.Cancel()
	l.Drain()
	if o.calls != 0 {
		t.Error("cancelled job delivered a result")
	}
	if !job.Cancelled() || img.ObserverCount() != 0 {
		t.Error("cancelled job not cleaned up")
	}
}

func TestRemovedFigureDiscardsResult(t *testing.T) {
	l := NewLoader(config.Default(), nil)
	img := figure.NewImage(geom.Rect{})
	g := figure.NewGroup(img)
	var o outcome
	l.LoadBytes(context.Background(), img, "a.png", pngBytes(t, 2, 2), o.done)
	g.Remove(img)
	l.Drain()
	if o.calls != 0 {
		t.Error("result delivered to a removed figure")
	}
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLoader(config.Default(), nil)
	var o outcome
	l.LoadBytes(ctx, figure.NewImage(geom.Rect{}), "a.png", pngBytes(t, 2, 2), o.done)
	l.Drain()
	if !errors.Is(o.err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", o.err)
	}
}

func TestCustomDispatcher(t *testing.T) {
	events := make(chan func(), 1)
	l := NewLoader(config.Default(), func(fn func()) { events <- fn })
	var o outcome
	l.LoadBytes(context.Background(), figure.NewImage(geom.Rect{}), "a.png", pngBytes(t, 7, 1), o.done)

	fn := <-events
	if o.calls != 0 {
		t.Fatal("completion ran on the worker")
	}
	fn()
	if o.calls != 1 || o.res.Width != 7 {
		t.Errorf("outcome = %+v", o)
	}
}
