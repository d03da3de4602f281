// Package asset loads image data for image figures off the mutation
// goroutine. Decoding runs on a worker; the completion is handed back to
// the host through a Dispatcher so that figures are only touched where
// they are owned.
package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/undo"
)

// Dispatcher runs fn on the goroutine that owns the figures. A terminal
// host would post an event carrying fn to its event loop.
type Dispatcher func(fn func())

// Result is a decoded image.
type Result struct {
	Data          []byte // encoded image bytes
	Format        string // "png", "jpeg", ...
	Width, Height int    // pixel size after orientation
}

// LoadError reports a failed load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("asset: load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Job is one pending load.
type Job struct {
	cancelled atomic.Bool
	removed   bool // set on the mutation goroutine only
	unwatch   func()
}

// Cancel discards the result of the job when it arrives. It may be called
// from any goroutine.
func (j *Job) Cancel() { j.cancelled.Store(true) }

// Cancelled reports whether Cancel was called.
func (j *Job) Cancelled() bool { return j.cancelled.Load() }

// Loader starts loads and delivers their results.
type Loader struct {
	dispatch   Dispatcher
	autoOrient bool

	wg    sync.WaitGroup
	mu    sync.Mutex
	queue []func()
}

// NewLoader creates a loader. With a nil dispatcher completions are queued
// until Drain is called.
func NewLoader(cfg config.Config, dispatch Dispatcher) *Loader {
	l := &Loader{dispatch: dispatch, autoOrient: cfg.AutoOrient}
	if l.dispatch == nil {
		l.dispatch = l.enqueue
	}
	return l
}

func (l *Loader) enqueue(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Drain waits for running loads and then runs the queued completions on
// the calling goroutine. It only has work to do for the default
// dispatcher.
func (l *Loader) Drain() {
	l.wg.Wait()
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// LoadFile reads and decodes the file at path for img. It must be called
// on the mutation goroutine; done runs there too, unless the job was
// cancelled or img was removed in the meantime.
func (l *Loader) LoadFile(ctx context.Context, img *figure.Image, path string, done func(Result, error)) *Job {
	return l.start(ctx, img, filepath.Base(path), func() ([]byte, error) {
		return os.ReadFile(path)
	}, done)
}

// LoadBytes decodes data for img. name identifies the source in errors.
func (l *Loader) LoadBytes(ctx context.Context, img *figure.Image, name string, data []byte, done func(Result, error)) *Job {
	return l.start(ctx, img, name, func() ([]byte, error) { return data, nil }, done)
}

func (l *Loader) start(ctx context.Context, img *figure.Image, name string, read func() ([]byte, error), done func(Result, error)) *Job {
	job := &Job{}
	job.unwatch = img.Subscribe(func(e figure.Event) {
		if e.Kind == figure.Removed {
			job.removed = true
		}
	})

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		res, err := l.load(ctx, name, read)
		l.dispatch(func() {
			job.unwatch()
			if job.Cancelled() || job.removed {
				figure.Logger().Debug("asset result discarded", "source", name, "figure", img.ID(),
					"cancelled", job.Cancelled())
				return
			}
			if err != nil {
				figure.Logger().Warn("asset load failed", "source", name, "err", err)
			}
			done(res, err)
		})
	}()
	return job
}

func (l *Loader) load(ctx context.Context, name string, read func() ([]byte, error)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &LoadError{Source: name, Err: err}
	}
	data, err := read()
	if err != nil {
		return Result{}, &LoadError{Source: name, Err: err}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, &LoadError{Source: name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, &LoadError{Source: name, Err: err}
	}
	decoded, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(l.autoOrient))
	if err != nil {
		return Result{}, &LoadError{Source: name, Err: err}
	}

	b := decoded.Bounds()
	res := Result{Data: data, Format: format, Width: b.Dx(), Height: b.Dy()}
	if res.Width != cfg.Width || res.Height != cfg.Height {
		// Orientation rotated the pixels; store them as seen.
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, decoded, imaging.PNG); err != nil {
			return Result{}, &LoadError{Source: name, Err: err}
		}
		res.Data, res.Format = buf.Bytes(), "png"
	}
	return res, nil
}

// Apply stores res in img as an undoable edit. The image is resized to the
// pixel size of res, keeping its top-left corner.
func Apply(img *figure.Image, res Result) undo.Edit {
	return figure.SetImage(img, res.Data, res.Width, res.Height)
}
