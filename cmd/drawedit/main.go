// Command drawedit is a terminal editor for drawings.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/drawkit/pkg/asset"
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figfile"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/geom"
	"github.com/ha1tch/drawkit/pkg/undo"
)

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	ModeMove        // keyboard-driven move of the selection
	ModeInput       // text prompt
	ModeHelp        // help overlay
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

// Editor holds the state of one editing session.
type Editor struct {
	screen   tcell.Screen
	doc      *figure.Document
	history  *undo.Manager
	loader   *asset.Loader
	config   config.Config
	filename string
	meta     figfile.Meta
	modified bool
	mode     Mode

	message           string
	messageType       MessageType
	messageFlashStart int64

	view      viewport
	selection []figure.Figure
	cursor    int // index into doc.Figures() of the focused figure, -1 = none

	inputPrompt string
	inputBuffer string
	inputAction func(string)
}

// newEditor creates an editor for an empty document.
func newEditor(cfg config.Config) *Editor {
	ed := &Editor{
		config: cfg,
		doc:    figure.NewDocument(cfg),
		view:   newViewport(),
		cursor: -1,
	}
	ed.history = undo.NewManager(cfg.UndoLimit)
	ed.history.OnChange = func() { ed.modified = true }
	// Completions queue until Drain while there is no event loop.
	ed.loader = asset.NewLoader(cfg, nil)
	return ed
}

// dispatch hands fn to the event loop.
func (ed *Editor) dispatch(fn func()) {
	ed.screen.PostEvent(tcell.NewEventInterrupt(fn))
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "-v" {
		// The terminal is taken; log to a file next to the config.
		if f, err := os.OpenFile(config.Path()+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			defer f.Close()
			figure.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		args = args[1:]
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring %s: %v\n", config.Path(), err)
		cfg = config.Default()
	}
	ed := newEditor(cfg)

	if len(args) > 0 {
		ed.filename = args[0]
		if err := ed.loadFile(ed.filename); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ed.filename, err)
			os.Exit(1)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()
	ed.screen = screen
	ed.loader = asset.NewLoader(ed.config, ed.dispatch)

	ed.run()

	screen.Fini()
}

func (ed *Editor) run() {
	// Periodic refresh while a message is flashing.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}()

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Asset completions carry a function to run here.
			if fn, ok := ev.Data().(func()); ok {
				fn()
			}
		}
	}
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		ed.copyToClipboard()
		return false
	case tcell.KeyCtrlV:
		ed.pasteFromClipboard()
		return false
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyCtrlZ:
		ed.undo()
		return false
	case tcell.KeyCtrlY:
		ed.redo()
		return false
	case tcell.KeyCtrlQ:
		return true
	}

	switch ed.mode {
	case ModeCanvas:
		return ed.handleCanvasKey(ev)
	case ModeMove:
		return ed.handleMoveKey(ev)
	case ModeInput:
		return ed.handleInputKey(ev)
	case ModeHelp:
		ed.mode = ModeCanvas
	}
	return false
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	if ev.Modifiers()&tcell.ModShift != 0 {
		switch ev.Key() {
		case tcell.KeyUp:
			ed.view.Pan(0, -4)
			return false
		case tcell.KeyDown:
			ed.view.Pan(0, 4)
			return false
		case tcell.KeyLeft:
			ed.view.Pan(-4, 0)
			return false
		case tcell.KeyRight:
			ed.view.Pan(4, 0)
			return false
		}
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		ed.selection = nil
	case tcell.KeyTab:
		ed.cycleSelection()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		ed.nudge(ev.Key())
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			ed.toggleFocused()
		case 'r':
			ed.addFigure(ed.doc.Factory().NewRectangle(ed.newFigureRect()))
		case 'e':
			ed.addFigure(ed.doc.Factory().NewEllipse(ed.newFigureRect()))
		case 'd':
			ed.addFigure(ed.doc.Factory().NewDiamond(ed.newFigureRect(), false))
		case 't':
			ed.prompt("Text: ", func(s string) {
				ed.addFigure(ed.doc.Factory().NewText(ed.view.Center(), s))
			})
		case 'l':
			ed.addLabel()
		case 'i':
			ed.prompt("Image file: ", ed.addImage)
		case 'c':
			ed.connectSelected()
		case 'x':
			ed.editText()
		case 'g':
			ed.groupSelected()
		case 'G':
			ed.ungroupSelected()
		case 'D':
			ed.duplicateSelected()
		case 'm':
			ed.startMove()
		case 'f':
			ed.cycleFill()
		case 'p':
			ed.cyclePlacement()
		case '+':
			ed.view.Zoom(0.5)
		case '-':
			ed.view.Zoom(2)
		case 'u':
			ed.undo()
		case 'U':
			ed.redo()
		case 'h', '?':
			ed.mode = ModeHelp
		case 'q':
			return true
		}
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		if ed.inputAction != nil {
			ed.inputAction(ed.inputBuffer)
		}
		ed.inputBuffer = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(ed.inputBuffer); len(r) > 0 {
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
	return false
}

func (ed *Editor) prompt(label string, action func(string)) {
	ed.inputPrompt = label
	ed.inputBuffer = ""
	ed.inputAction = action
	ed.mode = ModeInput
}

// startMove opens a compound edit; arrow keys move the selection until
// Enter commits or Escape reverts.
func (ed *Editor) startMove() {
	if len(ed.selection) == 0 {
		ed.showMessage("Select a figure first (Tab to cycle)", MsgInfo)
		return
	}
	ed.history.BeginEdit("Move")
	ed.mode = ModeMove
}

func (ed *Editor) handleMoveKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		ed.history.CommitEdit()
		ed.mode = ModeCanvas
		ed.showMessage("Moved", MsgSuccess)
	case tcell.KeyEscape:
		ed.history.CancelEdit()
		ed.mode = ModeCanvas
		ed.showMessage("Move cancelled", MsgInfo)
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		ed.nudge(ev.Key())
	}
	return false
}

// nudge moves the selection by one cell.
func (ed *Editor) nudge(key tcell.Key) {
	if len(ed.selection) == 0 {
		return
	}
	var dx, dy float64
	switch key {
	case tcell.KeyUp:
		dy = -ed.view.UnitsY()
	case tcell.KeyDown:
		dy = ed.view.UnitsY()
	case tcell.KeyLeft:
		dx = -ed.view.UnitsX()
	case tcell.KeyRight:
		dx = ed.view.UnitsX()
	}
	ed.history.BeginEdit("Move")
	for _, f := range ed.selection {
		ed.history.Fire(figure.MoveFigure(f, dx, dy))
	}
	ed.history.CommitEdit()
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 || ed.mode != ModeCanvas {
		return
	}
	x, y := ev.Position()
	f := ed.doc.FindAt(ed.view.ToWorld(x, y))
	if f == nil {
		ed.selection = nil
		return
	}
	if ev.Modifiers()&tcell.ModShift != 0 {
		ed.toggle(f)
	} else {
		ed.selection = []figure.Figure{f}
	}
	ed.cursor = indexOf(ed.doc.Figures(), f)
}

func indexOf(figs []figure.Figure, f figure.Figure) int {
	for i, x := range figs {
		if x == f {
			return i
		}
	}
	return -1
}

func (ed *Editor) isSelected(f figure.Figure) bool {
	return indexOf(ed.selection, f) >= 0
}

func (ed *Editor) toggle(f figure.Figure) {
	if i := indexOf(ed.selection, f); i >= 0 {
		ed.selection = append(ed.selection[:i], ed.selection[i+1:]...)
		return
	}
	ed.selection = append(ed.selection, f)
}

// cycleSelection focuses and selects the next top-level figure.
func (ed *Editor) cycleSelection() {
	figs := ed.doc.Figures()
	if len(figs) == 0 {
		ed.cursor = -1
		ed.selection = nil
		return
	}
	ed.cursor = (ed.cursor + 1) % len(figs)
	ed.selection = []figure.Figure{figs[ed.cursor]}
}

// toggleFocused adds the figure after the focused one to the selection,
// so that Tab then Space builds multi-selections from the keyboard.
func (ed *Editor) toggleFocused() {
	figs := ed.doc.Figures()
	if len(figs) == 0 {
		return
	}
	ed.cursor = (ed.cursor + 1) % len(figs)
	ed.toggle(figs[ed.cursor])
}

// pruneSelection drops figures that are no longer top-level members of
// the document, e.g. after an undo.
func (ed *Editor) pruneSelection() {
	figs := ed.doc.Figures()
	kept := ed.selection[:0]
	for _, f := range ed.selection {
		if indexOf(figs, f) >= 0 {
			kept = append(kept, f)
		}
	}
	ed.selection = kept
	if ed.cursor >= len(figs) {
		ed.cursor = len(figs) - 1
	}
}

func (ed *Editor) newFigureRect() geom.Rect {
	c := ed.view.Center()
	return geom.Rect{X: c.X - 40, Y: c.Y - 20, W: 80, H: 40}
}

func (ed *Editor) addFigure(f figure.Figure) {
	e, err := ed.doc.Add(f)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.history.Fire(e)
	ed.selection = []figure.Figure{f}
	ed.cursor = indexOf(ed.doc.Figures(), f)
	ed.showMessage(fmt.Sprintf("Added %s", f.Kind()), MsgSuccess)
}

// addLabel adds a label bound to the selected text figure, if any.
func (ed *Editor) addLabel() {
	var target figure.TextHolder
	if len(ed.selection) == 1 {
		target, _ = ed.selection[0].(figure.TextHolder)
	}
	ed.prompt("Label: ", func(s string) {
		origin := ed.view.Center()
		if target != nil {
			b := target.Bounds()
			origin = geom.Pt(b.X, b.MaxY()+2)
		}
		l := ed.doc.Factory().NewLabel(origin, s)
		ed.history.BeginEdit("Add label")
		ed.addFigure(l)
		if target != nil {
			ed.history.Fire(figure.SetLabelFor(l, target))
		}
		ed.history.CommitEdit()
	})
}

// addImage adds an empty image figure and loads the file into it in the
// background. The image is resized once the data arrives.
func (ed *Editor) addImage(path string) {
	img := ed.doc.Factory().NewImage(ed.newFigureRect())
	ed.addFigure(img)
	ed.showMessage("Loading "+filepath.Base(path), MsgInfo)
	ed.loader.LoadFile(context.Background(), img, path, func(res asset.Result, err error) {
		if err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.history.Fire(asset.Apply(img, res))
		ed.showMessage(fmt.Sprintf("Loaded %dx%d %s", res.Width, res.Height, res.Format), MsgSuccess)
	})
}

// connectSelected joins two selected connectable figures with a line.
func (ed *Editor) connectSelected() {
	if len(ed.selection) != 2 {
		ed.showMessage("Select two figures to connect", MsgInfo)
		return
	}
	a, okA := ed.selection[0].(figure.Connectable)
	b, okB := ed.selection[1].(figure.Connectable)
	if !okA || !okB {
		ed.showMessage("Figures cannot be connected", MsgError)
		return
	}
	line := ed.doc.Factory().NewLine(a.Bounds().Center(), b.Bounds().Center())
	ed.history.BeginEdit("Connect")
	ed.addFigure(line)
	for _, c := range []struct {
		end    figure.End
		target figure.Connectable
	}{{figure.StartEnd, a}, {figure.FinishEnd, b}} {
		e, err := figure.ConnectLine(line, c.end, c.target)
		if err != nil {
			ed.history.CancelEdit()
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.history.Fire(e)
	}
	ed.history.CommitEdit()
}

func (ed *Editor) editText() {
	if len(ed.selection) != 1 {
		return
	}
	th, ok := ed.selection[0].(figure.TextHolder)
	if !ok || !th.Editable() {
		ed.showMessage("Not editable text", MsgInfo)
		return
	}
	ed.prompt("Text: ", func(s string) {
		ed.history.Fire(figure.SetText(th, s))
	})
	ed.inputBuffer = th.Text()
}

func (ed *Editor) deleteSelected() {
	if len(ed.selection) == 0 {
		return
	}
	e, err := ed.doc.RemoveAll(ed.selection...)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.history.Fire(e)
	ed.showMessage(fmt.Sprintf("Deleted %d figures", len(ed.selection)), MsgSuccess)
	ed.selection = nil
	ed.pruneSelection()
}

func (ed *Editor) groupSelected() {
	if len(ed.selection) < 2 {
		ed.showMessage("Select at least two figures to group", MsgInfo)
		return
	}
	e, g, err := ed.doc.GroupFigures(ed.selection...)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.history.Fire(e)
	ed.selection = []figure.Figure{g}
	ed.cursor = indexOf(ed.doc.Figures(), g)
}

func (ed *Editor) ungroupSelected() {
	if len(ed.selection) != 1 {
		return
	}
	g, ok := ed.selection[0].(*figure.Group)
	if !ok {
		ed.showMessage("Not a group", MsgInfo)
		return
	}
	e, kids, err := ed.doc.Ungroup(g)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.history.Fire(e)
	ed.selection = kids
}

func (ed *Editor) duplicateSelected() {
	if len(ed.selection) == 0 {
		return
	}
	e, copies, dropped, err := ed.doc.Duplicate(2*ed.view.UnitsX(), ed.view.UnitsY(), ed.selection...)
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.history.Fire(e)
	ed.selection = copies
	if len(dropped) > 0 {
		ed.showMessage(fmt.Sprintf("Duplicated; %d references left behind", len(dropped)), MsgWarning)
		return
	}
	ed.showMessage(fmt.Sprintf("Duplicated %d figures", len(copies)), MsgSuccess)
}

var fillCycle = []attr.Color{
	attr.RGB(255, 255, 255),
	attr.RGB(255, 230, 150),
	attr.RGB(170, 220, 255),
	attr.RGB(200, 240, 200),
	attr.None,
}

// cycleFill steps the fill colour of every selected figure as one edit.
func (ed *Editor) cycleFill() {
	if len(ed.selection) == 0 {
		return
	}
	cur := attr.FillColor.Get(ed.selection[0].Attributes())
	next := fillCycle[0]
	for i, c := range fillCycle {
		if c == cur {
			next = fillCycle[(i+1)%len(fillCycle)]
		}
	}
	ed.history.BeginEdit("Fill")
	for _, f := range ed.selection {
		ed.history.Fire(figure.SetAttribute(f, attr.FillColor, next))
	}
	ed.history.CommitEdit()
	ed.showMessage("Fill "+next.String(), MsgInfo)
}

func (ed *Editor) cyclePlacement() {
	if len(ed.selection) == 0 {
		return
	}
	next := (attr.StrokePlacement.Get(ed.selection[0].Attributes()) + 1) % 3
	ed.history.BeginEdit("Stroke placement")
	for _, f := range ed.selection {
		ed.history.Fire(figure.SetAttribute(f, attr.StrokePlacement, next))
	}
	ed.history.CommitEdit()
	ed.showMessage("Stroke "+next.String(), MsgInfo)
}

func (ed *Editor) undo() {
	name := ed.history.UndoName()
	if err := ed.history.Undo(); err != nil {
		ed.showMessage(err.Error(), MsgInfo)
		return
	}
	ed.pruneSelection()
	ed.showMessage("Undo "+name, MsgSuccess)
}

func (ed *Editor) redo() {
	name := ed.history.RedoName()
	if err := ed.history.Redo(); err != nil {
		ed.showMessage(err.Error(), MsgInfo)
		return
	}
	ed.pruneSelection()
	ed.showMessage("Redo "+name, MsgSuccess)
}

// copyToClipboard places the selection, or the whole drawing, on the
// system clipboard as JSON.
func (ed *Editor) copyToClipboard() {
	figs := ed.selection
	if len(figs) == 0 {
		figs = ed.doc.Figures()
	}
	data, err := figfile.MarshalFigures(figs, false)
	if err != nil {
		ed.showMessage("Clipboard error: "+err.Error(), MsgError)
		return
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		ed.showMessage("Clipboard error: "+err.Error(), MsgError)
		return
	}
	ed.showMessage(fmt.Sprintf("Copied %d figures", len(figs)), MsgSuccess)
}

func (ed *Editor) pasteFromClipboard() {
	text, err := clipboard.ReadAll()
	if err != nil {
		ed.showMessage("Clipboard error: "+err.Error(), MsgError)
		return
	}
	if err := ed.paste([]byte(text)); err != nil {
		ed.showMessage("Paste failed: "+err.Error(), MsgError)
	}
}

// paste decodes JSON figures, offsets them and adds them as one edit.
func (ed *Editor) paste(data []byte) error {
	figs, err := figfile.ParseFigures(data)
	if err != nil {
		return err
	}
	for _, f := range figs {
		f.Transform(geom.Translate(2*ed.view.UnitsX(), ed.view.UnitsY()))
	}
	e, err := ed.doc.AddAll(figs...)
	if err != nil {
		return err
	}
	ed.history.Fire(e)
	ed.selection = figs
	ed.showMessage(fmt.Sprintf("Pasted %d figures", len(figs)), MsgSuccess)
	return nil
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.prompt("Save as: ", func(s string) {
			if s == "" {
				return
			}
			if filepath.Ext(s) == "" {
				s += ".drw"
			}
			ed.filename = s
			ed.save()
		})
		return
	}
	if err := ed.saveFile(ed.filename); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	ed.showMessage("Saved "+ed.filename, MsgSuccess)

	ed.config.LastDir = filepath.Dir(ed.filename)
	if err := config.Save(config.Path(), ed.config); err != nil {
		figure.Logger().Warn("saving configuration", "err", err)
	}
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = nowMillis()
}

var nowMillis = func() int64 { return time.Now().UnixMilli() }

// File operations

func (ed *Editor) loadFile(path string) error {
	var doc *figure.Document
	var meta figfile.Meta
	var err error
	switch ext := filepath.Ext(path); ext {
	case ".drw":
		doc, meta, err = figfile.ReadFile(path, ed.config)
	case ".json":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			doc, err = figfile.Unmarshal(data, ed.config)
		}
	default:
		return fmt.Errorf("unknown file format: %s", ext)
	}
	if err != nil {
		return err
	}
	ed.doc, ed.meta = doc, meta
	ed.history.Clear()
	ed.selection, ed.cursor = nil, -1
	ed.modified = false
	ed.view.Fit(doc.Bounds())
	return nil
}

func (ed *Editor) saveFile(path string) error {
	switch ext := filepath.Ext(path); ext {
	case ".drw":
		return figfile.WriteFile(path, ed.doc, ed.meta)
	case ".json":
		data, err := figfile.Marshal(ed.doc, true)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unknown file format: %s", ext)
	}
}
