package main

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/geom"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleTitle      = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleFigure     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleSelected   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLine       = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleGroup      = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Flash pattern: normal(0-125) -> inverted(125-250) -> normal(250-375) -> inverted(375-500) -> normal(500+)
const flashPeriod = 500

// flashInverted reports whether a message shown elapsed milliseconds ago
// is drawn inverted.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

// flashes reports whether messages of type t flash when shown.
func flashes(t MessageType) bool {
	return t != MsgInfo
}

// viewport maps drawing coordinates to terminal cells. Each cell covers
// unitsX by unitsY drawing units.
type viewport struct {
	origin         geom.Point // drawing coordinate of cell (0,0)
	unitsX, unitsY float64
	cols, rows     int
}

const (
	minUnits = 1
	maxUnits = 256
)

func newViewport() viewport {
	return viewport{unitsX: 8, unitsY: 16, cols: 80, rows: 22}
}

func (v viewport) UnitsX() float64 { return v.unitsX }
func (v viewport) UnitsY() float64 { return v.unitsY }

// matrix returns the drawing-to-cell transformation.
func (v viewport) matrix() geom.Matrix {
	return geom.Scale(1/v.unitsX, 1/v.unitsY).Multiply(geom.Translate(-v.origin.X, -v.origin.Y))
}

// ToCell returns the cell containing p.
func (v viewport) ToCell(p geom.Point) (x, y int) {
	q := v.matrix().TransformPoint(p)
	return int(math.Floor(q.X)), int(math.Floor(q.Y))
}

// ToWorld returns the drawing coordinate of the center of cell x, y.
func (v viewport) ToWorld(x, y int) geom.Point {
	inv, ok := v.matrix().Invert()
	if !ok {
		return v.origin
	}
	return inv.TransformPoint(geom.Pt(float64(x)+0.5, float64(y)+0.5))
}

// Center returns the drawing coordinate at the middle of the canvas.
func (v viewport) Center() geom.Point {
	return geom.Pt(v.origin.X+float64(v.cols)*v.unitsX/2, v.origin.Y+float64(v.rows)*v.unitsY/2)
}

// Resize sets the canvas size in cells.
func (v *viewport) Resize(cols, rows int) {
	v.cols, v.rows = max(cols, 1), max(rows, 1)
}

// Pan scrolls by whole cells.
func (v *viewport) Pan(cols, rows int) {
	v.origin = v.origin.Add(geom.Pt(float64(cols)*v.unitsX, float64(rows)*v.unitsY))
}

// Zoom scales the units per cell by factor, keeping the center fixed.
// Factors below 1 zoom in.
func (v *viewport) Zoom(factor float64) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return
	}
	ux := v.unitsX * factor
	if ux < minUnits || ux > maxUnits {
		return
	}
	c := v.Center()
	m := geom.ScaleAbout(c, factor, factor)
	v.origin = m.TransformPoint(v.origin)
	v.unitsX = ux
	v.unitsY *= factor
}

// Fit centers r in the canvas, zooming out until it fits.
func (v *viewport) Fit(r geom.Rect) {
	if r.IsEmpty() || !r.IsFinite() {
		v.origin = geom.Point{}
		return
	}
	for (r.W > float64(v.cols)*v.unitsX || r.H > float64(v.rows)*v.unitsY) && v.unitsX*2 <= maxUnits {
		v.unitsX *= 2
		v.unitsY *= 2
	}
	c := r.Center()
	v.origin = geom.Pt(c.X-float64(v.cols)*v.unitsX/2, c.Y-float64(v.rows)*v.unitsY/2)
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	ed.view.Resize(w, h-2)

	ed.drawCanvas()

	switch ed.mode {
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeHelp:
		ed.drawHelp(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas() {
	for _, f := range ed.doc.All() {
		style := styleFigure
		if ed.isSelected(f) {
			style = styleSelected
		} else if c := attr.StrokeColor.Get(f.Attributes()); c.Visible() {
			style = style.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		}

		switch f := f.(type) {
		case *figure.Group:
			if ed.isSelected(f) {
				ed.drawRect(f.Bounds(), '·', styleGroup)
			}
		case *figure.Line:
			if !ed.isSelected(f) {
				style = styleLine
			}
			ed.drawSegment(f.Point(figure.StartEnd), f.Point(figure.FinishEnd), style)
		case figure.TextHolder:
			x, y := ed.view.ToCell(f.Origin())
			ed.drawClipped(x, y, f.Text(), style)
		case *figure.Image:
			ed.drawRect(f.Bounds(), '░', style)
			caption := "[image]"
			if f.HasImage() {
				iw, ih := f.ImageSize()
				caption = fmt.Sprintf("[%dx%d]", iw, ih)
			}
			x, y := ed.view.ToCell(f.Bounds().Min())
			ed.drawClipped(x+1, y+1, caption, style)
		default:
			ed.drawOutline(f, style)
		}
	}
}

// drawOutline marks every cell whose center lies inside f while one of
// its four neighbours does not.
func (ed *Editor) drawOutline(f figure.Figure, style tcell.Style) {
	x0, y0 := ed.view.ToCell(f.Bounds().Min())
	x1, y1 := ed.view.ToCell(f.Bounds().Max())
	x0, y0 = max(x0-1, 0), max(y0-1, 0)
	x1, y1 = min(x1+1, ed.view.cols-1), min(y1+1, ed.view.rows-1)

	inside := func(x, y int) bool { return f.Contains(ed.view.ToWorld(x, y)) }
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !inside(x, y) {
				continue
			}
			if !inside(x-1, y) || !inside(x+1, y) || !inside(x, y-1) || !inside(x, y+1) {
				ed.screen.SetContent(x, y, '█', nil, style)
			}
		}
	}
}

// drawRect draws the border of r.
func (ed *Editor) drawRect(r geom.Rect, ch rune, style tcell.Style) {
	x0, y0 := ed.view.ToCell(r.Min())
	x1, y1 := ed.view.ToCell(r.Max())
	for x := x0; x <= x1; x++ {
		ed.setCell(x, y0, ch, style)
		ed.setCell(x, y1, ch, style)
	}
	for y := y0; y <= y1; y++ {
		ed.setCell(x0, y, ch, style)
		ed.setCell(x1, y, ch, style)
	}
}

// drawSegment rasterises a line with Bresenham's algorithm.
func (ed *Editor) drawSegment(a, b geom.Point, style tcell.Style) {
	x0, y0 := ed.view.ToCell(a)
	x1, y1 := ed.view.ToCell(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	// Bound the walk for segments far off screen.
	for n := 0; n < 4*(ed.view.cols+ed.view.rows)+dx-dy; n++ {
		ed.setCell(x0, y0, '•', style)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (ed *Editor) setCell(x, y int, ch rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= ed.view.cols || y >= ed.view.rows {
		return
	}
	ed.screen.SetContent(x, y, ch, nil, style)
}

func (ed *Editor) drawClipped(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.setCell(x+i, y, r, style)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			ed.screen.SetContent(x+col, y+row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 50
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)

	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len(ed.inputPrompt), boxY+1, truncate(ed.inputBuffer, boxW-4-len(ed.inputPrompt))+"_", styleInput)
}

var helpLines = []string{
	"r e d     add rectangle, ellipse, diamond",
	"t l i     add text, label, image",
	"c         connect two selected figures",
	"x         edit text",
	"Tab Space focus next / add next to selection",
	"m         move selection (Enter/Esc)",
	"arrows    nudge selection",
	"S-arrows  pan      + -  zoom",
	"g G       group / ungroup",
	"D Del     duplicate / delete",
	"f p       cycle fill / stroke placement",
	"u U       undo / redo (also ^Z ^Y)",
	"^C ^V ^S  copy, paste, save",
	"q         quit",
}

func (ed *Editor) drawHelp(w, h int) {
	boxW := 50
	boxH := len(helpLines) + 4
	boxX := max((w-boxW)/2, 0)
	boxY := max((h-boxH)/2, 0)

	ed.drawBox(boxX, boxY, boxW, boxH, styleDefault)
	title := " drawedit "
	ed.drawString(boxX+(boxW-len(title))/2, boxY, title, styleTitle)
	for i, line := range helpLines {
		ed.drawString(boxX+2, boxY+2+i, line, styleBorder)
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		if len(ed.filename) > 30 {
			fileInfo = filepath.Base(ed.filename)
		} else {
			fileInfo = ed.filename
		}
	}
	if ed.modified {
		fileInfo += " *"
	}
	fileInfo += fmt.Sprintf("  %d figures", ed.doc.Len())
	if n := len(ed.selection); n > 0 {
		fileInfo += fmt.Sprintf(", %d selected", n)
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if flashes(ed.messageType) && flashInverted(nowMillis()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		msg := truncate(ed.message, w/2-2)
		ed.drawString(w-len([]rune(msg))-2, y, msg, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) modeString() string {
	switch ed.mode {
	case ModeMove:
		return "MOVE"
	case ModeInput:
		return "INPUT"
	case ModeHelp:
		return "HELP"
	}
	return ""
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeMove:
		return "Arrows: move  Enter: done  Esc: cancel"
	case ModeInput:
		return "Enter: confirm  Esc: cancel"
	case ModeHelp:
		return "Any key: close"
	}
	undo := ""
	if name := ed.history.UndoName(); name != "" {
		undo = "  u: undo " + name
	}
	return "r/e/d/t: add  Tab: select  m: move  ^S: save  h: help  q: quit" + undo
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}
