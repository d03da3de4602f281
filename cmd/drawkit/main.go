// Command drawkit is a CLI tool for working with drawings.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/drawkit/pkg/asset"
	"github.com/ha1tch/drawkit/pkg/attr"
	"github.com/ha1tch/drawkit/pkg/chop"
	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figfile"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/geom"
)

const usage = `drawkit - vector drawing toolkit

Usage:
  drawkit [-v] <command> [options]

Commands:
  convert    Convert between formats (json, drw)
  dot        Generate Graphviz DOT output
  info       Show drawing information
  image      Add an image file to a drawing
  chop       Compute where a connection meets a shape
  validate   Validate drawing file

Examples:
  drawkit convert input.json -o output.drw
  drawkit convert input.drw -o output.json --pretty
  drawkit dot input.drw | dot -Tpng -o output.png
  drawkit image input.drw photo.jpg --at 10,20
  drawkit chop diamond 0,0,100,50 50,-100 --width 2
  drawkit info input.drw

The -v flag logs diagnostics to stderr.
`

func main() {
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--verbose") {
		figure.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "convert":
		cmdConvert(args)
	case "dot":
		cmdDot(args)
	case "info":
		cmdInfo(args)
	case "image":
		cmdImage(args)
	case "chop":
		cmdChop(args)
	case "validate":
		cmdValidate(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// loadConfig reads ~/.drawkit, falling back to the defaults.
func loadConfig() config.Config {
	cfg, err := config.Load(config.Path())
	if err != nil {
		figure.Logger().Warn("ignoring configuration", "path", config.Path(), "err", err)
		return config.Default()
	}
	return cfg
}

func cmdConvert(args []string) {
	if len(args) < 1 {
		fail("Usage: drawkit convert <input> [-o output] [--pretty]")
	}

	input := args[0]
	var output string
	pretty := false

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "--pretty":
			pretty = true
		}
	}

	doc, meta, err := loadDrawing(input, loadConfig())
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}

	if output == "" {
		ext := filepath.Ext(input)
		base := strings.TrimSuffix(input, ext)
		if ext == ".json" {
			output = base + ".drw"
		} else {
			output = base + ".json"
		}
	}

	if err := saveDrawing(output, doc, meta, pretty); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	fmt.Printf("Written: %s\n", output)
}

func cmdDot(args []string) {
	if len(args) < 1 {
		fail("Usage: drawkit dot <input> [-o output] [-t title]")
	}

	input := args[0]
	var output, title string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		case "-t", "--title":
			if i+1 < len(args) {
				title = args[i+1]
				i++
			}
		}
	}

	doc, meta, err := loadDrawing(input, loadConfig())
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}
	if title == "" {
		title = meta.Name
	}

	dot := figfile.GenerateDOT(doc, title)
	if output != "" {
		if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
			fail("Error writing %s: %v", output, err)
		}
	} else {
		fmt.Print(dot)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fail("Usage: drawkit info <input>")
	}

	input := args[0]
	doc, meta, err := loadDrawing(input, loadConfig())
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}

	if meta.Name != "" {
		fmt.Printf("Name:        %s\n", meta.Name)
	}
	if meta.Description != "" {
		fmt.Printf("Description: %s\n", meta.Description)
	}
	counts := make(map[figure.Kind]int)
	for _, f := range doc.All() {
		counts[f.Kind()]++
	}
	fmt.Printf("Figures:     %d (%d top level)\n", doc.Len(), len(doc.Figures()))
	for _, k := range []figure.Kind{
		figure.KindRectangle, figure.KindDiamond, figure.KindEllipse, figure.KindText,
		figure.KindLabel, figure.KindImage, figure.KindGroup, figure.KindLine,
	} {
		if counts[k] > 0 {
			fmt.Printf("  %-10s %d\n", k, counts[k])
		}
	}
	b := doc.Bounds()
	fmt.Printf("Bounds:      %.1f,%.1f %.1fx%.1f\n", b.X, b.Y, b.W, b.H)
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fail("Usage: drawkit validate <input>")
	}

	input := args[0]
	doc, _, err := loadDrawing(input, loadConfig())
	if err != nil {
		fail("Validation failed: %v", err)
	}

	var problems []string
	for _, f := range doc.All() {
		if !f.Bounds().IsFinite() {
			problems = append(problems, fmt.Sprintf("%s %d: bounds not finite", f.Kind(), f.ID()))
		}
		if l, ok := f.(*figure.Line); ok {
			for _, e := range []figure.End{figure.StartEnd, figure.FinishEnd} {
				if l.Connector(e) == nil {
					problems = append(problems, fmt.Sprintf("line %d: %s not connected", f.ID(), e))
				}
			}
		}
	}
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "warning: %s\n", p)
	}
	fmt.Printf("%s: valid drawing with %d figures, %d warnings\n", input, doc.Len(), len(problems))
}

func cmdImage(args []string) {
	if len(args) < 2 {
		fail("Usage: drawkit image <drawing> <image> [--at x,y] [-o output]")
	}

	input, picture := args[0], args[1]
	output := input
	at := geom.Pt(0, 0)

	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "--at":
			if i+1 < len(args) {
				v, err := parseFloats(args[i+1], 2)
				if err != nil {
					fail("Bad --at: %v", err)
				}
				at = geom.Pt(v[0], v[1])
				i++
			}
		case "-o", "--output":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		}
	}

	cfg := loadConfig()
	doc, meta, err := loadDrawing(input, cfg)
	if err != nil {
		fail("Error loading %s: %v", input, err)
	}

	img := doc.Factory().NewImage(geom.Rect{X: at.X, Y: at.Y})
	if _, err := doc.Add(img); err != nil {
		fail("Error: %v", err)
	}
	loader := asset.NewLoader(cfg, nil)
	var loadErr error
	loader.LoadFile(context.Background(), img, picture, func(res asset.Result, err error) {
		if err != nil {
			loadErr = err
			return
		}
		asset.Apply(img, res)
	})
	loader.Drain()
	if loadErr != nil {
		fail("Error: %v", loadErr)
	}

	if err := saveDrawing(output, doc, meta, true); err != nil {
		fail("Error writing %s: %v", output, err)
	}
	w, h := img.ImageSize()
	fmt.Printf("Added %dx%d image to %s\n", w, h, output)
}

func cmdChop(args []string) {
	if len(args) < 3 {
		fail("Usage: drawkit chop <rect|diamond|ellipse> <x,y,w,h> <fx,fy> [--width w] [--placement p] [--quadratic]")
	}

	shape := args[0]
	rv, err := parseFloats(args[1], 4)
	if err != nil {
		fail("Bad rectangle: %v", err)
	}
	fv, err := parseFloats(args[2], 2)
	if err != nil {
		fail("Bad point: %v", err)
	}
	stroke := chop.Stroke{Width: 1, Placement: attr.Center}
	quadratic := false

	for i := 3; i < len(args); i++ {
		switch args[i] {
		case "--width":
			if i+1 < len(args) {
				stroke.Width, err = strconv.ParseFloat(args[i+1], 64)
				if err != nil || stroke.Width < 0 {
					fail("Bad --width: %s", args[i+1])
				}
				i++
			}
		case "--placement":
			if i+1 < len(args) {
				stroke.Placement, err = attr.ParsePlacement(args[i+1])
				if err != nil {
					fail("Bad --placement: %v", err)
				}
				i++
			}
		case "--quadratic":
			quadratic = true
		}
	}

	r := geom.Rect{X: rv[0], Y: rv[1], W: rv[2], H: rv[3]}
	from := geom.Pt(fv[0], fv[1])
	var p geom.Point
	switch shape {
	case "rect", "rectangle":
		p = chop.Rectangle(r, stroke, from)
	case "diamond":
		p = chop.Diamond(r, quadratic, stroke, from)
	case "ellipse":
		p = chop.Ellipse(r, stroke, from)
	default:
		fail("Unknown shape: %s", shape)
	}
	fmt.Printf("%g,%g\n", p.X, p.Y)
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func loadDrawing(path string, cfg config.Config) (*figure.Document, figfile.Meta, error) {
	switch ext := filepath.Ext(path); ext {
	case ".drw":
		return figfile.ReadFile(path, cfg)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, figfile.Meta{}, err
		}
		doc, err := figfile.Unmarshal(data, cfg)
		return doc, figfile.Meta{}, err
	default:
		return nil, figfile.Meta{}, fmt.Errorf("unknown file format: %s", ext)
	}
}

func saveDrawing(path string, doc *figure.Document, meta figfile.Meta, pretty bool) error {
	switch ext := filepath.Ext(path); ext {
	case ".drw":
		return figfile.WriteFile(path, doc, meta)
	case ".json":
		data, err := figfile.Marshal(doc, pretty)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unknown output format: %s", ext)
	}
}
