package figfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/drawkit/pkg/config"
	"github.com/ha1tch/drawkit/pkg/figure"
	"github.com/ha1tch/drawkit/pkg/node"
)

// Archive entry names.
const (
	drawingEntry = "drawing.json"
	metaEntry    = "meta.toml"
	assetDir     = "assets/"
)

// Meta is the content of meta.toml.
type Meta struct {
	Version     int    `toml:"version"`
	Name        string `toml:"name,omitempty"`
	Description string `toml:"description,omitempty"`
}

// WriteFile writes doc to a .drw file.
func WriteFile(path string, doc *figure.Document, meta Meta) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteArchive(file, doc, meta); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteArchive writes doc to w in .drw format. Image data is stored as
// separate entries under assets/ named by the figure's local id.
func WriteArchive(w io.Writer, doc *figure.Document, meta Meta) error {
	nodes := figure.EncodeAll(doc.Figures())
	assets := make(map[string][]byte)
	for _, n := range nodes {
		n.Walk(func(x *node.Node) error {
			if len(x.Data) == 0 {
				return nil
			}
			x.Asset = fmt.Sprintf("%s%d.%s", assetDir, x.ID, assetExt(x.Data))
			assets[x.Asset] = x.Data
			x.Data = nil
			return nil
		})
	}
	drawing, err := marshalNodes(nodes, true)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	dw, err := zw.Create(drawingEntry)
	if err != nil {
		return err
	}
	if _, err := dw.Write(drawing); err != nil {
		return err
	}

	meta.Version = Version
	mw, err := zw.Create(metaEntry)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(mw).Encode(meta); err != nil {
		return err
	}

	for _, n := range nodes {
		err := n.Walk(func(x *node.Node) error {
			if x.Asset == "" {
				return nil
			}
			// Image data is already compressed.
			aw, err := zw.CreateHeader(&zip.FileHeader{Name: x.Asset, Method: zip.Store})
			if err != nil {
				return err
			}
			_, err = aw.Write(assets[x.Asset])
			return err
		})
		if err != nil {
			return err
		}
	}
	return zw.Close()
}

// assetExt names the image format of data, or "bin" when no registered
// decoder recognises it.
func assetExt(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "bin"
	}
	return format
}

// ReadFile reads a .drw file.
func ReadFile(path string, cfg config.Config) (*figure.Document, Meta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, Meta{}, err
	}
	return ReadArchive(file, info.Size(), cfg)
}

// ReadBytes reads a drawing from bytes in .drw format.
func ReadBytes(data []byte, cfg config.Config) (*figure.Document, Meta, error) {
	return ReadArchive(bytes.NewReader(data), int64(len(data)), cfg)
}

// ReadArchive reads a drawing in .drw format. Every image asset is
// checked to be a decodable image before any figure is built.
func ReadArchive(r io.ReaderAt, size int64, cfg config.Config) (*figure.Document, Meta, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, Meta{}, err
	}

	var drawing []byte
	var meta Meta
	assets := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, Meta{}, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, Meta{}, err
		}

		switch {
		case f.Name == drawingEntry:
			drawing = data
		case f.Name == metaEntry:
			if _, err := toml.Decode(string(data), &meta); err != nil {
				return nil, Meta{}, fmt.Errorf("%s: %w", metaEntry, err)
			}
		case strings.HasPrefix(f.Name, assetDir):
			assets[f.Name] = data
		}
	}
	if drawing == nil {
		return nil, Meta{}, fmt.Errorf("%s not found in archive", drawingEntry)
	}

	nodes, err := parseNodes(drawing)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("%s: %w", drawingEntry, err)
	}
	if err := attachAssets(nodes, assets); err != nil {
		return nil, Meta{}, err
	}

	figs, err := figure.DecodeAll(nodes)
	if err != nil {
		return nil, Meta{}, err
	}
	doc := figure.NewDocument(cfg)
	if _, err := doc.AddAll(figs...); err != nil {
		return nil, Meta{}, err
	}
	return doc, meta, nil
}

// attachAssets moves asset entries into the nodes referencing them,
// verifying each one concurrently.
func attachAssets(nodes []*node.Node, assets map[string][]byte) error {
	var refs []*node.Node
	for _, n := range nodes {
		err := n.Walk(func(x *node.Node) error {
			if x.Asset == "" {
				return nil
			}
			data, ok := assets[x.Asset]
			if !ok {
				return x.Errorf("asset", "missing archive entry %s", x.Asset)
			}
			x.Data = data
			refs = append(refs, x)
			return nil
		})
		if err != nil {
			return err
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, x := range refs {
		x := x
		g.Go(func() error {
			if _, _, err := image.DecodeConfig(bytes.NewReader(x.Data)); err != nil {
				return &node.FormatError{Type: x.Type, ID: x.ID, Field: "asset", Reason: x.Asset, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}
