// Package export writes the board and its results to files.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/tenzor/internal/analysis"
)

// Document describes what goes into a PDF export.
type Document struct {
	Title      string
	Board      image.Image
	Background color.RGBA
	Results    []analysis.Result
	Bindings   analysis.Bindings
	Created    time.Time
}

const (
	pageMargin = 15.0
	pageWidth  = 210.0
)

// WritePDF renders doc as a single A4 portrait page.
func WritePDF(w io.Writer, doc Document) error {
	p := gofpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(doc.Title, true)
	p.SetCreator("Tenzor", true)
	if !doc.Created.IsZero() {
		p.SetCreationDate(doc.Created)
	}
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")

	y := p.GetY() + 2
	if doc.Board != nil && !doc.Board.Bounds().Empty() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, doc.Board); err != nil {
			return fmt.Errorf("encode board: %w", err)
		}
		b := doc.Board.Bounds()
		wmm := pageWidth - 2*pageMargin
		hmm := wmm * float64(b.Dy()) / float64(b.Dx())
		bg := doc.Background
		p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		p.Rect(pageMargin, y, wmm, hmm, "F")
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		p.RegisterImageOptionsReader("board", opts, &buf)
		p.ImageOptions("board", pageMargin, y, wmm, hmm, false, opts, 0, "")
		y += hmm + 6
	}
	p.SetY(y)

	if len(doc.Results) > 0 {
		p.SetFont("Helvetica", "B", 13)
		p.CellFormat(0, 8, "Results", "", 1, "L", false, 0, "")
		p.SetFont("Helvetica", "", 12)
		for _, r := range doc.Results {
			p.CellFormat(0, 7, tr(r.Text()), "", 1, "L", false, 0, "")
		}
	}
	if len(doc.Bindings) > 0 {
		p.Ln(3)
		p.SetFont("Helvetica", "B", 13)
		p.CellFormat(0, 8, "Variables", "", 1, "L", false, 0, "")
		p.SetFont("Courier", "", 11)
		for _, k := range sortedKeys(doc.Bindings) {
			p.CellFormat(0, 6, tr(k+" = "+doc.Bindings[k]), "", 1, "L", false, 0, "")
		}
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDF writes doc to path.
func PDF(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDF(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PNG writes img to path.
func PNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// Name returns a timestamped file name in dir with the given extension.
func Name(dir, ext string, now time.Time) string {
	return filepath.Join(dir, "tenzor-"+now.Format("20060102-150405")+"."+ext)
}

func sortedKeys(b analysis.Bindings) []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
