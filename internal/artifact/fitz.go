package artifact

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the PDF user-space resolution; scale 1 renders at 72 DPI.
const pointsPerInch = 72.0

// FitzRasterizer renders PDF pages with MuPDF and encodes them as PNG.
type FitzRasterizer struct{}

// Render implements Rasterizer.
func (FitzRasterizer) Render(pdf []byte, pageIndex int, scale float64) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	if pageIndex < 0 || pageIndex >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", pageIndex, doc.NumPage())
	}

	img, err := doc.ImageDPI(pageIndex, pointsPerInch*scale)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", pageIndex, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
