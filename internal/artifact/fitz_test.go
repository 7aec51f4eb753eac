package artifact

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"testing"
)

// onePagePDF builds a valid single-page PDF with the given media box in points.
func onePagePDF(width, height int) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] >>", width, height),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestFitzRasterizer_Render(t *testing.T) {
	out, err := FitzRasterizer{}.Render(onePagePDF(100, 50), 0, 2)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 200 || got.Dy() != 100 {
		t.Errorf("bounds = %v, want 200x100", got)
	}
}

func TestFitzRasterizer_Errors(t *testing.T) {
	tests := []struct {
		name      string
		pdf       []byte
		pageIndex int
		wantErr   string
	}{
		{
			name:      "page out of range",
			pdf:       onePagePDF(100, 50),
			pageIndex: 1,
			wantErr:   "out of range",
		},
		{
			name:      "negative page",
			pdf:       onePagePDF(100, 50),
			pageIndex: -1,
			wantErr:   "out of range",
		},
		{
			name:      "garbage after magic",
			pdf:       []byte("%PDF-garbage that is not a document"),
			pageIndex: 0,
			wantErr:   "opening pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitzRasterizer{}.Render(tt.pdf, tt.pageIndex, 2)
			if err == nil {
				t.Fatal("Render() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Render() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
