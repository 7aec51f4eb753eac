package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	GroomingMapURL = "https://grooming.lumiplan.pro/beaver-creek-grooming-map.pdf"
	DefaultScale   = 2.0
	Timeout        = 30 * time.Second
)

// ErrArtifactUnavailable is returned when the PDF cannot be fetched or rendered.
var ErrArtifactUnavailable = errors.New("artifact unavailable")

var pdfMagic = []byte("%PDF-")

// Rasterizer renders one page of a PDF document to encoded image bytes.
type Rasterizer interface {
	Render(pdf []byte, pageIndex int, scale float64) ([]byte, error)
}

// Producer downloads the grooming map and renders its first page.
type Producer struct {
	client     *resty.Client
	url        string
	rasterizer Rasterizer
	scale      float64
}

// NewProducer creates a Producer. Empty or non-positive arguments fall back
// to GroomingMapURL, Timeout and DefaultScale.
func NewProducer(url string, timeout time.Duration, rasterizer Rasterizer, scale float64) *Producer {
	if url == "" {
		url = GroomingMapURL
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return &Producer{
		client:     client,
		url:        url,
		rasterizer: rasterizer,
		scale:      scale,
	}
}

// Produce fetches the PDF and renders page 0 at the configured scale.
func (p *Producer) Produce(ctx context.Context) ([]byte, error) {
	pdf, err := p.FetchPDF(ctx)
	if err != nil {
		return nil, err
	}

	img, err := p.rasterizer.Render(pdf, 0, p.scale)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering page: %w", ErrArtifactUnavailable, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: rasterizer returned no image", ErrArtifactUnavailable)
	}
	return img, nil
}

// FetchPDF downloads the grooming map document.
func (p *Producer) FetchPDF(ctx context.Context) ([]byte, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching pdf: %w", ErrArtifactUnavailable, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrArtifactUnavailable, resp.StatusCode())
	}

	body := resp.Body()
	if !bytes.HasPrefix(body, pdfMagic) {
		return nil, fmt.Errorf("%w: response is not a PDF document", ErrArtifactUnavailable)
	}
	return body, nil
}
