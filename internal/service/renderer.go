package service

import (
	"context"
	"fmt"
	"image"
	"strings"

	"pdf-annotator/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch is the resolution at which one pixel equals one PDF point.
const pointsPerInch = 72.0

// FitzRenderer rasterizes documents with MuPDF.
type FitzRenderer struct {
	logger domain.Logger
}

// NewFitzRenderer creates a new MuPDF backed renderer
func NewFitzRenderer(logger domain.Logger) *FitzRenderer {
	return &FitzRenderer{logger: logger}
}

// LoadDocument parses a PDF held in memory.
func (r *FitzRenderer) LoadDocument(ctx context.Context, data []byte) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	if doc.NumPage() < 1 {
		doc.Close()
		return nil, fmt.Errorf("document has no pages")
	}
	r.logger.Debug("PDF loaded", "pages", doc.NumPage(), "bytes", len(data))
	return &fitzDocument{doc: doc, logger: r.logger}, nil
}

type fitzDocument struct {
	doc    *fitz.Document
	logger domain.Logger
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Info() domain.DocumentInfo {
	meta := d.doc.Metadata()
	return domain.DocumentInfo{
		Title:  strings.TrimSpace(meta["title"]),
		Author: strings.TrimSpace(meta["author"]),
	}
}

func (d *fitzDocument) PageSize(page int) (float64, float64, error) {
	if err := d.checkPage(page); err != nil {
		return 0, 0, err
	}
	b, err := d.doc.Bound(page - 1)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read bounds of page %d: %w", page, err)
	}
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (d *fitzDocument) RenderPage(ctx context.Context, page int, scale float64) (*image.RGBA, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(page-1, pointsPerInch*scale)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	d.logger.Debug("Page rendered", "page", page, "scale", scale, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

func (d *fitzDocument) checkPage(page int) error {
	if page < 1 || page > d.doc.NumPage() {
		return fmt.Errorf("%w: %d of %d", domain.ErrPageOutOfRange, page, d.doc.NumPage())
	}
	return nil
}
