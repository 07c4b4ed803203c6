package service

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"pdf-annotator/internal/domain"
)

func newTestPainter(t *testing.T) *RasterPainter {
	t.Helper()
	p, err := NewRasterPainter(NewMockLogger())
	if err != nil {
		t.Fatalf("NewRasterPainter: %v", err)
	}
	return p
}

func alphaAt(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).A
}

func TestRasterPainter_ClearsPreviousContent(t *testing.T) {
	p := newTestPainter(t)
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)

	p.Paint(dst, nil, nil, 1)

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if a := alphaAt(dst, x, y); a != 0 {
				t.Fatalf("pixel (%d,%d) not cleared, alpha %d", x, y, a)
			}
		}
	}
}

func TestRasterPainter_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		ann     domain.Annotation
		stroked image.Point
		empty   image.Point
	}{
		{
			// Outline is drawn, interior stays transparent.
			name:    "rectangle",
			ann:     domain.Annotation{Kind: domain.KindRectangle, X: 10, Y: 10, Width: 40, Height: 20},
			stroked: image.Pt(10, 20),
			empty:   image.Pt(30, 20),
		},
		{
			// Negative extent covers the same area as the positive one.
			name:    "rectangle negative extent",
			ann:     domain.Annotation{Kind: domain.KindRectangle, X: 50, Y: 30, Width: -40, Height: -20},
			stroked: image.Pt(10, 20),
			empty:   image.Pt(30, 20),
		},
		{
			// Radius is half the drag diagonal: 10 around (60, 50).
			name:    "circle",
			ann:     domain.Annotation{Kind: domain.KindCircle, X: 50, Y: 50, Width: 20, Height: 0},
			stroked: image.Pt(69, 49),
			empty:   image.Pt(60, 50),
		},
		{
			name: "freehand",
			ann: domain.Annotation{Kind: domain.KindFreehand, Path: []domain.Point{
				{X: 10, Y: 80}, {X: 60, Y: 80},
			}},
			stroked: image.Pt(30, 79),
			empty:   image.Pt(30, 60),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPainter(t)
			dst := image.NewRGBA(image.Rect(0, 0, 100, 100))

			p.Paint(dst, []domain.Annotation{tt.ann}, nil, 1)

			if a := alphaAt(dst, tt.stroked.X, tt.stroked.Y); a == 0 {
				t.Fatalf("expected stroke at %v", tt.stroked)
			}
			if a := alphaAt(dst, tt.empty.X, tt.empty.Y); a != 0 {
				t.Fatalf("expected transparent pixel at %v, alpha %d", tt.empty, a)
			}
		})
	}
}

func TestRasterPainter_HighlightIsTranslucent(t *testing.T) {
	p := newTestPainter(t)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))

	p.Paint(dst, []domain.Annotation{
		{Kind: domain.KindHighlight, X: 10, Y: 10, Width: 40, Height: 20, Color: "#00ff00"},
	}, nil, 1)

	px := dst.RGBAAt(20, 15)
	if px.A < highlightAlpha-1 || px.A > highlightAlpha+1 {
		t.Fatalf("expected alpha near %d, got %d", highlightAlpha, px.A)
	}
	if px.G < px.A-1 || px.R != 0 {
		t.Fatalf("expected green fill, got %+v", px)
	}
	if a := alphaAt(dst, 60, 15); a != 0 {
		t.Fatalf("expected no fill outside highlight, alpha %d", a)
	}
}

func TestRasterPainter_SinglePointFreehandIsSkipped(t *testing.T) {
	p := newTestPainter(t)
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))

	p.Paint(dst, []domain.Annotation{
		{Kind: domain.KindFreehand, Path: []domain.Point{{X: 10, Y: 10}}},
	}, nil, 1)

	if a := alphaAt(dst, 10, 10); a != 0 {
		t.Fatalf("expected nothing drawn, alpha %d", a)
	}
}

func TestRasterPainter_TextAndPending(t *testing.T) {
	p := newTestPainter(t)
	dst := image.NewRGBA(image.Rect(0, 0, 120, 120))

	pending := &domain.Annotation{Kind: domain.KindRectangle, X: 70, Y: 70, Width: 30, Height: 30}
	p.Paint(dst, []domain.Annotation{
		{Kind: domain.KindText, X: 10, Y: 50, Text: "Hi", FontSize: 16},
	}, pending, 1)

	inked := false
	for y := 36; y < 50 && !inked; y++ {
		for x := 10; x < 34; x++ {
			if alphaAt(dst, x, y) > 0 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Fatalf("expected text glyphs above the baseline")
	}
	if a := alphaAt(dst, 70, 85); a == 0 {
		t.Fatalf("expected pending preview outline")
	}
}
