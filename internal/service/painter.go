package service

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"pdf-annotator/internal/domain"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	strokeWidth    = 2.0
	highlightAlpha = 77 // 0.3 opacity
	circleSegments = 64
)

// RasterPainter draws annotations onto a transparent overlay with a software
// rasterizer. Coordinates are used as recorded; text is scaled by the zoom.
type RasterPainter struct {
	logger domain.Logger

	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewRasterPainter creates a painter using the Go regular font for text.
func NewRasterPainter(logger domain.Logger) (*RasterPainter, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &RasterPainter{
		logger: logger,
		font:   f,
		faces:  make(map[float64]font.Face),
	}, nil
}

// Paint clears dst and draws the annotations in order, followed by the
// pending preview when non-nil.
func (p *RasterPainter) Paint(dst *image.RGBA, annotations []domain.Annotation, pending *domain.Annotation, zoom float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := dst.Bounds()
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	for i := range annotations {
		p.paintOne(dst, r, &annotations[i], zoom)
	}
	if pending != nil {
		p.paintOne(dst, r, pending, zoom)
	}
}

func (p *RasterPainter) paintOne(dst *image.RGBA, r *vector.Rasterizer, a *domain.Annotation, zoom float64) {
	b := dst.Bounds()
	r.Reset(b.Dx(), b.Dy())
	r.DrawOp = draw.Over

	switch a.Kind {
	case domain.KindText:
		p.drawText(dst, a, zoom)
		return
	case domain.KindRectangle:
		rectRing(r, a.Bounds())
	case domain.KindCircle:
		c := a.CircleCenter()
		circleRing(r, c, a.CircleRadius())
	case domain.KindFreehand:
		if len(a.Path) < 2 {
			return
		}
		polyline(r, a.Path)
	case domain.KindHighlight:
		rb := a.Bounds()
		rectPath(r, rb.Min.X, rb.Min.Y, rb.Max.X, rb.Max.Y, false)
		c := a.Color.RGBA(domain.DefaultHighlightColor)
		src := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: highlightAlpha})
		r.Draw(dst, b, src, image.Point{})
		return
	default:
		p.logger.Warn("Skipping annotation of unknown kind", "id", a.ID, "kind", a.Kind)
		return
	}

	r.Draw(dst, b, image.NewUniform(a.Color.RGBA(domain.DefaultColor)), image.Point{})
}

func (p *RasterPainter) drawText(dst *image.RGBA, a *domain.Annotation, zoom float64) {
	if a.Text == "" {
		return
	}
	face, err := p.face(a.EffectiveFontSize() * zoom)
	if err != nil {
		p.logger.Error("Failed to create font face", err, "size", a.EffectiveFontSize()*zoom)
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.Color.RGBA(domain.DefaultColor)),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(a.X), Y: toFixed(a.Y)},
	}
	d.DrawString(a.Text)
}

// face returns a cached face of the given pixel size. Callers hold p.mu.
func (p *RasterPainter) face(size float64) (font.Face, error) {
	size = math.Round(size*4) / 4
	if f, ok := p.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(p.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	p.faces[size] = f
	return f, nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// rectPath adds a closed axis-aligned rectangle. reverse flips the winding so
// it can cut a hole out of an enclosing path.
func rectPath(r *vector.Rasterizer, x0, y0, x1, y1 float64, reverse bool) {
	r.MoveTo(float32(x0), float32(y0))
	if reverse {
		r.LineTo(float32(x0), float32(y1))
		r.LineTo(float32(x1), float32(y1))
		r.LineTo(float32(x1), float32(y0))
	} else {
		r.LineTo(float32(x1), float32(y0))
		r.LineTo(float32(x1), float32(y1))
		r.LineTo(float32(x0), float32(y1))
	}
	r.ClosePath()
}

// rectRing adds a stroke of strokeWidth centered on the rectangle outline.
func rectRing(r *vector.Rasterizer, rb domain.Rect) {
	hw := strokeWidth / 2
	rectPath(r, rb.Min.X-hw, rb.Min.Y-hw, rb.Max.X+hw, rb.Max.Y+hw, false)
	if rb.Dx() > strokeWidth && rb.Dy() > strokeWidth {
		rectPath(r, rb.Min.X+hw, rb.Min.Y+hw, rb.Max.X-hw, rb.Max.Y-hw, true)
	}
}

// circlePath adds a closed polygon approximating a circle.
func circlePath(r *vector.Rasterizer, c domain.Point, radius float64, reverse bool) {
	for i := 0; i <= circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			theta = -theta
		}
		x := float32(c.X + radius*math.Cos(theta))
		y := float32(c.Y + radius*math.Sin(theta))
		if i == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
}

func circleRing(r *vector.Rasterizer, c domain.Point, radius float64) {
	hw := strokeWidth / 2
	circlePath(r, c, radius+hw, false)
	if radius > hw {
		circlePath(r, c, radius-hw, true)
	}
}

// polyline strokes consecutive points with round joins. All pieces share the
// same winding so overlaps do not cancel out.
func polyline(r *vector.Rasterizer, pts []domain.Point) {
	hw := strokeWidth / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		vx, vy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(vx, vy)
		if l == 0 {
			continue
		}
		nx, ny := -vy/l*hw, vx/l*hw
		r.MoveTo(float32(a.X+nx), float32(a.Y+ny))
		r.LineTo(float32(b.X+nx), float32(b.Y+ny))
		r.LineTo(float32(b.X-nx), float32(b.Y-ny))
		r.LineTo(float32(a.X-nx), float32(a.Y-ny))
		r.ClosePath()
	}
	for _, pt := range pts {
		circlePath(r, pt, hw, true)
	}
}
