package domain

import (
	"math"
	"unicode/utf8"
)

// Kind tags the variant of an annotation.
type Kind string

const (
	KindText      Kind = "text"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindFreehand  Kind = "freehand"
	KindHighlight Kind = "highlight"
)

// Valid reports whether k is a known annotation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindRectangle, KindCircle, KindFreehand, KindHighlight:
		return true
	}
	return false
}

// Tool is the authoring tool selected in the editor.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolText      Tool = "text"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolFreehand  Tool = "freehand"
	ToolHighlight Tool = "highlight"
)

// ParseTool converts a tool name into a Tool.
func ParseTool(s string) (Tool, bool) {
	switch t := Tool(s); t {
	case ToolSelect, ToolText, ToolRectangle, ToolCircle, ToolFreehand, ToolHighlight:
		return t, true
	}
	return "", false
}

// DrawsShape reports whether a pointer-down with this tool starts a drawing gesture.
func (t Tool) DrawsShape() bool {
	switch t {
	case ToolRectangle, ToolCircle, ToolFreehand, ToolHighlight:
		return true
	}
	return false
}

// CanDrag reports whether text annotations can be grabbed with this tool.
func (t Tool) CanDrag() bool {
	return t == ToolSelect || t == ToolText
}

// Kind returns the annotation kind produced by a shape tool.
func (t Tool) Kind() Kind {
	switch t {
	case ToolText:
		return KindText
	case ToolRectangle:
		return KindRectangle
	case ToolCircle:
		return KindCircle
	case ToolFreehand:
		return KindFreehand
	case ToolHighlight:
		return KindHighlight
	}
	return ""
}

const (
	DefaultFontSize = 16.0
	MinFontSize     = 8.0
	MaxFontSize     = 72.0

	// textWidthFactor approximates the average glyph advance as a fraction of the font size.
	textWidthFactor = 0.6
)

// Annotation is one user-authored mark on a page. Coordinates are canvas pixels
// at the zoom level that was active when the annotation was created.
type Annotation struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Path     []Point `json:"path,omitempty"`
	Color    Color   `json:"color,omitempty"`
}

// Clone returns a deep copy of the annotation.
func (a Annotation) Clone() Annotation {
	if a.Path != nil {
		a.Path = append([]Point(nil), a.Path...)
	}
	return a
}

// Anchor returns the anchor point.
func (a Annotation) Anchor() Point {
	return Point{X: a.X, Y: a.Y}
}

// EffectiveFontSize returns the font size, falling back to the default.
func (a Annotation) EffectiveFontSize() float64 {
	if a.FontSize <= 0 {
		return DefaultFontSize
	}
	return a.FontSize
}

// Corners returns the rectangle spanned by anchor and extent, in drawing order.
// The extent is used as recorded, so negative sizes produce corners to the
// left of or above the anchor.
func (a Annotation) Corners() [4]Point {
	return [4]Point{
		{X: a.X, Y: a.Y},
		{X: a.X + a.Width, Y: a.Y},
		{X: a.X + a.Width, Y: a.Y + a.Height},
		{X: a.X, Y: a.Y + a.Height},
	}
}

// Bounds returns the normalized rectangle spanned by anchor and extent.
func (a Annotation) Bounds() Rect {
	return NewRect(a.X, a.Y, a.X+a.Width, a.Y+a.Height)
}

// CircleCenter is the midpoint of the drag box.
func (a Annotation) CircleCenter() Point {
	return Point{X: a.X + a.Width/2, Y: a.Y + a.Height/2}
}

// CircleRadius is half the diagonal of the drag box. This is a circle, not an
// ellipse fitted to width and height.
func (a Annotation) CircleRadius() float64 {
	return math.Hypot(a.Width, a.Height) / 2
}

// TextBox returns the approximate hit region of a text annotation drawn at
// the given zoom. The anchor is the baseline origin, so the box extends
// upwards from it.
func (a Annotation) TextBox(zoom float64) Rect {
	size := a.EffectiveFontSize() * zoom
	width := float64(utf8.RuneCountInString(a.Text)) * size * textWidthFactor
	return Rect{
		Min: Point{X: a.X, Y: a.Y - size},
		Max: Point{X: a.X + width, Y: a.Y},
	}
}
