package domain

import (
	"context"
	"image"
)

// PDFRenderer opens documents for rasterization.
type PDFRenderer interface {
	LoadDocument(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened document owned by one editing session. Pages are 1-based.
type Document interface {
	PageCount() int
	Info() DocumentInfo
	// PageSize returns the page size in points.
	PageSize(page int) (width, height float64, err error)
	// RenderPage rasterizes a page at scale pixels per point.
	RenderPage(ctx context.Context, page int, scale float64) (*image.RGBA, error)
	Close() error
}

// DocumentInfo is descriptive metadata read from the document.
type DocumentInfo struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// AnnotationStore holds the annotations of one session in insertion order.
type AnnotationStore interface {
	Append(a Annotation)
	Get(id string) (Annotation, bool)
	Replace(a Annotation) bool
	Remove(id string) bool
	RemoveLast() (Annotation, bool)
	ByPage(page int) []Annotation
	All() []Annotation
	Len() int
}

// OverlayPainter redraws the annotation layer.
type OverlayPainter interface {
	Paint(dst *image.RGBA, annotations []Annotation, pending *Annotation, zoom float64)
}

// Exporter burns annotations into a copy of the original document.
type Exporter interface {
	Export(ctx context.Context, original []byte, annotations []Annotation, canvasWidth float64) ([]byte, error)
}

// EditorService manages editing sessions.
type EditorService interface {
	Open(ctx context.Context, fileName string, data []byte) (*SessionState, error)
	Close(id string) error
	State(id string) (*SessionState, error)
	SetView(id string, update ViewUpdate) (*SessionState, error)
	SetTool(id string, update ToolUpdate) (*SessionState, error)
	Pointer(id string, event PointerEvent) (*SessionState, error)
	Text(id string, action TextAction, text string) (*SessionState, error)
	Undo(id string) (*SessionState, error)
	DeleteAnnotation(id, annotationID string) (*SessionState, error)
	Annotations(id string, page int) ([]Annotation, error)
	Frame(ctx context.Context, id string, layer Layer) ([]byte, error)
	Export(ctx context.Context, id string) (*ExportResult, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string
	GetBaseScale() float64
	GetDefaultFontSize() float64
	GetDefaultColor() Color
	GetAllowedOrigins() []string
}
