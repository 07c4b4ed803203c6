package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"pdf-annotator/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.record("ERROR: " + msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

func (m *MockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *MockLogger) record(s string) {
	m.mu.Lock()
	m.messages = append(m.messages, s)
	m.mu.Unlock()
}

// MockRenderer opens every input as a document of fixed-size white pages.
type MockRenderer struct {
	Pages      int
	PageWidth  float64
	PageHeight float64
	LoadErr    error

	mu     sync.Mutex
	opened []*MockDocument
}

func NewMockRenderer(pages int) *MockRenderer {
	return &MockRenderer{Pages: pages, PageWidth: 600, PageHeight: 800}
}

func (m *MockRenderer) LoadDocument(ctx context.Context, data []byte) (domain.Document, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	doc := &MockDocument{pages: m.Pages, width: m.PageWidth, height: m.PageHeight}
	m.mu.Lock()
	m.opened = append(m.opened, doc)
	m.mu.Unlock()
	return doc, nil
}

func (m *MockRenderer) Opened() []*MockDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockDocument(nil), m.opened...)
}

type MockDocument struct {
	pages  int
	width  float64
	height float64

	mu       sync.Mutex
	closed   bool
	rendered []float64
}

func (d *MockDocument) PageCount() int { return d.pages }

func (d *MockDocument) Info() domain.DocumentInfo {
	return domain.DocumentInfo{Title: "Sample"}
}

func (d *MockDocument) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > d.pages {
		return 0, 0, domain.ErrPageOutOfRange
	}
	return d.width, d.height, nil
}

func (d *MockDocument) RenderPage(ctx context.Context, page int, scale float64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > d.pages {
		return nil, domain.ErrPageOutOfRange
	}
	d.mu.Lock()
	d.rendered = append(d.rendered, scale)
	d.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, int(d.width*scale), int(d.height*scale)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func (d *MockDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("already closed")
	}
	d.closed = true
	return nil
}

func (d *MockDocument) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// MockExporter records its inputs and returns a fixed payload.
type MockExporter struct {
	Err error

	mu          sync.Mutex
	calls       int
	annotations []domain.Annotation
	canvasWidth float64
}

func (m *MockExporter) Export(ctx context.Context, original []byte, annotations []domain.Annotation, canvasWidth float64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.annotations = annotations
	m.canvasWidth = canvasWidth
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]byte("exported:"), original...), nil
}
