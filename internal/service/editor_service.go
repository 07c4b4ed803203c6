package service

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/png"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/repository"
	apperrors "pdf-annotator/pkg/errors"
)

const (
	DefaultBaseScale = 1.5
	exportFilePrefix = "edited-"
)

var pdfMagic = []byte("%PDF-")

// EditorOptions tunes an EditorService.
type EditorOptions struct {
	BaseScale       float64
	MaxFileSize     int64
	DefaultFontSize float64
	DefaultColor    domain.Color
	// NewStore creates the annotation store of a new session.
	NewStore func() domain.AnnotationStore
	// NewID generates session and annotation identifiers.
	NewID IDGenerator
}

// EditorService keeps the open editing sessions. Every operation on a session
// runs under that session's lock, rendering and export included.
type EditorService struct {
	renderer domain.PDFRenderer
	painter  domain.OverlayPainter
	exporter domain.Exporter
	logger   domain.Logger
	opts     EditorOptions

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	id       string
	fileName string
	data     []byte
	doc      domain.Document
	store    domain.AnnotationStore
	ctrl     *Controller
	closed   bool
}

// NewEditorService creates a new editor service
func NewEditorService(
	renderer domain.PDFRenderer,
	painter domain.OverlayPainter,
	exporter domain.Exporter,
	logger domain.Logger,
	opts EditorOptions,
) *EditorService {
	if opts.BaseScale <= 0 {
		opts.BaseScale = DefaultBaseScale
	}
	if opts.NewID == nil {
		opts.NewID = UUIDv7()
	}
	if opts.DefaultFontSize <= 0 {
		opts.DefaultFontSize = domain.DefaultFontSize
	}
	if !opts.DefaultColor.Valid() {
		opts.DefaultColor = domain.DefaultColor
	}
	return &EditorService{
		renderer: renderer,
		painter:  painter,
		exporter: exporter,
		logger:   logger,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// Open validates and loads a document and starts a session for it.
func (s *EditorService) Open(ctx context.Context, fileName string, data []byte) (*domain.SessionState, error) {
	if err := s.validateUpload(fileName, data); err != nil {
		return nil, err
	}

	doc, err := s.renderer.LoadDocument(ctx, data)
	if err != nil {
		s.logger.Error("Failed to load document", err, "file_name", fileName, "size", len(data))
		return nil, apperrors.NewLoadError("Failed to load PDF", err)
	}

	store := s.newStore()
	sess := &session{
		id:       s.opts.NewID(),
		fileName: fileName,
		data:     data,
		doc:      doc,
		store:    store,
		ctrl: NewController(store, ControllerOptions{
			PageCount: doc.PageCount(),
			FontSize:  s.opts.DefaultFontSize,
			Color:     s.opts.DefaultColor,
			NewID:     s.opts.NewID,
		}),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("Document opened", "session_id", sess.id, "file_name", fileName, "pages", doc.PageCount())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshot(sess), nil
}

// Close ends a session and releases its document.
func (s *EditorService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return sessionNotFound()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	if err := sess.doc.Close(); err != nil {
		s.logger.Warn("Failed to close document", "session_id", id, "error", err.Error())
	}
	s.logger.Info("Document closed", "session_id", id)
	return nil
}

// CloseAll ends every session.
func (s *EditorService) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		_ = s.Close(id)
	}
}

// State returns a snapshot of a session.
func (s *EditorService) State(id string) (*domain.SessionState, error) {
	var st *domain.SessionState
	err := s.withSession(id, func(sess *session) error {
		st = s.snapshot(sess)
		return nil
	})
	return st, err
}

// SetView changes page and zoom. Values outside the allowed range are clamped.
func (s *EditorService) SetView(id string, update domain.ViewUpdate) (*domain.SessionState, error) {
	return s.update(id, func(sess *session) error {
		if update.Zoom != nil {
			if math.IsNaN(*update.Zoom) || math.IsInf(*update.Zoom, 0) {
				return apperrors.NewValidationError("Invalid zoom")
			}
			sess.ctrl.SetZoom(*update.Zoom)
		}
		if update.Page != nil {
			sess.ctrl.SetPage(*update.Page)
		}
		return nil
	})
}

// SetTool changes the authoring tool, color and font size.
func (s *EditorService) SetTool(id string, update domain.ToolUpdate) (*domain.SessionState, error) {
	return s.update(id, func(sess *session) error {
		var tool domain.Tool
		if update.Tool != nil {
			t, ok := domain.ParseTool(*update.Tool)
			if !ok {
				return apperrors.NewValidationError("Invalid tool", *update.Tool)
			}
			tool = t
		}
		if update.Color != nil && !domain.Color(*update.Color).Valid() {
			return apperrors.NewValidationError("Invalid color", "expected #rrggbb")
		}
		if update.FontSize != nil && (math.IsNaN(*update.FontSize) || *update.FontSize <= 0) {
			return apperrors.NewValidationError("Invalid font size")
		}

		if tool != "" {
			sess.ctrl.SetTool(tool)
		}
		if update.Color != nil {
			sess.ctrl.SetColor(domain.Color(*update.Color))
		}
		if update.FontSize != nil {
			sess.ctrl.SetFontSize(*update.FontSize)
		}
		return nil
	})
}

// Pointer feeds one pointer event to the session's controller.
func (s *EditorService) Pointer(id string, event domain.PointerEvent) (*domain.SessionState, error) {
	switch event.Type {
	case domain.PointerDown, domain.PointerMove, domain.PointerUp, domain.PointerLeave:
	default:
		return nil, apperrors.NewValidationError("Invalid pointer event type", string(event.Type))
	}
	if math.IsNaN(event.X) || math.IsNaN(event.Y) {
		return nil, apperrors.NewValidationError("Invalid pointer position")
	}
	return s.update(id, func(sess *session) error {
		sess.ctrl.HandlePointer(event)
		return nil
	})
}

// Text commits or cancels the pending text input.
func (s *EditorService) Text(id string, action domain.TextAction, text string) (*domain.SessionState, error) {
	if action != domain.TextCommit && action != domain.TextCancel {
		return nil, apperrors.NewValidationError("Invalid text action", string(action))
	}
	return s.update(id, func(sess *session) error {
		if sess.ctrl.State() != domain.GestureEditingText {
			return apperrors.NewValidationError("No text input in progress")
		}
		if action == domain.TextCancel {
			sess.ctrl.CancelText()
			return nil
		}
		if a, ok := sess.ctrl.CommitText(text); ok {
			s.logger.Debug("Text committed", "session_id", sess.id, "annotation_id", a.ID)
		}
		return nil
	})
}

// Undo removes the most recently added annotation, if any.
func (s *EditorService) Undo(id string) (*domain.SessionState, error) {
	return s.update(id, func(sess *session) error {
		if a, ok := sess.ctrl.Undo(); ok {
			s.logger.Debug("Annotation undone", "session_id", sess.id, "annotation_id", a.ID)
		}
		return nil
	})
}

// DeleteAnnotation removes one annotation.
func (s *EditorService) DeleteAnnotation(id, annotationID string) (*domain.SessionState, error) {
	return s.update(id, func(sess *session) error {
		if !sess.ctrl.Delete(annotationID) {
			return apperrors.NewNotFoundError("Annotation not found")
		}
		return nil
	})
}

// Annotations lists the annotations of a page. Page 0 means the current page.
func (s *EditorService) Annotations(id string, page int) ([]domain.Annotation, error) {
	var out []domain.Annotation
	err := s.withSession(id, func(sess *session) error {
		if page == 0 {
			page = sess.ctrl.Page()
		}
		if page < 1 || page > sess.ctrl.PageCount() {
			return apperrors.NewValidationError("Page out of range")
		}
		out = sess.store.ByPage(page)
		return nil
	})
	return out, err
}

// Frame renders the current page, the annotation overlay, or both, as PNG.
func (s *EditorService) Frame(ctx context.Context, id string, layer domain.Layer) ([]byte, error) {
	switch layer {
	case "":
		layer = domain.LayerComposite
	case domain.LayerComposite, domain.LayerPage, domain.LayerOverlay:
	default:
		return nil, apperrors.NewValidationError("Invalid layer", string(layer))
	}

	var img image.Image
	err := s.withSession(id, func(sess *session) error {
		var err error
		img, err = s.frame(ctx, sess, layer)
		return err
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, apperrors.NewInternalError("Failed to encode frame", err)
	}
	return buf.Bytes(), nil
}

func (s *EditorService) frame(ctx context.Context, sess *session, layer domain.Layer) (image.Image, error) {
	zoom := sess.ctrl.Zoom()

	if layer == domain.LayerOverlay {
		w, h := s.canvasSize(sess)
		overlay := image.NewRGBA(image.Rect(0, 0, w, h))
		s.painter.Paint(overlay, sess.ctrl.Visible(), sess.ctrl.Pending(), zoom)
		return overlay, nil
	}

	page, err := sess.doc.RenderPage(ctx, sess.ctrl.Page(), zoom*s.opts.BaseScale)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apperrors.NewInternalError("Rendering cancelled", ctxErr)
		}
		s.logger.Error("Failed to render page", err, "session_id", sess.id, "page", sess.ctrl.Page())
		return nil, apperrors.NewLoadError("Failed to render page", err)
	}
	if layer == domain.LayerPage {
		return page, nil
	}

	overlay := image.NewRGBA(page.Bounds())
	s.painter.Paint(overlay, sess.ctrl.Visible(), sess.ctrl.Pending(), zoom)
	draw.Draw(page, page.Bounds(), overlay, page.Bounds().Min, draw.Over)
	return page, nil
}

// Export produces the annotated document.
func (s *EditorService) Export(ctx context.Context, id string) (*domain.ExportResult, error) {
	var res *domain.ExportResult
	err := s.withSession(id, func(sess *session) error {
		w, _ := s.canvasSize(sess)
		anns := sess.store.All()
		data, err := s.exporter.Export(ctx, sess.data, anns, float64(w))
		if err != nil {
			s.logger.Error("Export failed", err, "session_id", sess.id, "annotations", len(anns))
			return apperrors.NewExportError("Failed to export PDF", err)
		}
		res = &domain.ExportResult{
			FileName: exportFilePrefix + sess.fileName,
			Data:     data,
		}
		s.logger.Info("Document exported", "session_id", sess.id, "annotations", len(anns), "bytes", len(data))
		return nil
	})
	return res, err
}

func (s *EditorService) validateUpload(fileName string, data []byte) error {
	if strings.TrimSpace(fileName) == "" {
		return apperrors.NewValidationError("File name is required")
	}
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return apperrors.NewValidationError("Only PDF files are allowed", fileName)
	}
	if len(data) == 0 {
		return apperrors.NewValidationError("File is empty")
	}
	if s.opts.MaxFileSize > 0 && int64(len(data)) > s.opts.MaxFileSize {
		return apperrors.NewValidationError("File too large")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return apperrors.NewValidationError("File is not a PDF", domain.ErrInvalidFile.Error())
	}
	return nil
}

func (s *EditorService) newStore() domain.AnnotationStore {
	if s.opts.NewStore != nil {
		return s.opts.NewStore()
	}
	return repository.NewMemoryAnnotationStore()
}

// canvasSize is the pixel size of the current page at the current zoom.
func (s *EditorService) canvasSize(sess *session) (int, int) {
	pw, ph, err := sess.doc.PageSize(sess.ctrl.Page())
	if err != nil {
		s.logger.Warn("Failed to read page size", "session_id", sess.id, "page", sess.ctrl.Page(), "error", err.Error())
		return 0, 0
	}
	scale := sess.ctrl.Zoom() * s.opts.BaseScale
	return int(math.Floor(pw * scale)), int(math.Floor(ph * scale))
}

func (s *EditorService) snapshot(sess *session) *domain.SessionState {
	w, h := s.canvasSize(sess)
	return &domain.SessionState{
		ID:              sess.id,
		FileName:        sess.fileName,
		Info:            sess.doc.Info(),
		PageCount:       sess.ctrl.PageCount(),
		Page:            sess.ctrl.Page(),
		Zoom:            sess.ctrl.Zoom(),
		Tool:            sess.ctrl.Tool(),
		Color:           sess.ctrl.Color(),
		FontSize:        sess.ctrl.FontSize(),
		Gesture:         sess.ctrl.State(),
		Pending:         sess.ctrl.Pending(),
		Editing:         sess.ctrl.Editing(),
		AnnotationCount: sess.store.Len(),
		CanvasWidth:     w,
		CanvasHeight:    h,
	}
}

func (s *EditorService) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// withSession runs fn while holding the session lock.
func (s *EditorService) withSession(id string, fn func(*session) error) error {
	sess, ok := s.lookup(id)
	if !ok {
		return sessionNotFound()
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return sessionNotFound()
	}
	return fn(sess)
}

// update runs fn under the session lock and returns the resulting state.
func (s *EditorService) update(id string, fn func(*session) error) (*domain.SessionState, error) {
	var st *domain.SessionState
	err := s.withSession(id, func(sess *session) error {
		if err := fn(sess); err != nil {
			return err
		}
		st = s.snapshot(sess)
		return nil
	})
	return st, err
}

func sessionNotFound() error {
	err := apperrors.NewNotFoundError("Session not found")
	err.Cause = domain.ErrSessionNotFound
	return err
}
