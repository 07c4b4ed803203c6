// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"pdf-annotator/internal/domain"

	"github.com/gorilla/mux"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file itself.
const multipartOverhead = 1 << 20

// DocumentHandler exposes editing sessions over HTTP
type DocumentHandler struct {
	editorService domain.EditorService
	maxFileSize   int64
	logger        domain.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(editorService domain.EditorService, maxFileSize int64, logger domain.Logger) *DocumentHandler {
	return &DocumentHandler{
		editorService: editorService,
		maxFileSize:   maxFileSize,
		logger:        logger,
	}
}

type textRequest struct {
	Action domain.TextAction `json:"action"`
	Text   string            `json:"text"`
}

type annotationsResponse struct {
	Page        int                 `json:"page"`
	Annotations []domain.Annotation `json:"annotations"`
}

// UploadDocument opens an uploaded PDF in a new session
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	// Sanitize filename (strip any path components)
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "document.pdf"
	}

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", err, "file_name", name)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	state, err := h.editorService.Open(r.Context(), name, data)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// GetDocument returns the state of a session
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorService.State(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// CloseDocument ends a session
func (h *DocumentHandler) CloseDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.editorService.Close(mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateView changes the visible page and zoom
func (h *DocumentHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	var req domain.ViewUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.respond(w, r, func(id string) (*domain.SessionState, error) {
		return h.editorService.SetView(id, req)
	})
}

// UpdateTool changes the tool, color and font size
func (h *DocumentHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	var req domain.ToolUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.respond(w, r, func(id string) (*domain.SessionState, error) {
		return h.editorService.SetTool(id, req)
	})
}

// HandlePointer forwards one pointer event
func (h *DocumentHandler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	var req domain.PointerEvent
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.respond(w, r, func(id string) (*domain.SessionState, error) {
		return h.editorService.Pointer(id, req)
	})
}

// HandleText commits or cancels text input
func (h *DocumentHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.respond(w, r, func(id string) (*domain.SessionState, error) {
		return h.editorService.Text(id, req.Action, req.Text)
	})
}

// Undo removes the latest annotation
func (h *DocumentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.editorService.Undo)
}

// GetAnnotations lists the annotations of a page, the current one by default
func (h *DocumentHandler) GetAnnotations(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeError(w, http.StatusBadRequest, "Invalid page")
			return
		}
		page = p
	}

	id := mux.Vars(r)["id"]
	anns, err := h.editorService.Annotations(id, page)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if page == 0 {
		state, err := h.editorService.State(id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		page = state.Page
	}
	writeJSON(w, http.StatusOK, annotationsResponse{Page: page, Annotations: anns})
}

// DeleteAnnotation removes one annotation
func (h *DocumentHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	annotationID := mux.Vars(r)["annotationId"]
	h.respond(w, r, func(id string) (*domain.SessionState, error) {
		return h.editorService.DeleteAnnotation(id, annotationID)
	})
}

// GetFrame returns the rendered page and overlay as PNG
func (h *DocumentHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	layer := domain.Layer(r.URL.Query().Get("layer"))
	data, err := h.editorService.Frame(r.Context(), mux.Vars(r)["id"], layer)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportDocument downloads the annotated PDF
func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	res, err := h.editorService.Export(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(res.FileName, `"`, "")+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (h *DocumentHandler) respond(w http.ResponseWriter, r *http.Request, fn func(id string) (*domain.SessionState, error)) {
	state, err := fn(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
