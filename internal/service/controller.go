package service

import (
	"math"

	"pdf-annotator/internal/domain"
)

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.25
)

// ControllerOptions configures a new Controller.
type ControllerOptions struct {
	PageCount int
	FontSize  float64
	Color     domain.Color
	NewID     IDGenerator
}

// Controller turns pointer and keyboard input into annotation changes for one
// open document. Only one gesture is in flight at a time.
type Controller struct {
	store     domain.AnnotationStore
	newID     IDGenerator
	pageCount int

	page     int
	zoom     float64
	tool     domain.Tool
	color    domain.Color
	fontSize float64

	state   domain.GestureState
	pending *domain.Annotation
	editing *domain.TextEditing

	dragID     string
	dragOffset domain.Point
	dragMoved  bool
}

// NewController creates a controller showing page 1 at zoom 1 with the select tool.
func NewController(store domain.AnnotationStore, opts ControllerOptions) *Controller {
	c := &Controller{
		store:     store,
		newID:     opts.NewID,
		pageCount: opts.PageCount,
		page:      1,
		zoom:      1,
		tool:      domain.ToolSelect,
		color:     domain.DefaultColor,
		fontSize:  domain.DefaultFontSize,
		state:     domain.GestureIdle,
	}
	if c.newID == nil {
		c.newID = UUIDv7()
	}
	if c.pageCount < 1 {
		c.pageCount = 1
	}
	if opts.Color.Valid() {
		c.color = opts.Color
	}
	if opts.FontSize > 0 {
		c.SetFontSize(opts.FontSize)
	}
	return c
}

func (c *Controller) State() domain.GestureState { return c.state }
func (c *Controller) Page() int                  { return c.page }
func (c *Controller) PageCount() int             { return c.pageCount }
func (c *Controller) Zoom() float64              { return c.zoom }
func (c *Controller) Tool() domain.Tool          { return c.tool }
func (c *Controller) Color() domain.Color        { return c.color }
func (c *Controller) FontSize() float64          { return c.fontSize }

// Pending returns the uncommitted annotation of a drawing gesture.
func (c *Controller) Pending() *domain.Annotation {
	if c.pending == nil {
		return nil
	}
	p := c.pending.Clone()
	return &p
}

// Editing returns the pending text input, if any.
func (c *Controller) Editing() *domain.TextEditing {
	if c.editing == nil {
		return nil
	}
	e := *c.editing
	return &e
}

// Visible returns the committed annotations of the current page in paint order.
func (c *Controller) Visible() []domain.Annotation {
	return c.store.ByPage(c.page)
}

// SetTool selects the authoring tool and abandons any gesture in flight.
func (c *Controller) SetTool(t domain.Tool) {
	if t == c.tool {
		return
	}
	c.abandon()
	c.tool = t
}

// SetColor changes the color of new annotations. Malformed values are ignored.
func (c *Controller) SetColor(col domain.Color) bool {
	if !col.Valid() {
		return false
	}
	c.color = col
	return true
}

// SetFontSize changes the size of new text annotations, clamped to the allowed range.
func (c *Controller) SetFontSize(size float64) {
	c.fontSize = math.Max(domain.MinFontSize, math.Min(domain.MaxFontSize, math.Round(size)))
}

// SetPage shows another page, clamped to the document.
func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if page > c.pageCount {
		page = c.pageCount
	}
	if page == c.page {
		return
	}
	c.abandon()
	c.page = page
}

func (c *Controller) NextPage() { c.SetPage(c.page + 1) }
func (c *Controller) PrevPage() { c.SetPage(c.page - 1) }

// SetZoom changes the zoom factor, clamped to [MinZoom, MaxZoom]. Existing
// annotations keep the pixel coordinates they were authored with.
func (c *Controller) SetZoom(zoom float64) {
	zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
	if zoom == c.zoom {
		return
	}
	c.abandon()
	c.zoom = zoom
}

func (c *Controller) ZoomIn()  { c.SetZoom(c.zoom + ZoomStep) }
func (c *Controller) ZoomOut() { c.SetZoom(c.zoom - ZoomStep) }

// HandlePointer feeds one pointer event into the state machine.
func (c *Controller) HandlePointer(ev domain.PointerEvent) {
	p := domain.Point{X: ev.X, Y: ev.Y}
	switch ev.Type {
	case domain.PointerDown:
		c.pointerDown(p)
	case domain.PointerMove:
		c.pointerMove(p)
	case domain.PointerUp:
		c.pointerUp(false)
	case domain.PointerLeave:
		c.pointerUp(true)
	}
}

func (c *Controller) pointerDown(p domain.Point) {
	if c.state != domain.GestureIdle {
		return
	}

	if hit, ok := c.hitText(p); ok {
		if c.tool.CanDrag() {
			c.state = domain.GestureDragging
			c.dragID = hit.ID
			c.dragOffset = p.Sub(hit.Anchor())
			c.dragMoved = false
		}
		return
	}

	switch {
	case c.tool == domain.ToolText:
		c.state = domain.GestureEditingText
		c.editing = &domain.TextEditing{X: p.X, Y: p.Y}
	case c.tool.DrawsShape():
		a := domain.Annotation{
			ID:    c.newID(),
			Kind:  c.tool.Kind(),
			Page:  c.page,
			X:     p.X,
			Y:     p.Y,
			Color: c.color,
		}
		if a.Kind == domain.KindFreehand {
			a.Path = []domain.Point{p}
		}
		c.pending = &a
		c.state = domain.GestureDrawing
	}
}

func (c *Controller) pointerMove(p domain.Point) {
	switch c.state {
	case domain.GestureDrawing:
		if c.pending.Kind == domain.KindFreehand {
			c.pending.Path = append(c.pending.Path, p)
			return
		}
		c.pending.Width = p.X - c.pending.X
		c.pending.Height = p.Y - c.pending.Y

	case domain.GestureDragging:
		a, ok := c.store.Get(c.dragID)
		if !ok {
			c.abandon()
			return
		}
		a.X = p.X - c.dragOffset.X
		a.Y = p.Y - c.dragOffset.Y
		c.store.Replace(a)
		c.dragMoved = true
	}
}

func (c *Controller) pointerUp(leave bool) {
	switch c.state {
	case domain.GestureDrawing:
		c.store.Append(*c.pending)
		c.abandon()

	case domain.GestureDragging:
		if c.dragMoved || leave {
			c.abandon()
			return
		}
		// A click without movement opens the text for editing.
		a, ok := c.store.Get(c.dragID)
		c.abandon()
		if ok {
			c.state = domain.GestureEditingText
			c.editing = &domain.TextEditing{X: a.X, Y: a.Y, TargetID: a.ID, Text: a.Text}
		}
	}
}

// CommitText resolves text editing. Empty input discards the edit. The
// returned annotation is the one created or changed.
func (c *Controller) CommitText(text string) (domain.Annotation, bool) {
	if c.state != domain.GestureEditingText {
		return domain.Annotation{}, false
	}
	ed := *c.editing
	c.abandon()
	if text == "" {
		return domain.Annotation{}, false
	}

	if ed.TargetID != "" {
		a, ok := c.store.Get(ed.TargetID)
		if !ok {
			return domain.Annotation{}, false
		}
		a.Text = text
		c.store.Replace(a)
		return a, true
	}

	a := domain.Annotation{
		ID:       c.newID(),
		Kind:     domain.KindText,
		Page:     c.page,
		X:        ed.X,
		Y:        ed.Y,
		Text:     text,
		FontSize: c.fontSize,
		Color:    c.color,
	}
	c.store.Append(a)
	return a, true
}

// CancelText discards pending text input.
func (c *Controller) CancelText() bool {
	if c.state != domain.GestureEditingText {
		return false
	}
	c.abandon()
	return true
}

// Undo removes the most recently added annotation of the session.
func (c *Controller) Undo() (domain.Annotation, bool) {
	a, ok := c.store.RemoveLast()
	if ok {
		c.forget(a.ID)
	}
	return a, ok
}

// Delete removes one annotation.
func (c *Controller) Delete(id string) bool {
	if !c.store.Remove(id) {
		return false
	}
	c.forget(id)
	return true
}

// forget ends a drag or edit whose target no longer exists.
func (c *Controller) forget(id string) {
	if c.state == domain.GestureDragging && c.dragID == id {
		c.abandon()
	}
	if c.state == domain.GestureEditingText && c.editing.TargetID == id {
		c.abandon()
	}
}

// hitText finds the topmost text annotation on the current page under p.
func (c *Controller) hitText(p domain.Point) (domain.Annotation, bool) {
	visible := c.store.ByPage(c.page)
	for i := len(visible) - 1; i >= 0; i-- {
		a := visible[i]
		if a.Kind == domain.KindText && a.TextBox(c.zoom).Contains(p) {
			return a, true
		}
	}
	return domain.Annotation{}, false
}

func (c *Controller) abandon() {
	c.state = domain.GestureIdle
	c.pending = nil
	c.editing = nil
	c.dragID = ""
	c.dragOffset = domain.Point{}
	c.dragMoved = false
}
