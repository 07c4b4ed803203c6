package domain

// GestureState is the state of the interaction controller.
type GestureState string

const (
	GestureIdle        GestureState = "idle"
	GestureDrawing     GestureState = "drawing"
	GestureDragging    GestureState = "dragging"
	GestureEditingText GestureState = "editing-text"
)

// PointerType identifies a pointer-device event.
type PointerType string

const (
	PointerDown  PointerType = "down"
	PointerMove  PointerType = "move"
	PointerUp    PointerType = "up"
	PointerLeave PointerType = "leave"
)

// PointerEvent is a pointer position in canvas pixels.
type PointerEvent struct {
	Type PointerType `json:"type"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

// TextAction resolves a text editing gesture.
type TextAction string

const (
	TextCommit TextAction = "commit"
	TextCancel TextAction = "cancel"
)

// Layer selects what a rendered frame contains.
type Layer string

const (
	LayerComposite Layer = "composite"
	LayerPage      Layer = "page"
	LayerOverlay   Layer = "overlay"
)

// TextEditing describes a pending text input.
type TextEditing struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// TargetID is set when an existing text annotation is being edited.
	TargetID string `json:"target_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// SessionState is a snapshot of one editing session.
type SessionState struct {
	ID              string       `json:"id"`
	FileName        string       `json:"file_name"`
	Info            DocumentInfo `json:"info"`
	PageCount       int          `json:"page_count"`
	Page            int          `json:"page"`
	Zoom            float64      `json:"zoom"`
	Tool            Tool         `json:"tool"`
	Color           Color        `json:"color"`
	FontSize        float64      `json:"font_size"`
	Gesture         GestureState `json:"gesture"`
	Pending         *Annotation  `json:"pending,omitempty"`
	Editing         *TextEditing `json:"editing,omitempty"`
	AnnotationCount int          `json:"annotation_count"`
	CanvasWidth     int          `json:"canvas_width"`
	CanvasHeight    int          `json:"canvas_height"`
}

// ViewUpdate changes the visible page and zoom. Nil fields are left unchanged.
type ViewUpdate struct {
	Page *int     `json:"page,omitempty"`
	Zoom *float64 `json:"zoom,omitempty"`
}

// ToolUpdate changes authoring settings. Nil fields are left unchanged.
type ToolUpdate struct {
	Tool     *string  `json:"tool,omitempty"`
	Color    *string  `json:"color,omitempty"`
	FontSize *float64 `json:"font_size,omitempty"`
}

// ExportResult is a finished output document.
type ExportResult struct {
	FileName string
	Data     []byte
}
