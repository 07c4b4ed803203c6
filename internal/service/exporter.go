package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"pdf-annotator/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

const (
	exportFontName    = "AnnF1"
	exportGStateName  = "AnnGS1"
	exportStrokeWidth = 2.0
	highlightOpacity  = 0.3

	// bezierKappa places control points for a quarter circle.
	bezierKappa = 0.5522847498
)

// PDFExporter burns annotations into page content streams of a copy of the
// original document.
type PDFExporter struct {
	logger domain.Logger
}

// NewPDFExporter creates a new exporter
func NewPDFExporter(logger domain.Logger) *PDFExporter {
	return &PDFExporter{logger: logger}
}

// Export re-reads the original bytes and appends one content stream per
// annotated page. canvasWidth is the pixel width the annotation coordinates
// are measured against.
func (e *PDFExporter) Export(ctx context.Context, original []byte, annotations []domain.Annotation, canvasWidth float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(original), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	byPage := make(map[int][]domain.Annotation)
	for _, a := range annotations {
		if a.Page < 1 || a.Page > pdfCtx.PageCount {
			return nil, fmt.Errorf("%w: annotation %s on page %d of %d", domain.ErrPageOutOfRange, a.ID, a.Page, pdfCtx.PageCount)
		}
		byPage[a.Page] = append(byPage[a.Page], a)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.stampPage(pdfCtx, p, byPage[p], canvasWidth); err != nil {
			return nil, fmt.Errorf("page %d: %w", p, err)
		}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	e.logger.Info("PDF exported", "pages", len(pages), "annotations", len(annotations), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (e *PDFExporter) stampPage(pdfCtx *model.Context, page int, anns []domain.Annotation, canvasWidth float64) error {
	pageDict, _, inh, err := pdfCtx.PageDict(page, true)
	if err != nil {
		return err
	}
	if pageDict == nil || inh == nil || inh.MediaBox == nil {
		return fmt.Errorf("missing page dictionary")
	}

	tr := domain.PageTransform{
		PageWidth:   inh.MediaBox.Width(),
		PageHeight:  inh.MediaBox.Height(),
		CanvasWidth: canvasWidth,
	}
	content := buildPageContent(anns, tr, e.logger)
	if len(content) == 0 {
		return nil
	}

	if err := addExportResources(pdfCtx, pageDict, inh); err != nil {
		return err
	}

	open, err := newContentStream(pdfCtx, []byte("q\n"))
	if err != nil {
		return err
	}
	annStream, err := newContentStream(pdfCtx, append([]byte("Q\n"), content...))
	if err != nil {
		return err
	}

	existing, err := contentRefs(pdfCtx, pageDict["Contents"])
	if err != nil {
		return err
	}
	contents := types.Array{*open}
	contents = append(contents, existing...)
	contents = append(contents, *annStream)
	pageDict["Contents"] = contents
	return nil
}

func newContentStream(pdfCtx *model.Context, buf []byte) (*types.IndirectRef, error) {
	sd, err := pdfCtx.NewStreamDictForBuf(buf)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return pdfCtx.IndRefForNewObject(*sd)
}

// contentRefs flattens a page Contents entry into an array of stream references.
func contentRefs(pdfCtx *model.Context, obj types.Object) (types.Array, error) {
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case types.Array:
		return v, nil
	case types.IndirectRef:
		target, err := pdfCtx.Dereference(v)
		if err != nil {
			return nil, err
		}
		if arr, ok := target.(types.Array); ok {
			return arr, nil
		}
		return types.Array{v}, nil
	}
	return nil, fmt.Errorf("unexpected page contents %T", obj)
}

// addExportResources registers the font and graphics state used by the
// annotation stream on the page.
func addExportResources(pdfCtx *model.Context, pageDict types.Dict, inh *model.InheritedPageAttrs) error {
	var res types.Dict
	if obj, ok := pageDict["Resources"]; ok && obj != nil {
		d, err := pdfCtx.DereferenceDict(obj)
		if err != nil {
			return err
		}
		res = d
	}
	if res == nil {
		res = types.Dict{}
		for k, v := range inh.Resources {
			res[k] = v
		}
		pageDict["Resources"] = res
	}

	fonts, err := subDict(pdfCtx, res, "Font")
	if err != nil {
		return err
	}
	fonts[exportFontName] = types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}

	gstates, err := subDict(pdfCtx, res, "ExtGState")
	if err != nil {
		return err
	}
	gstates[exportGStateName] = types.Dict{
		"Type": types.Name("ExtGState"),
		"ca":   types.Float(highlightOpacity),
		"CA":   types.Float(highlightOpacity),
	}
	return nil
}

func subDict(pdfCtx *model.Context, parent types.Dict, key string) (types.Dict, error) {
	if obj, ok := parent[key]; ok && obj != nil {
		d, err := pdfCtx.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	d := types.Dict{}
	parent[key] = d
	return d, nil
}

// buildPageContent renders annotations as PDF content stream operators in
// page space.
func buildPageContent(anns []domain.Annotation, tr domain.PageTransform, logger domain.Logger) []byte {
	var sb strings.Builder
	for _, a := range anns {
		switch a.Kind {
		case domain.KindText:
			writeText(&sb, a, tr)
		case domain.KindRectangle:
			writeRectangle(&sb, a, tr)
		case domain.KindCircle:
			writeCircle(&sb, a, tr)
		case domain.KindHighlight:
			writeHighlight(&sb, a, tr)
		case domain.KindFreehand:
			logger.Debug("Freehand annotation not exported", "id", a.ID, "page", a.Page)
		default:
			logger.Warn("Skipping annotation of unknown kind", "id", a.ID, "kind", a.Kind)
		}
	}
	return []byte(sb.String())
}

func writeText(sb *strings.Builder, a domain.Annotation, tr domain.PageTransform) {
	if a.Text == "" {
		return
	}
	size := tr.Length(a.EffectiveFontSize())
	r, g, b := a.Color.Components(domain.DefaultColor)
	fmt.Fprintf(sb, "%s %s %s rg\n", num(r), num(g), num(b))
	fmt.Fprintf(sb, "BT /%s %s Tf %s %s Td (%s) Tj ET\n",
		exportFontName, num(size), num(tr.X(a.X)), num(tr.Y(a.Y)-size), pdfString(a.Text))
}

func writeRectangle(sb *strings.Builder, a domain.Annotation, tr domain.PageTransform) {
	r, g, b := a.Color.Components(domain.DefaultColor)
	fmt.Fprintf(sb, "%s %s %s RG %s w\n", num(r), num(g), num(b), num(exportStrokeWidth))
	fmt.Fprintf(sb, "%s re S\n", rectOperands(a, tr))
}

func writeHighlight(sb *strings.Builder, a domain.Annotation, tr domain.PageTransform) {
	r, g, b := a.Color.Components(domain.DefaultColor)
	fmt.Fprintf(sb, "q /%s gs %s %s %s rg\n", exportGStateName, num(r), num(g), num(b))
	fmt.Fprintf(sb, "%s re f Q\n", rectOperands(a, tr))
}

func rectOperands(a domain.Annotation, tr domain.PageTransform) string {
	w, h := tr.Length(a.Width), tr.Length(a.Height)
	return fmt.Sprintf("%s %s %s %s", num(tr.X(a.X)), num(tr.Y(a.Y)-h), num(w), num(h))
}

func writeCircle(sb *strings.Builder, a domain.Annotation, tr domain.PageTransform) {
	w, h := tr.Length(a.Width), tr.Length(a.Height)
	cx := tr.X(a.X) + w/2
	cy := tr.Y(a.Y) - h/2
	rad := math.Hypot(w, h) / 2
	k := rad * bezierKappa

	r, g, b := a.Color.Components(domain.DefaultColor)
	fmt.Fprintf(sb, "%s %s %s RG %s w\n", num(r), num(g), num(b), num(exportStrokeWidth))
	fmt.Fprintf(sb, "%s %s m\n", num(cx+rad), num(cy))
	curve := func(x1, y1, x2, y2, x3, y3 float64) {
		fmt.Fprintf(sb, "%s %s %s %s %s %s c\n", num(x1), num(y1), num(x2), num(y2), num(x3), num(y3))
	}
	curve(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	curve(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	curve(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	curve(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	sb.WriteString("S\n")
}

// pdfString encodes text as a WinAnsi literal string. Runes outside the
// encoding become '?'.
func pdfString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		switch c {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// num formats a coordinate with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
