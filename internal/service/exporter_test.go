package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"pdf-annotator/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minimalPDF builds an uncompressed document of blank pages with a valid
// cross-reference table.
func minimalPDF(pages int, width, height float64) []byte {
	var objs []string
	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> /Contents %d 0 R >>", width, height, 4+2*i))
		body := "0 0 m\n"
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(body), body))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func pageContent(t *testing.T, data []byte, page int) string {
	t.Helper()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("reading exported PDF: %v", err)
	}
	r, err := pdfcpu.ExtractPageContent(ctx, page)
	if err != nil {
		t.Fatalf("extracting page %d: %v", page, err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading page %d content: %v", page, err)
	}
	return string(b)
}

func TestBuildPageContent(t *testing.T) {
	// 600x800 canvas showing a 300x400 point page.
	tr := domain.PageTransform{PageWidth: 300, PageHeight: 400, CanvasWidth: 600}

	tests := []struct {
		name string
		ann  domain.Annotation
		want []string
	}{
		{
			name: "rectangle",
			ann:  domain.Annotation{Kind: domain.KindRectangle, X: 50, Y: 50, Width: 100, Height: 40, Color: "#ff0000"},
			want: []string{"1 0 0 RG 2 w", "25 355 50 20 re S"},
		},
		{
			// Same placement as the rectangle, translucent fill.
			name: "highlight",
			ann:  domain.Annotation{Kind: domain.KindHighlight, X: 50, Y: 50, Width: 100, Height: 40, Color: "#ffff00"},
			want: []string{"/AnnGS1 gs 1 1 0 rg", "25 355 50 20 re f"},
		},
		{
			// Baseline sits one scaled font size below the anchor.
			name: "text",
			ann:  domain.Annotation{Kind: domain.KindText, X: 20, Y: 100, Text: "Hi", FontSize: 20},
			want: []string{"0 0 0 rg", "BT /AnnF1 10 Tf 10 340 Td (Hi) Tj ET"},
		},
		{
			// Radius is half the diagonal of the scaled drag box.
			name: "circle",
			ann:  domain.Annotation{Kind: domain.KindCircle, X: 100, Y: 100, Width: 60, Height: 80},
			want: []string{"0 0 0 RG 2 w", "90 330 m", "S\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(buildPageContent([]domain.Annotation{tt.ann}, tr, NewMockLogger()))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("expected %q in content:\n%s", w, got)
				}
			}
		})
	}
}

func TestBuildPageContent_FreehandSkipped(t *testing.T) {
	logger := NewMockLogger()
	tr := domain.PageTransform{PageWidth: 300, PageHeight: 400, CanvasWidth: 600}
	anns := []domain.Annotation{{
		ID: "f1", Kind: domain.KindFreehand, Page: 1,
		Path: []domain.Point{{X: 1, Y: 1}, {X: 5, Y: 5}},
	}}

	if got := buildPageContent(anns, tr, logger); len(got) != 0 {
		t.Fatalf("expected no content for freehand, got %q", got)
	}
	found := false
	for _, m := range logger.Messages() {
		if strings.HasPrefix(m, "DEBUG: Freehand") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected freehand skip to be logged, got %v", logger.Messages())
	}
}

func TestPDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`a(b)c\d`, `a\(b\)c\\d`},
		{"caf\u00e9", "caf\xe9"},
		{"snow \u2603", "snow ?"},
	}
	for _, tt := range tests {
		if got := pdfString(tt.in); got != tt.want {
			t.Fatalf("pdfString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		25:       "25",
		0.5:      "0.5",
		1.0 / 3:  "0.3333",
		-0.00001: "0",
	}
	for in, want := range tests {
		if got := num(in); got != want {
			t.Fatalf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPDFExporter_Export(t *testing.T) {
	exp := NewPDFExporter(NewMockLogger())
	original := minimalPDF(2, 300, 400)

	out, err := exp.Export(context.Background(), original, []domain.Annotation{
		{ID: "r", Kind: domain.KindRectangle, Page: 2, X: 50, Y: 50, Width: 100, Height: 40},
	}, 600)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}

	content := pageContent(t, out, 2)
	if !strings.Contains(content, "25 355 50 20 re S") {
		t.Fatalf("annotation missing from page 2 content:\n%s", content)
	}
	if !strings.HasPrefix(strings.TrimSpace(content), "q") {
		t.Fatalf("expected original content to be wrapped in q/Q:\n%s", content)
	}
	if strings.Contains(pageContent(t, out, 1), " re ") {
		t.Fatalf("page 1 must stay untouched")
	}
}

func TestPDFExporter_Errors(t *testing.T) {
	exp := NewPDFExporter(NewMockLogger())

	if _, err := exp.Export(context.Background(), []byte("not a pdf"), nil, 600); err == nil {
		t.Fatalf("expected error for malformed input")
	}

	_, err := exp.Export(context.Background(), minimalPDF(1, 300, 400), []domain.Annotation{
		{ID: "r", Kind: domain.KindRectangle, Page: 3},
	}, 600)
	if !errors.Is(err, domain.ErrPageOutOfRange) {
		t.Fatalf("expected page out of range error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Export(ctx, minimalPDF(1, 300, 400), nil, 600); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
