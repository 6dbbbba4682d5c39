// Package pdf assembles the rendered clause plan into the final will
// document. Rendering is deterministic: the same clauses and generation
// timestamp always produce byte-identical output, so the wall clock is
// never read here.
package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"willgen/internal/will/render"
)

// Page geometry in millimetres.
const (
	marginLeft   = 25.0
	marginRight  = 25.0
	marginTop    = 20.0
	marginBottom = 30.0

	pageWidth = 210.0 // A4 portrait
)

const shortHashLen = 16

// brisbane is the display timezone for the footer timestamp. Queensland
// observes no daylight saving, so a fixed offset is exact year-round and
// keeps output independent of the host tzdata.
var brisbane = time.FixedZone("AEST", 10*60*60)

// Document is the assembled will with its integrity metadata.
type Document struct {
	Bytes []byte

	// IntegrityHash is the SHA-256 of the final bytes. Verification
	// re-hashes the stored document against this value.
	IntegrityHash string

	// ContentHash is the SHA-256 of the first-pass bytes, computed before
	// the footer exists. Its short form appears in the footer of every page.
	ContentHash string

	PageCount int
}

type footerInfo struct {
	generated  string
	shortHash  string
	totalPages int
}

// Assemble renders the clause plan to PDF bytes in two passes. The first
// pass lays the document out without a footer to fix the page count and the
// content hash; the second pass repeats the layout with the full footer.
func Assemble(clauses []render.Clause, generatedAt time.Time) (*Document, error) {
	if len(clauses) == 0 {
		return nil, fmt.Errorf("pdf: empty clause plan")
	}

	first, err := layout(clauses, generatedAt, nil)
	if err != nil {
		return nil, err
	}
	contentHash := sha256Hex(first.bytes)

	second, err := layout(clauses, generatedAt, &footerInfo{
		generated:  FormatFooterTimestamp(generatedAt),
		shortHash:  contentHash[:shortHashLen],
		totalPages: first.pages,
	})
	if err != nil {
		return nil, err
	}
	if second.pages != first.pages {
		return nil, fmt.Errorf("pdf: pagination diverged between passes (%d vs %d)", first.pages, second.pages)
	}

	return &Document{
		Bytes:         second.bytes,
		IntegrityHash: sha256Hex(second.bytes),
		ContentHash:   contentHash,
		PageCount:     second.pages,
	}, nil
}

// VerifyIntegrity re-hashes document bytes against a stored hash.
func VerifyIntegrity(pdfBytes []byte, expectedHash string) bool {
	return sha256Hex(pdfBytes) == expectedHash
}

// FormatFooterTimestamp renders the stored generation timestamp in Brisbane
// local time, e.g. "15 January 2026 at 09:30 AM AEST".
func FormatFooterTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(brisbane).Format("02 January 2006 at 03:04 PM MST")
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type layoutResult struct {
	bytes []byte
	pages int
}

func layout(clauses []render.Clause, generatedAt time.Time, footer *footerInfo) (*layoutResult, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	// Resource dictionaries are emitted in map order unless the catalog is
	// sorted; without this the same input yields different bytes run to run.
	doc.SetCatalogSort(true)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, marginBottom)

	doc.SetTitle("Last Will and Testament", true)
	doc.SetAuthor("Will Generator", true)
	doc.SetCreator("Will Generator", true)
	doc.SetCreationDate(generatedAt)
	doc.SetModificationDate(generatedAt)

	tr := doc.UnicodeTranslatorFromDescriptor("")

	if footer != nil {
		doc.SetFooterFunc(func() {
			doc.SetY(-15)
			doc.SetFont("Times", "", 8)
			doc.SetTextColor(102, 102, 102)
			doc.CellFormat(0, 5,
				tr(fmt.Sprintf("Generated: %s | Hash: %s", footer.generated, footer.shortHash)),
				"", 0, "L", false, 0, "")
			doc.SetX(marginLeft)
			doc.CellFormat(0, 5,
				fmt.Sprintf("Page %d of %d", doc.PageNo(), footer.totalPages),
				"", 0, "R", false, 0, "")
			doc.SetTextColor(0, 0, 0)
		})
	}

	doc.AddPage()

	w := writer{doc: doc, tr: tr}
	for _, cl := range clauses {
		w.clause(cl)
	}

	if doc.Err() {
		return nil, fmt.Errorf("pdf: layout failed: %w", doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output failed: %w", err)
	}

	return &layoutResult{bytes: buf.Bytes(), pages: doc.PageCount()}, nil
}

type writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) clause(cl render.Clause) {
	w.doc.Ln(6)
	w.doc.SetFont("Times", "B", 13)
	w.doc.MultiCell(0, 7, w.tr(fmt.Sprintf("%d. %s", cl.Number, cl.Title)), "", "L", false)
	w.doc.Ln(2)

	for _, block := range cl.Blocks {
		w.block(block)
	}

	w.doc.Ln(4)
}

func (w *writer) block(b render.Block) {
	switch b.Type {
	case render.BlockHeading1:
		w.doc.SetFont("Times", "B", 18)
		w.doc.MultiCell(0, 9, w.tr(b.Text), "", "C", false)
		w.doc.Ln(10)

	case render.BlockParagraph:
		w.doc.SetFont("Times", "", 11)
		w.doc.MultiCell(0, 6, w.tr(b.Text), "", "J", false)
		w.doc.Ln(3)

	case render.BlockBulletItem:
		text := b.Text
		if b.Definition != nil {
			text = b.Definition.Term + " " + b.Definition.Definition
		}
		w.indented("• "+text, 8)

	case render.BlockNumberedItem:
		w.indented(b.Text, 8)

	case render.BlockSignature:
		if b.Signature != nil {
			w.signature(b.Signature)
		}
	}
}

func (w *writer) indented(text string, indent float64) {
	w.doc.SetFont("Times", "", 11)
	w.doc.SetX(marginLeft + indent)
	w.doc.MultiCell(pageWidth-marginLeft-marginRight-indent, 6, w.tr(text), "", "L", false)
	w.doc.Ln(2)
}

// Signature layout constants.
const (
	sigLineHeight = 8.0
	sigLabelX     = 35.0 // offset of the ruled line from the left margin
	sigWidth      = 140.0
)

func (w *writer) signature(sig *render.Signature) {
	// The full block must sit on one page; a break through the middle of a
	// signature area would be unusable for execution.
	lines := sig.Lines
	if lines < 3 {
		lines = 3
	}
	height := float64(lines)*sigLineHeight + 18
	_, pageHeight := w.doc.GetPageSize()
	if w.doc.GetY()+height > pageHeight-marginBottom {
		w.doc.AddPage()
	}

	y := w.doc.GetY() + 4

	if sig.Label != "" {
		w.doc.SetFont("Times", "B", 11)
		w.doc.Text(marginLeft, y, w.tr(sig.Label))
		y += sigLineHeight
	}

	nameLabel := sig.NameLabel
	if nameLabel == "" {
		nameLabel = "Name"
	}
	w.doc.SetFont("Times", "", 10)
	w.doc.Text(marginLeft, y, w.tr(nameLabel+":"))
	if sig.Name != "" {
		w.doc.SetFont("Times", "B", 10)
		w.doc.Text(marginLeft+sigLabelX, y, w.tr(sig.Name))
	}
	w.doc.Line(marginLeft+sigLabelX, y+1, marginLeft+sigWidth, y+1)
	y += sigLineHeight

	if sig.AddressLabel != "" {
		w.doc.SetFont("Times", "", 10)
		w.doc.Text(marginLeft, y, w.tr(sig.AddressLabel+":"))
		w.doc.Line(marginLeft+sigLabelX, y+1, marginLeft+sigWidth, y+1)
		y += sigLineHeight
	}

	if sig.OccupationLabel != "" {
		w.doc.SetFont("Times", "", 10)
		w.doc.Text(marginLeft, y, w.tr(sig.OccupationLabel+":"))
		w.doc.Line(marginLeft+sigLabelX, y+1, marginLeft+sigWidth, y+1)
		y += sigLineHeight
	}

	w.doc.SetFont("Times", "", 10)
	w.doc.Text(marginLeft, y, "Signature:")
	w.doc.Line(marginLeft+sigLabelX, y+1, marginLeft+sigWidth, y+1)
	y += sigLineHeight

	dateLabel := sig.DateLabel
	if dateLabel == "" {
		dateLabel = "Date"
	}
	w.doc.Text(marginLeft, y, w.tr(dateLabel+":"))
	w.doc.Line(marginLeft+sigLabelX, y+1, marginLeft+80, y+1)

	w.doc.SetY(y + 6)
}
