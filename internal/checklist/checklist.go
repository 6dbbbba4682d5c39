// Package checklist generates the execution checklist PDF that accompanies a
// will: signing and witnessing instructions for valid execution in
// Queensland. Like the will itself, output is deterministic for a given
// context and generation timestamp.
package checklist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	willpdf "willgen/internal/will/pdf"
	"willgen/internal/will/willcontext"
)

const (
	marginLeft   = 25.0
	marginRight  = 25.0
	marginTop    = 20.0
	marginBottom = 25.0
)

// Document is the generated checklist with its hash.
type Document struct {
	Bytes     []byte
	Hash      string
	PageCount int
}

// Generate renders the execution checklist for a will. willHash is the
// integrity hash of the associated will document; its short form is printed
// in the document reference section.
func Generate(c *willcontext.Context, willHash string, generatedAt time.Time) (*Document, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	// Resource dictionaries are emitted in map order unless the catalog is
	// sorted; without this the same input yields different bytes run to run.
	doc.SetCatalogSort(true)
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, marginBottom)
	doc.SetTitle("Will Execution Checklist", true)
	doc.SetCreationDate(generatedAt)
	doc.SetModificationDate(generatedAt)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	w := writer{doc: doc, tr: tr}

	w.title("WILL EXECUTION CHECKLIST")
	w.subtitle("Instructions for Properly Signing and Witnessing Your Will")

	w.heading("Document Reference")
	shortHash := willHash
	if len(shortHash) > 16 {
		shortHash = shortHash[:16] + "..."
	}
	w.labelled("Will Maker", c.WillMaker.FullName)
	w.labelled("Document Hash", shortHash)
	w.labelled("Generated", willpdf.FormatFooterTimestamp(generatedAt))

	w.heading("IMPORTANT")
	w.important("Your will is NOT legally valid until it is properly signed and witnessed. Failure to follow these instructions may result in your will being invalid or contested.")

	w.heading("Before You Sign")
	w.checkItems([]string{
		"Read your will completely and carefully",
		"Ensure all names are spelled correctly",
		"Verify all addresses are current and complete",
		"Confirm the distribution matches your intentions",
		"Print the will on plain white A4 paper (do not use pre-printed forms)",
		"Do NOT sign or date the will yet",
		"Arrange for two independent adult witnesses",
	})

	w.heading("Witness Requirements (Queensland)")
	w.paragraph("Your witnesses MUST meet ALL of the following requirements:")
	w.checkItems([]string{
		"Both witnesses must be 18 years or older",
		"Both witnesses must be present at the same time",
		"Witnesses must be mentally competent",
		"Witnesses must watch you sign the will",
		"You must watch both witnesses sign",
		"Each witness must watch the other witness sign",
	})

	w.heading("Who CANNOT Witness Your Will")
	w.paragraph("The following people should NOT witness your will:")
	w.excludedItems([]string{
		"Anyone named as a beneficiary in the will",
		"The spouse or partner of any beneficiary",
		"Anyone under 18 years of age",
		"Anyone who is visually impaired (cannot see you sign)",
		"Anyone who does not understand the nature of the document",
	})

	w.heading("Signing Procedure")
	w.checkItems([]string{
		"Print your full name clearly in the will maker section",
		"Sign your name in the presence of both witnesses",
		"Both witnesses must sign in your presence",
		"Each witness must sign in the presence of the other witness",
		"All signatures must be on the same document",
		"Do NOT sign any pages that are blank or incomplete",
		"Date the will on the date of signing (not before)",
	})

	w.heading("After Signing")
	w.checkItems([]string{
		"Store the original will in a safe, secure location",
		"Do NOT attach anything to the will (staples, paper clips, etc.)",
		"Do NOT write on the will after signing",
		"Tell your executor where the will is stored",
		"Consider giving a copy to your executor",
		"Review your will every 2-3 years or after major life changes",
	})

	w.heading("What Your Will Does NOT Cover")
	w.paragraph("The following assets may NOT pass under your will:")
	w.bullets([]string{
		"Superannuation: Contact your super fund to make a binding death nomination",
		"Jointly held property: Usually passes to the surviving joint owner",
		"Assets in trust: Governed by the trust deed, not your will",
		"Life insurance: Paid to nominated beneficiaries",
		"Company shares: May be subject to shareholder agreements",
	})

	w.heading("When to Seek Legal Advice")
	w.paragraph("Consider consulting a solicitor if any of the following apply:")
	w.bullets([]string{
		"You have significant assets or complex financial arrangements",
		"You own a business or have company interests",
		"You have beneficiaries with special needs",
		"You want to exclude a family member who may contest",
		"You have assets in multiple jurisdictions",
		"You are in a blended family situation",
		"You are unsure about any aspect of your will",
	})

	doc.Ln(12)
	w.footnote("This checklist is for guidance only and does not constitute legal advice.")
	w.footnote(fmt.Sprintf("Generated: %s", willpdf.FormatFooterTimestamp(generatedAt)))

	if doc.Err() {
		return nil, fmt.Errorf("checklist: layout failed: %w", doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("checklist: output failed: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return &Document{
		Bytes:     buf.Bytes(),
		Hash:      hex.EncodeToString(sum[:]),
		PageCount: doc.PageCount(),
	}, nil
}

type writer struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

func (w *writer) title(text string) {
	w.doc.SetFont("Helvetica", "B", 20)
	w.doc.MultiCell(0, 10, w.tr(text), "", "C", false)
	w.doc.Ln(4)
}

func (w *writer) subtitle(text string) {
	w.doc.SetFont("Helvetica", "", 12)
	w.doc.SetTextColor(85, 85, 85)
	w.doc.MultiCell(0, 7, w.tr(text), "", "C", false)
	w.doc.SetTextColor(0, 0, 0)
	w.doc.Ln(8)
}

func (w *writer) heading(text string) {
	w.doc.Ln(6)
	w.doc.SetFont("Helvetica", "B", 14)
	w.doc.SetTextColor(26, 66, 50)
	w.doc.MultiCell(0, 7, w.tr(text), "", "L", false)
	w.doc.SetTextColor(0, 0, 0)
	w.doc.Ln(2)
}

func (w *writer) paragraph(text string) {
	w.doc.SetFont("Helvetica", "", 11)
	w.doc.MultiCell(0, 6, w.tr(text), "", "L", false)
	w.doc.Ln(2)
}

func (w *writer) important(text string) {
	w.doc.SetFont("Helvetica", "B", 11)
	w.doc.SetTextColor(139, 0, 0)
	w.doc.MultiCell(0, 6, w.tr(text), "", "L", false)
	w.doc.SetTextColor(0, 0, 0)
	w.doc.Ln(2)
}

func (w *writer) labelled(label, value string) {
	w.doc.SetFont("Helvetica", "B", 11)
	w.doc.CellFormat(40, 6, w.tr(label+":"), "", 0, "L", false, 0, "")
	w.doc.SetFont("Helvetica", "", 11)
	w.doc.MultiCell(0, 6, w.tr(value), "", "L", false)
}

func (w *writer) checkItems(items []string) {
	w.items("[ ]", items)
}

func (w *writer) excludedItems(items []string) {
	w.items("[x]", items)
}

func (w *writer) items(marker string, items []string) {
	w.doc.SetFont("Helvetica", "", 11)
	for _, item := range items {
		w.doc.SetX(marginLeft + 4)
		w.doc.MultiCell(0, 7, w.tr(marker+" "+item), "", "L", false)
	}
	w.doc.Ln(3)
}

func (w *writer) bullets(items []string) {
	w.doc.SetFont("Helvetica", "", 11)
	for _, item := range items {
		w.doc.SetX(marginLeft + 4)
		w.doc.MultiCell(0, 6, w.tr("• "+item), "", "L", false)
	}
	w.doc.Ln(3)
}

func (w *writer) footnote(text string) {
	w.doc.SetFont("Helvetica", "", 9)
	w.doc.SetTextColor(128, 128, 128)
	w.doc.MultiCell(0, 5, w.tr(text), "", "C", false)
	w.doc.SetTextColor(0, 0, 0)
}
