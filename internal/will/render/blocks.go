// Package render turns a resolved document plan into ordered content
// blocks. Each clause has a builder that substitutes context values into
// fixed legal text. Missing data for an included clause is a fatal error:
// silently dropping content from a legal document is worse than failing
// the request.
package render

import "willgen/internal/will/clause"

// BlockType distinguishes the kinds of content block the assembler can lay
// out.
type BlockType string

const (
	BlockHeading1     BlockType = "heading1"
	BlockParagraph    BlockType = "paragraph"
	BlockBulletItem   BlockType = "bullet_item"
	BlockNumberedItem BlockType = "numbered_item"
	BlockSignature    BlockType = "signature_block"
)

// Definition is a defined term with its meaning, rendered as a hanging
// bullet.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Signature describes one signature panel: ruled lines with labels.
type Signature struct {
	Label           string `json:"label"`
	Name            string `json:"name,omitempty"`
	NameLabel       string `json:"name_label,omitempty"`
	AddressLabel    string `json:"address_label,omitempty"`
	OccupationLabel string `json:"occupation_label,omitempty"`
	DateLabel       string `json:"date_label"`
	Lines           int    `json:"lines"`
}

// Block is one renderable unit within a clause. Exactly one of Text,
// Definition, or Signature carries content, selected by Type.
type Block struct {
	Type       BlockType   `json:"type"`
	Text       string      `json:"text,omitempty"`
	Definition *Definition `json:"definition,omitempty"`
	Signature  *Signature  `json:"signature,omitempty"`
	Indent     int         `json:"indent_level,omitempty"`
}

// Clause is one rendered clause: its number, title, and ordered blocks.
type Clause struct {
	ID     clause.ID `json:"id"`
	Number int       `json:"clause_number"`
	Title  string    `json:"title"`
	Blocks []Block   `json:"content_blocks"`
}

func paragraph(text string) Block {
	return Block{Type: BlockParagraph, Text: text}
}

func bullet(text string) Block {
	return Block{Type: BlockBulletItem, Text: text, Indent: 1}
}

func numbered(text string) Block {
	return Block{Type: BlockNumberedItem, Text: text, Indent: 1}
}
