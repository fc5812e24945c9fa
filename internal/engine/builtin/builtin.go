// Package builtin provides the stock formatters, attributes and component
// definitions of an inkwell document, plus helpers to build documents from
// plain text.
package builtin

import (
	"github.com/dshills/inkwell/internal/engine/model"
)

// Inline formatters.
var (
	Bold      = model.NewFormatter("bold", model.WithPriority(10))
	Italic    = model.NewFormatter("italic", model.WithPriority(20))
	Underline = model.NewFormatter("underline", model.WithPriority(30))
	Color     = model.NewFormatter("color", model.WithPriority(40))
)

// Heading is a block formatter whose value is the heading level.
var Heading = model.NewFormatter("heading", model.WithKind(model.BlockFormatter))

// TextAlign holds "left", "center", "right" or "justify".
var TextAlign = model.NewAttribute("textAlign")

// Component definitions.
var (
	RootDef = &model.Definition{Name: "root", Type: model.BlockComponent}

	ParagraphDef = &model.Definition{Name: "paragraph", Type: model.BlockComponent}

	// ImageDef is an inline component without slots. Its state carries
	// "src" and optionally "alt".
	ImageDef = &model.Definition{Name: "image", Type: model.InlineComponent}

	// ListDef holds one slot per item. State key "ordered" selects a
	// numbered list.
	ListDef = &model.Definition{Name: "list", Type: model.BlockComponent}
)

// Slot schemas.
var (
	BlockSchema  = []model.ContentType{model.BlockComponent}
	InlineSchema = []model.ContentType{model.Text, model.InlineComponent}
)

// Formatters returns every stock formatter.
func Formatters() []*model.Formatter {
	return []*model.Formatter{Bold, Italic, Underline, Color, Heading}
}

// Register adds the stock formatters, attributes and definitions to reg.
func Register(reg *model.Registry) error {
	if err := reg.RegisterFormatter(Formatters()...); err != nil {
		return err
	}
	if err := reg.RegisterAttribute(TextAlign); err != nil {
		return err
	}
	return reg.RegisterComponent(RootDef, ParagraphDef, ImageDef, ListDef)
}

// NewRegistry returns a registry holding the stock entries.
func NewRegistry() *model.Registry {
	reg := model.NewRegistry()
	// A fresh registry cannot hold conflicting names.
	_ = Register(reg)
	return reg
}

// Lookup resolves a stock formatter by name.
func Lookup(name string) (*model.Formatter, bool) {
	for _, f := range Formatters() {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}
