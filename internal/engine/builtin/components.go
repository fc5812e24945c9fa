package builtin

import (
	"github.com/dshills/inkwell/internal/engine/model"
)

// NewRoot creates a root component with a single block slot holding
// blocks. With no blocks the root gets one empty paragraph.
func NewRoot(blocks ...*model.Component) *model.Component {
	s := model.NewSlot(BlockSchema)
	if len(blocks) == 0 {
		blocks = []*model.Component{NewParagraph("")}
	}
	for _, b := range blocks {
		s.Insert(b)
	}
	s.MoveTo(0)
	return model.NewComponent(RootDef, nil, s)
}

// NewParagraph creates a paragraph holding text.
func NewParagraph(text string, formats ...model.FormatEntry) *model.Component {
	s := model.NewSlot(InlineSchema)
	if text != "" {
		s.Insert(text, formats...)
		s.MoveTo(0)
	}
	return model.NewComponent(ParagraphDef, nil, s)
}

// NewImage creates an inline image.
func NewImage(src, alt string) *model.Component {
	state := map[string]any{"src": src}
	if alt != "" {
		state["alt"] = alt
	}
	return model.NewComponent(ImageDef, state)
}

// NewList creates a list with one slot per item.
func NewList(ordered bool, items ...string) *model.Component {
	slots := make([]*model.Slot, 0, len(items))
	for _, item := range items {
		s := model.NewSlot(InlineSchema)
		s.Insert(item)
		s.MoveTo(0)
		slots = append(slots, s)
	}
	if len(slots) == 0 {
		slots = append(slots, model.NewSlot(InlineSchema))
	}
	return model.NewComponent(ListDef, map[string]any{"ordered": ordered}, slots...)
}
