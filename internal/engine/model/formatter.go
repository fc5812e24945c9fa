package model

import "github.com/dshills/inkwell/internal/engine/literal"

// FormatRange is a half-open span carrying a format value.
type FormatRange = literal.FormatRange

// FormatterKind says how a formatter's ranges relate to the slot extent.
type FormatterKind int

const (
	// InlineFormatter applies to arbitrary sub-ranges of a slot.
	InlineFormatter FormatterKind = iota
	// BlockFormatter applies to the whole slot. It keeps at most one range,
	// always covering the full slot.
	BlockFormatter
)

// Formatter identifies a format such as bold or a text colour.
//
// Formatters are compared by pointer. Two formatters with the same name are
// different formatters; a Registry enforces unique names per document.
type Formatter struct {
	name     string
	kind     FormatterKind
	priority int
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithKind sets the formatter kind. The default is InlineFormatter.
func WithKind(kind FormatterKind) FormatterOption {
	return func(f *Formatter) {
		f.kind = kind
	}
}

// WithPriority sets the nesting priority used when fragments are rendered.
// Lower values wrap outside higher ones.
func WithPriority(priority int) FormatterOption {
	return func(f *Formatter) {
		f.priority = priority
	}
}

// NewFormatter creates a formatter.
func NewFormatter(name string, opts ...FormatterOption) *Formatter {
	f := &Formatter{name: name}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the serialized name.
func (f *Formatter) Name() string { return f.name }

// Kind returns the formatter kind.
func (f *Formatter) Kind() FormatterKind { return f.kind }

// Priority returns the nesting priority.
func (f *Formatter) Priority() int { return f.priority }

// IsBlock reports whether the formatter covers whole slots.
func (f *Formatter) IsBlock() bool { return f.kind == BlockFormatter }

// Attribute identifies a slot-level key such as text alignment. Attributes
// are stored apart from formats and always apply to the whole slot.
type Attribute struct {
	name string
}

// NewAttribute creates an attribute.
func NewAttribute(name string) *Attribute {
	return &Attribute{name: name}
}

// Name returns the serialized name.
func (a *Attribute) Name() string { return a.name }

// FormatEntry pairs a formatter with a value. A nil value removes the format.
type FormatEntry struct {
	Formatter *Formatter
	Value     any
}

// Format returns a FormatEntry.
func Format(f *Formatter, value any) FormatEntry {
	return FormatEntry{Formatter: f, Value: value}
}

// AttributeEntry pairs an attribute with its value.
type AttributeEntry struct {
	Attribute *Attribute
	Value     any
}
