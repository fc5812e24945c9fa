package model

import (
	"encoding/json"
	"testing"

	"github.com/dshills/inkwell/internal/engine/operation"
)

type fixture struct {
	reg       *Registry
	bold      *Formatter
	color     *Formatter
	heading   *Formatter
	textAlign *Attribute
	rootDef   *Definition
	paraDef   *Definition
	imageDef  *Definition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		reg:       NewRegistry(),
		bold:      NewFormatter("bold"),
		color:     NewFormatter("color"),
		heading:   NewFormatter("heading", WithKind(BlockFormatter)),
		textAlign: NewAttribute("textAlign"),
		rootDef:   &Definition{Name: "root", Type: BlockComponent},
		paraDef:   &Definition{Name: "paragraph", Type: BlockComponent},
		imageDef:  &Definition{Name: "image", Type: InlineComponent},
	}
	if err := fx.reg.RegisterFormatter(fx.bold, fx.color, fx.heading); err != nil {
		t.Fatal(err)
	}
	if err := fx.reg.RegisterAttribute(fx.textAlign); err != nil {
		t.Fatal(err)
	}
	if err := fx.reg.RegisterComponent(fx.rootDef, fx.paraDef, fx.imageDef); err != nil {
		t.Fatal(err)
	}
	return fx
}

func (fx *fixture) image(src string) *Component {
	return NewComponent(fx.imageDef, map[string]any{"src": src})
}

// rooted returns a root component holding one rich slot.
func (fx *fixture) rooted() (*Component, *Slot) {
	s := NewSlot([]ContentType{Text, InlineComponent, BlockComponent})
	return NewComponent(fx.rootDef, nil, s), s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return string(data)
}

// capture records every operation emitted by root while fn runs.
func capture(root *Component, fn func()) []*operation.Operation {
	var ops []*operation.Operation
	sub := root.Marker().OnChange(func(op *operation.Operation) {
		ops = append(ops, op)
	})
	fn()
	sub.Cancel()
	return ops
}
