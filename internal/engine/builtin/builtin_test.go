package builtin

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dshills/inkwell/internal/engine/model"
)

func TestRegister(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"bold", "italic", "underline", "color", "heading"} {
		if _, ok := reg.Formatter(name); !ok {
			t.Errorf("Formatter(%q) not registered", name)
		}
	}
	for _, name := range []string{"root", "paragraph", "image", "list"} {
		if _, ok := reg.Definition(name); !ok {
			t.Errorf("Definition(%q) not registered", name)
		}
	}
	if _, ok := reg.Attribute("textAlign"); !ok {
		t.Error("Attribute(textAlign) not registered")
	}

	// Registering twice is allowed.
	if err := Register(reg); err != nil {
		t.Errorf("Register() again error = %v", err)
	}

	other := model.NewRegistry()
	if err := other.RegisterFormatter(model.NewFormatter("bold")); err != nil {
		t.Fatal(err)
	}
	if err := Register(other); !errors.Is(err, model.ErrDuplicateName) {
		t.Errorf("Register() conflicting error = %v, want ErrDuplicateName", err)
	}
}

func TestLookup(t *testing.T) {
	f, ok := Lookup("italic")
	if !ok || f != Italic {
		t.Errorf("Lookup(italic) = %v, %v", f, ok)
	}
	if _, ok := Lookup("strike"); ok {
		t.Error("Lookup(strike) should fail")
	}
	if !Heading.IsBlock() {
		t.Error("Heading should be a block formatter")
	}
}

func TestFromPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		count int
	}{
		{"single line", "hello", "hello\n", 1},
		{"two lines", "a\nb", "a\nb\n", 2},
		{"trailing newline", "a\nb\n", "a\nb\n", 2},
		{"crlf", "a\r\nb", "a\nb\n", 2},
		{"empty", "", "\n", 1},
		{"blank line", "a\n\nb", "a\n\nb\n", 3},
		{"nfc", "e\u0301", "\u00e9\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := FromPlainText(tt.input)
			if got := PlainText(root); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
			if got := len(root.SlotAt(0).Components()); got != tt.count {
				t.Errorf("paragraphs = %d, want %d", got, tt.count)
			}
		})
	}
}

func TestRoundTripThroughRegistry(t *testing.T) {
	para := NewParagraph("hi", model.Format(Bold, true))
	para.SlotAt(0).MoveTo(2)
	para.SlotAt(0).Insert(NewImage("a.png", "logo"))
	root := NewRoot(para, NewList(true, "one", "two"))
	root.SlotAt(0).SetAttribute(TextAlign, "center")

	data, err := json.Marshal(root.Literal())
	if err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	rebuilt, err := reg.NewComponent(root.Literal())
	if err != nil {
		t.Fatalf("NewComponent() error = %v", err)
	}
	again, err := json.Marshal(rebuilt.Literal())
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Errorf("rebuilt = %s, want %s", again, data)
	}
	if got := PlainText(rebuilt); got != "hi\none\ntwo\n" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestNewList(t *testing.T) {
	l := NewList(false)
	if l.SlotCount() != 1 || !l.SlotAt(0).IsEmpty() {
		t.Errorf("empty list slots = %d", l.SlotCount())
	}
	if v, _ := l.State().Get("ordered"); v != false {
		t.Errorf("ordered = %v, want false", v)
	}
}
