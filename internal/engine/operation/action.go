package operation

import (
	"encoding/json"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/tidwall/gjson"
)

// ActionType identifies the kind of a single step in an action sequence.
type ActionType string

const (
	// ActionRetain moves the cursor forward by Offset. With Formats set it
	// also applies those formats across the traversed span; a nil format
	// value removes the format.
	ActionRetain ActionType = "retain"
	// ActionInsert inserts Content (a string or literal.Component) at the
	// cursor carrying exactly Formats.
	ActionInsert ActionType = "insert"
	// ActionDelete removes Count items at the cursor.
	ActionDelete ActionType = "delete"
	// ActionAttrSet sets slot attribute Name to Value.
	ActionAttrSet ActionType = "attrSet"
	// ActionAttrDelete removes slot attribute Name.
	ActionAttrDelete ActionType = "attrDelete"
	// ActionPropSet sets state key Name to Value.
	ActionPropSet ActionType = "propSet"
	// ActionPropDelete removes state key Name.
	ActionPropDelete ActionType = "propDelete"
	// ActionInsertSlot inserts Content (a literal.Slot) into a component's
	// slot list at the cursor.
	ActionInsertSlot ActionType = "insertSlot"
	// ActionInsertValue inserts Value into a state list at the cursor.
	ActionInsertValue ActionType = "insertValue"
)

// Action is one step of an operation's apply or unApply sequence.
type Action struct {
	Type    ActionType     `json:"type"`
	Offset  int            `json:"offset,omitempty"`
	Count   int            `json:"count,omitempty"`
	Content any            `json:"content,omitempty"`
	Formats map[string]any `json:"formats,omitempty"`
	Name    string         `json:"name,omitempty"`
	Value   any            `json:"value,omitempty"`
}

// Retain returns a retain action.
func Retain(offset int) Action {
	return Action{Type: ActionRetain, Offset: offset}
}

// RetainFormats returns a retain action that applies formats over the span.
func RetainFormats(offset int, formats map[string]any) Action {
	return Action{Type: ActionRetain, Offset: offset, Formats: formats}
}

// Insert returns an insert action for a text run or component literal.
func Insert(content any, formats map[string]any) Action {
	return Action{Type: ActionInsert, Content: content, Formats: formats}
}

// Delete returns a delete action.
func Delete(count int) Action {
	return Action{Type: ActionDelete, Count: count}
}

// UnmarshalJSON decodes an action, restoring typed content.
func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	var p struct {
		plain
		Content json.RawMessage `json:"content,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Action(p.plain)
	a.Content = nil
	if len(p.Content) == 0 {
		return nil
	}
	switch a.Type {
	case ActionInsert:
		v, err := literal.DecodeItem(gjson.ParseBytes(p.Content))
		if err != nil {
			return err
		}
		a.Content = v
	case ActionInsertSlot:
		var s literal.Slot
		if err := json.Unmarshal(p.Content, &s); err != nil {
			return err
		}
		a.Content = s
	default:
		return fmt.Errorf("action %q does not carry content", a.Type)
	}
	return nil
}
