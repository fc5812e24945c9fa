package literal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidContent is returned when a content array holds something other
// than strings and component objects.
var ErrInvalidContent = errors.New("invalid content item")

// Content is an ordered list of text runs (string) and components (Component).
type Content []any

// Clone returns a deep copy of the content.
func (c Content) Clone() Content {
	if c == nil {
		return nil
	}
	out := make(Content, len(c))
	for i, item := range c {
		switch v := item.(type) {
		case Component:
			out[i] = v.Clone()
		case *Component:
			out[i] = v.Clone()
		default:
			out[i] = v
		}
	}
	return out
}

// UnmarshalJSON decodes a mixed array of strings and component objects.
func (c *Content) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*c = nil
		return nil
	}
	if !res.IsArray() {
		return fmt.Errorf("%w: content must be an array", ErrInvalidContent)
	}
	out := make(Content, 0)
	var err error
	res.ForEach(func(_, item gjson.Result) bool {
		v, e := DecodeItem(item)
		if e != nil {
			err = e
			return false
		}
		out = append(out, v)
		return true
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// DecodeItem converts a parsed content element into a string or Component.
func DecodeItem(item gjson.Result) (any, error) {
	switch {
	case item.Type == gjson.String:
		return item.String(), nil
	case item.IsObject():
		var comp Component
		if err := json.Unmarshal([]byte(item.Raw), &comp); err != nil {
			return nil, err
		}
		return comp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidContent, item.Raw)
	}
}
