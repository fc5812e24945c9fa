package collab

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/inkwell/internal/engine/operation"
)

// UpdateType is the envelope type of operation updates.
const UpdateType = "ops"

// ErrMalformedUpdate is returned when an update cannot be decoded.
var ErrMalformedUpdate = errors.New("malformed update")

// Update is one batch of operations from a single client.
type Update struct {
	ClientID   string
	Seq        uint64
	Operations []*operation.Operation
}

// Translator converts updates to and from their wire form.
type Translator interface {
	Encode(u Update) ([]byte, error)
	Decode(data []byte) (Update, error)
}

// JSONTranslator encodes updates as JSON envelopes:
//
//	{"type":"ops","clientId":"a","seq":3,"ops":[...]}
type JSONTranslator struct{}

// Encode implements Translator.
func (JSONTranslator) Encode(u Update) ([]byte, error) {
	ops, err := json.Marshal(operation.List(u.Operations))
	if err != nil {
		return nil, fmt.Errorf("encode operations: %w", err)
	}
	out := []byte(`{}`)
	if out, err = sjson.SetBytes(out, "type", UpdateType); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "clientId", u.ClientID); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "seq", u.Seq); err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, "ops", ops)
}

// Decode implements Translator.
func (JSONTranslator) Decode(data []byte) (Update, error) {
	if !gjson.ValidBytes(data) {
		return Update{}, fmt.Errorf("%w: invalid json", ErrMalformedUpdate)
	}
	env := gjson.ParseBytes(data)
	if t := env.Get("type").String(); t != UpdateType {
		return Update{}, fmt.Errorf("%w: type %q", ErrMalformedUpdate, t)
	}
	ops := env.Get("ops")
	if !ops.IsArray() {
		return Update{}, fmt.Errorf("%w: ops is not an array", ErrMalformedUpdate)
	}

	u := Update{
		ClientID: env.Get("clientId").String(),
		Seq:      env.Get("seq").Uint(),
	}
	var err error
	ops.ForEach(func(key, value gjson.Result) bool {
		var op *operation.Operation
		op, err = operation.Unmarshal([]byte(value.Raw))
		if err != nil {
			err = fmt.Errorf("%w: operation %d: %v", ErrMalformedUpdate, key.Int(), err)
			return false
		}
		u.Operations = append(u.Operations, op)
		return true
	})
	if err != nil {
		return Update{}, err
	}
	return u, nil
}

// PeekClientID returns the sender of an encoded update without decoding
// its operations.
func PeekClientID(data []byte) string {
	return gjson.GetBytes(data, "clientId").String()
}
