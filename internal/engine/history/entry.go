package history

import (
	"time"

	"github.com/dshills/inkwell/internal/engine/literal"
	"github.com/dshills/inkwell/internal/engine/operation"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Entry is one recorded document state.
type Entry struct {
	// Literal is the root component at the time of recording.
	Literal literal.Component

	// Selection is the selection at the time of recording.
	Selection selection.Paths

	// Operations lead from the previous entry to this one, in the order
	// they were applied.
	Operations []*operation.Operation

	// Timestamp is when the entry was recorded.
	Timestamp time.Time
}

// Info summarizes an entry.
type Info struct {
	Operations int
	Timestamp  time.Time
}

func (e *Entry) info() Info {
	return Info{Operations: len(e.Operations), Timestamp: e.Timestamp}
}
