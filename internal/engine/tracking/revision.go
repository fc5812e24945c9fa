package tracking

import (
	"time"

	"github.com/dshills/inkwell/internal/engine/operation"
)

// Revision numbers the operations in a log. The first recorded operation
// has revision 1; revision 0 is the empty document.
type Revision uint64

// Record is one logged operation.
type Record struct {
	// Revision is the document revision after the operation.
	Revision Revision

	// Origin names where the operation came from, such as "local" or a
	// collaboration client id.
	Origin string

	// Operation is the applied operation.
	Operation *operation.Operation

	// Timestamp is when the operation was recorded.
	Timestamp time.Time
}
