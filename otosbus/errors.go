package otosbus

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBusClosed is returned by every operation on a bus that was never
	// opened or has been closed.
	ErrBusClosed = errors.New("i2c bus is not initialized")

	// ErrNilBuffer is returned by region reads given a nil destination; the
	// bus is not touched in that case.
	ErrNilBuffer = errors.New("nil destination buffer")

	// ErrUnderRead matches an UnderReadError via errors.Is.
	ErrUnderRead = errors.New("short read from device")
)

// UnderReadError reports a region read that returned fewer bytes than
// requested without a hard transport failure. Callers that can use a partial
// buffer get the count from the read call itself; callers that cannot should
// treat this separately from a failed transfer.
type UnderReadError struct {
	Requested int
	Read      int
}

func (e *UnderReadError) Error() string {
	return fmt.Sprintf("short read from device: got %d of %d bytes", e.Read, e.Requested)
}

// Is reports whether target is ErrUnderRead, so the sentinel works with
// errors.Is while the counts stay available via errors.As.
func (e *UnderReadError) Is(target error) bool {
	return target == ErrUnderRead
}
