package mailbox

import "fmt"

type (
	// ErrClosed is returned by Add once the mailbox has been closed, and by
	// Take once the mailbox has been closed and fully drained.
	ErrClosed struct{}

	// ErrEmpty is returned by TryTake when nothing is queued.
	ErrEmpty struct{}

	// ErrOverflow is returned by Add on a full bounded mailbox configured
	// with the fail overflow strategy.
	ErrOverflow struct {
		MaxCapacity int
	}
)

func (e ErrClosed) Error() string {
	return "mailbox is closed"
}

func (e ErrEmpty) Error() string {
	return "mailbox is empty"
}

func (e ErrOverflow) Error() string {
	return fmt.Sprintf("mailbox maximum capacity (%d) reached", e.MaxCapacity)
}
