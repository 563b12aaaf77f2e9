package calllog

import "fmt"

// NotFoundError is returned when a call log does not exist.
type NotFoundError struct {
	CallID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("call log not found: %s", e.CallID)
}
