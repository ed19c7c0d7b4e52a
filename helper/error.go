package helper

import "fmt"

// NewError wraps an error with the operation it occurred in.
// The underlying error stays inspectable via errors.Is/As.
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %s: %w", operation, err)
}
