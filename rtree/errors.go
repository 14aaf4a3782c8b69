package rtree

import "fmt"

// InvalidArgumentError reports a malformed input shape: a coordinate/value
// count mismatch or a coordinate row whose column count is not 2 or 3. It is
// always raised before any mutation or query work begins.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

func invalidArgumentf(format string, args ...interface{}) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}
