package backtest

import "fmt"

// UndefinedVariableError reports a read of a name the strategy never
// declared. Validation rejects such strategies before a run begins, so
// seeing this error at runtime means an interpreter bug, and it is fatal.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}
