package insights

import "fmt"

// UnknownSeverityCodeError indicates a numeric severity outside 0..2.
type UnknownSeverityCodeError struct {
	Code int
}

func (e *UnknownSeverityCodeError) Error() string {
	return fmt.Sprintf("unknown severity code %d (expected 0, 1 or 2)", e.Code)
}

// UnknownSeverityError indicates a finding whose severity cannot be ordered.
type UnknownSeverityError struct {
	Severity Severity
	Path     string
	Line     int
}

func (e *UnknownSeverityError) Error() string {
	return fmt.Sprintf("cannot order finding at %s:%d: unknown severity %q", e.Path, e.Line, e.Severity)
}
