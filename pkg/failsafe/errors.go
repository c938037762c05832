// Package failsafe isolates pipeline failures. Validation failures become a
// structured payload and renderer failures (returned errors or panics) become
// the two-column fallback grid, which cannot itself fail.
package failsafe

import (
	"fmt"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Scope describes the render a failure happened in.
type Scope struct {
	TableType    string
	LayoutType   model.LayoutType
	DataCount    int
	ColumnsCount int
}

// RenderError wraps a layout renderer failure with its render context.
type RenderError struct {
	Scope
	Cause error
	// Panicked is set when the renderer panicked instead of returning.
	Panicked bool
	Stack    string
}

func (e *RenderError) Error() string {
	verb := "failed"
	if e.Panicked {
		verb = "panicked"
	}
	return fmt.Sprintf("failsafe: %s renderer %s (rows=%d columns=%d): %v",
		e.LayoutType, verb, e.DataCount, e.ColumnsCount, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
