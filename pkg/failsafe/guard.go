package failsafe

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// RenderFunc is one guarded renderer invocation.
type RenderFunc func(ctx context.Context) (model.Grid, error)

// Guard runs fn and converts a returned error or a panic into a RenderError.
func Guard(ctx context.Context, scope Scope, fn RenderFunc) (grid model.Grid, renderErr *RenderError) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err, ok := recovered.(error)
			if !ok {
				err = &PanicError{Value: recovered}
			}
			grid = model.Grid{}
			renderErr = &RenderError{
				Scope:    scope,
				Cause:    err,
				Panicked: true,
				Stack:    string(debug.Stack()),
			}
		}
	}()

	if fn == nil {
		return model.Grid{}, &RenderError{Scope: scope, Cause: errors.New("no renderer")}
	}
	grid, err := fn(ctx)
	if err != nil {
		return model.Grid{}, &RenderError{Scope: scope, Cause: err}
	}
	return grid, nil
}
