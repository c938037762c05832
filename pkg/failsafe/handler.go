package failsafe

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-tablegen/pkg/metrics"
	"github.com/goliatone/go-tablegen/pkg/model"
)

// DefaultUserMessage is shown above validation error panels.
const DefaultUserMessage = "This table could not be displayed as configured."

// Payload is the structured error handed to error panels and API callers.
type Payload struct {
	ErrorID     string             `json:"error_id"`
	UserMessage string             `json:"user_message"`
	Errors      []model.FieldError `json:"errors,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	ShowDetails bool               `json:"show_details"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = func(context.Context) *slog.Logger { return logger }
		}
	}
}

// WithContextLogger derives the logger from the request context, e.g. to
// attach a request id.
func WithContextLogger(fn func(context.Context) *slog.Logger) Option {
	return func(h *Handler) {
		if fn != nil {
			h.logger = fn
		}
	}
}

// WithMetrics reports fallbacks and validation failures.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(h *Handler) {
		h.recorder = metrics.OrNop(recorder)
	}
}

// WithIDGenerator replaces the ULID error id generator.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// WithShowDetails exposes field errors in payloads.
func WithShowDetails(show bool) Option {
	return func(h *Handler) {
		h.showDetails = show
	}
}

// WithUserMessage replaces DefaultUserMessage.
func WithUserMessage(msg string) Option {
	return func(h *Handler) {
		if msg != "" {
			h.userMessage = msg
		}
	}
}

// Handler is the only pipeline component that swallows failures.
type Handler struct {
	logger      func(context.Context) *slog.Logger
	recorder    metrics.Recorder
	newID       func() string
	showDetails bool
	userMessage string
}

// NewHandler builds a Handler.
func NewHandler(options ...Option) *Handler {
	h := &Handler{
		logger:      func(context.Context) *slog.Logger { return slog.Default() },
		recorder:    metrics.Nop{},
		newID:       func() string { return ulid.Make().String() },
		userMessage: DefaultUserMessage,
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Validation turns a failing ValidationResult into a Payload and logs it.
func (h *Handler) Validation(ctx context.Context, tableType string, result model.ValidationResult) Payload {
	payload := Payload{
		ErrorID:     h.newID(),
		UserMessage: h.userMessage,
		ShowDetails: h.showDetails,
	}
	if h.showDetails {
		payload.Errors = append([]model.FieldError{}, result.Errors...)
		payload.Warnings = append([]string{}, result.Warnings...)
	}
	h.recorder.ValidationFailed(tableType)
	h.logger(ctx).Warn("table config failed validation",
		"error_id", payload.ErrorID,
		"table_type", tableType,
		"errors", result.Messages(),
		"warnings", result.Warnings,
	)
	return payload
}

// Outcome is the result of a guarded render.
type Outcome struct {
	Grid     model.Grid
	Fallback bool
	ErrorID  string
	Err      *RenderError
}

// Render runs fn under Guard. On failure it logs the render context and
// returns the fallback grid built from rows.
func (h *Handler) Render(ctx context.Context, scope Scope, rows []model.Record, unsetLabel string, fn RenderFunc) Outcome {
	grid, renderErr := Guard(ctx, scope, fn)
	if renderErr == nil {
		return Outcome{Grid: grid}
	}

	errorID := h.newID()
	attrs := []any{
		"error_id", errorID,
		"table_type", scope.TableType,
		"layout_type", string(scope.LayoutType),
		"data_count", scope.DataCount,
		"columns_count", scope.ColumnsCount,
		"panicked", renderErr.Panicked,
		"error", renderErr.Cause,
	}
	if renderErr.Stack != "" {
		attrs = append(attrs, "stack", renderErr.Stack)
	}
	h.logger(ctx).Error("layout render failed; using fallback table", attrs...)
	h.recorder.FallbackRendered(scope.LayoutType, metrics.ReasonRender)

	fallback := FallbackGrid(rows, unsetLabel)
	fallback.Layout = scope.LayoutType
	fallback.Meta["error_id"] = errorID
	return Outcome{Grid: fallback, Fallback: true, ErrorID: errorID, Err: renderErr}
}

// Fallback builds the fallback grid for a validation failure and records it.
func (h *Handler) Fallback(scope Scope, rows []model.Record, unsetLabel string) model.Grid {
	h.recorder.FallbackRendered(scope.LayoutType, metrics.ReasonValidation)
	grid := FallbackGrid(rows, unsetLabel)
	grid.Layout = scope.LayoutType
	return grid
}
