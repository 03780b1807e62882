package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mesa-labs/mesa/pkg/errorbank"
)

// Builder constructs the uniform response envelope:
// {status: "success"|"error", message?, data?, errors?, error_id?}.
type Builder struct {
	ctx     echo.Context
	status  int
	message string
	data    any
	err     error
	debug   bool
	logger  *zap.Logger
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithMessage sets the human-readable message.
func (b *Builder) WithMessage(message string) *Builder {
	b.message = message
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithLogger enables server-side logging of internal errors, so responses
// can be correlated with the log stream via error_id.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithDebug widens internal errors with cause detail.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.debug = debug
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	ErrorID string `json:"error_id,omitempty"`
}

func (b *Builder) buildSuccess() error {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.ctx.JSON(b.status, envelope{
		Status:  "success",
		Message: b.message,
		Data:    b.data,
	})
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < http.StatusBadRequest {
		status = appErr.StatusCode()
	}

	if appErr.Kind() == errorbank.KindInternal && b.logger != nil {
		b.logger.Error("request failed",
			zap.String("error_id", appErr.ErrorID()),
			zap.String("path", b.ctx.Path()),
			zap.Error(appErr),
		)
	}

	payload := envelope{
		Status:  "error",
		Message: appErr.Message(),
		ErrorID: appErr.ErrorID(),
	}
	if details := appErr.Details(); len(details) > 0 {
		payload.Errors = details
	}
	if b.debug && appErr.Kind() == errorbank.KindInternal {
		if cause := appErr.Unwrap(); cause != nil {
			payload.Errors = map[string]any{"cause": cause.Error()}
		}
	}

	return b.ctx.JSON(status, payload)
}
