package response

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/vibita-lite/pkg/errorbank"
)

// Builder renders the JSON envelope, or a file download when an attachment is set.
type Builder struct {
	ctx        echo.Context
	status     int
	data       any
	err        error
	meta       map[string]any
	attachment *attachment
}

type attachment struct {
	filename    string
	contentType string
	body        []byte
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

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered. Only its kind, message and
// details reach the client.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithMeta appends auxiliary metadata to the response.
func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

// WithAttachment switches the success response to a download of body.
func (b *Builder) WithAttachment(filename, contentType string, body []byte) *Builder {
	b.attachment = &attachment{filename: filename, contentType: contentType, body: body}
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	if b.attachment != nil {
		return b.buildAttachment()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	payload := struct {
		Success bool           `json:"success"`
		Data    any            `json:"data,omitempty"`
		Meta    map[string]any `json:"meta,omitempty"`
	}{
		Success: true,
		Data:    b.data,
		Meta:    b.withRequestID(),
	}
	return b.ctx.JSON(b.status, payload)
}

func (b *Builder) buildAttachment() error {
	header := b.ctx.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", b.attachment.filename))
	return b.ctx.Blob(b.status, b.attachment.contentType, b.attachment.body)
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}
	payload := struct {
		Success bool `json:"success"`
		Error   struct {
			Kind    string         `json:"kind"`
			Message string         `json:"message"`
			Details map[string]any `json:"details,omitempty"`
		} `json:"error"`
		Meta map[string]any `json:"meta,omitempty"`
	}{
		Success: false,
		Meta:    b.withRequestID(),
	}
	payload.Error.Kind = string(appErr.Kind())
	payload.Error.Message = appErr.Message()
	payload.Error.Details = appErr.Details()

	return b.ctx.JSON(status, payload)
}

func (b *Builder) withRequestID() map[string]any {
	id := b.ctx.Response().Header().Get(echo.HeaderXRequestID)
	if id == "" {
		return b.meta
	}
	return b.WithMeta("requestId", id).meta
}
