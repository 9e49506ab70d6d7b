package apievent

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrorLogger receives the diagnostic message of every APIError the handler
// converts into a response. logrus loggers and entries satisfy it.
type ErrorLogger interface {
	Error(args ...interface{})
}

// ErrorLoggerFunc adapts a plain function to ErrorLogger.
type ErrorLoggerFunc func(message string)

// Error implements ErrorLogger.
func (f ErrorLoggerFunc) Error(args ...interface{}) {
	f(fmt.Sprint(args...))
}

// ResponseContext is the per-invocation channel a handler uses to hand
// response headers, cookies and a CORS policy back to the adapter, for
// results that are plain bodies rather than ready envelopes. The adapter
// creates one at entry and reads it at exit; it is never shared across
// invocations.
type ResponseContext struct {
	headers Headers
	cookies []string
	cors    *CORSConfig
}

// SetHeader sets a pending response header.
func (rc *ResponseContext) SetHeader(name string, values ...string) {
	if rc.headers == nil {
		rc.headers = Headers{}
	}
	rc.headers[name] = values
}

// AddCookie adds a pending response cookie. Cookies are only representable
// in v2 responses.
func (rc *ResponseContext) AddCookie(cookie string) {
	rc.cookies = append(rc.cookies, cookie)
}

// SetCORS sets the CORS policy applied to the response.
func (rc *ResponseContext) SetCORS(config *CORSConfig) {
	rc.cors = config
}

type responseContextKey struct{}

func withResponseContext(ctx context.Context) (context.Context, *ResponseContext) {
	rc := &ResponseContext{}
	return context.WithValue(ctx, responseContextKey{}, rc), rc
}

// ResponseContextFrom returns the invocation's ResponseContext, or nil when
// the handler is not running under a Handler.
func ResponseContextFrom(ctx context.Context) *ResponseContext {
	rc, _ := ctx.Value(responseContextKey{}).(*ResponseContext)
	return rc
}

// Handler composes validation middleware around a user function and converts
// its outcome into a response envelope. Validation failures and other
// APIErrors become client responses; any other error propagates out so the
// lambda runtime reports an unhandled fault.
type Handler struct {
	fn            HandlerFunc
	middleware    []Middleware
	formatVersion FormatVersion
	logger        ErrorLogger
	logTraces     bool
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithMiddleware appends middleware; the first middleware listed runs first.
func WithMiddleware(middleware ...Middleware) HandlerOption {
	return func(h *Handler) { h.middleware = append(h.middleware, middleware...) }
}

// WithResponseFormatVersion fixes the response format version instead of
// detecting it from each event.
func WithResponseFormatVersion(formatVersion FormatVersion) HandlerOption {
	return func(h *Handler) { h.formatVersion = formatVersion }
}

// WithErrorLogger sets the logger that receives APIError diagnostics. With
// no logger configured, nothing is logged.
func WithErrorLogger(logger ErrorLogger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithErrorLoggerFunc sets a plain function as the error logger.
func WithErrorLoggerFunc(fn func(message string)) HandlerOption {
	return func(h *Handler) { h.logger = ErrorLoggerFunc(fn) }
}

// WithStackTraces includes the error's construction-site stack trace in the
// logged diagnostics.
func WithStackTraces() HandlerOption {
	return func(h *Handler) { h.logTraces = true }
}

// NewHandler wraps fn with the configured middleware and outcome processing.
func NewHandler(fn HandlerFunc, opts ...HandlerOption) *Handler {
	h := &Handler{fn: fn}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) logError(apiErr APIError) {
	if h.logger == nil {
		return
	}
	message := apiErr.Error()
	if h.logTraces {
		if tracer, ok := apiErr.(interface{ StackTrace() errors.StackTrace }); ok {
			if st := tracer.StackTrace(); st != nil {
				message = fmt.Sprintf("%s%+v", message, st)
			}
		}
	}
	h.logger.Error(message)
}

// Handle processes one event: middleware in declaration order, then the user
// function, then outcome processing. The returned value is either the user's
// own envelope (a map containing statusCode, passed through unmodified) or a
// Response.
func (h *Handler) Handle(ctx context.Context, event Event) (interface{}, error) {
	formatVersion := h.formatVersion
	if formatVersion == FormatVersionUnknown {
		formatVersion = event.FormatVersion()
	}
	if formatVersion == FormatVersionUnknown {
		return nil, ErrUnknownFormatVersion
	}

	ctx, rc := withResponseContext(ctx)

	result, err := Chain(h.fn, h.middleware...)(ctx, event)
	if err != nil {
		var apiErr APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		h.logError(apiErr)
		return MakeErrorResponse(apiErr, formatVersion, rc.responseOptions()...)
	}

	return processResult(result, formatVersion, rc)
}

func (rc *ResponseContext) responseOptions() []ResponseOption {
	var opts []ResponseOption
	if rc.headers != nil {
		opts = append(opts, WithHeaders(rc.headers))
	}
	if rc.cookies != nil {
		opts = append(opts, WithCookies(rc.cookies...))
	}
	if rc.cors != nil {
		opts = append(opts, WithCORS(rc.cors))
	}
	return opts
}

// processResult passes ready envelopes through and wraps anything else in a
// status-200 response carrying the pending response context fields.
func processResult(result interface{}, formatVersion FormatVersion, rc *ResponseContext) (interface{}, error) {
	switch r := result.(type) {
	case Response:
		return r, nil
	case *Response:
		return *r, nil
	case map[string]interface{}:
		if _, ok := r["statusCode"]; ok {
			return r, nil
		}
	}
	return MakeResponse(200, result, formatVersion, rc.responseOptions()...)
}
