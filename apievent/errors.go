package apievent

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// APIError is an error that can be rendered into a client response. The base
// implementation is ErrorResponse; concrete error kinds embed it and override
// only the hooks they customize. Rendering happens through MakeErrorResponse,
// which resolves every hook through this interface so overrides on the
// concrete type win.
type APIError interface {
	error

	// StatusCode is the HTTP status of the response. Fixed per kind or
	// instance; never recomputed.
	StatusCode() int

	// ErrorCode is the short machine-readable token identifying the error
	// kind, distinct from the human-readable message.
	ErrorCode() string

	// ErrorMessage is the client-facing message.
	ErrorMessage() string

	// InternalMessage is the operator-facing diagnostic text. It is never
	// sent to the client.
	InternalMessage() string

	// Body returns the response body, preferring the caller's override. A
	// nil result tells the renderer to build the canonical error body from
	// the resolved code and message.
	Body(override interface{}) interface{}

	// Headers returns the response headers, preferring the caller's override.
	Headers(override Headers) Headers

	// DefaultHeaders returns headers applied only where the resolved header
	// set does not already carry the key.
	DefaultHeaders() Headers

	// Cookies returns the response cookies, preferring the caller's override.
	Cookies(override []string) []string
}

// ErrorDef is the immutable per-kind metadata of an error: its name (which
// doubles as the default error code), status code, and how the client-facing
// message resolves. Exactly one of Message and MessageTemplate is normally
// set; when neither is, the message falls back to a fixed generic text.
type ErrorDef struct {
	Name            string
	StatusCode      int
	Code            string
	Message         string
	MessageTemplate string
}

// Fields is the bag of arbitrary per-instance context an error carries,
// available to its message template.
type Fields map[string]interface{}

const genericErrorMessage = "An error occurred."

// ErrorResponse is the base implementation of APIError: immutable kind
// metadata plus instance-level overrides. Construct kinds with the
// dedicated constructors in this package, or custom ones with
// NewErrorResponse.
type ErrorResponse struct {
	def             ErrorDef
	fields          Fields
	code            string // instance override
	message         string // instance override, first resolution tier
	internalMessage string
	trace           error // pkg/errors carrier capturing the construction site
}

// ErrorOption customizes an error at construction.
type ErrorOption func(*ErrorResponse)

// WithInternalMessage sets the operator-facing diagnostic text, replacing
// the kind's synthesized default.
func WithInternalMessage(message string) ErrorOption {
	return func(e *ErrorResponse) { e.internalMessage = message }
}

// WithErrorMessage sets an explicit client-facing message. It takes
// precedence over the kind's static message and template.
func WithErrorMessage(message string) ErrorOption {
	return func(e *ErrorResponse) { e.message = message }
}

// WithErrorCode overrides the error code for this instance.
func WithErrorCode(code string) ErrorOption {
	return func(e *ErrorResponse) { e.code = code }
}

// WithErrorFields merges fields into the instance's field bag.
func WithErrorFields(fields Fields) ErrorOption {
	return func(e *ErrorResponse) {
		for key, value := range fields {
			e.fields[key] = value
		}
	}
}

var templateKeyPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func interpolate(template string, fields Fields) (string, error) {
	var missing []string
	rendered := templateKeyPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := fields[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return fmt.Sprint(value)
	})
	if len(missing) > 0 {
		return "", errors.Errorf("message template references absent fields: %s", strings.Join(missing, ", "))
	}
	return rendered, nil
}

// NewErrorResponse creates an error from a custom kind definition. The status
// code is required, and a message template that references fields absent
// from the bag is rejected here rather than at render time. When no internal
// message is supplied one is synthesized from the resolved code and message.
func NewErrorResponse(def ErrorDef, fields Fields, opts ...ErrorOption) (*ErrorResponse, error) {
	if def.StatusCode == 0 {
		return nil, errors.New("error definition has no status code")
	}
	e := newErrorResponse(def, "", fields)
	for _, opt := range opts {
		opt(e)
	}
	if e.message == "" && e.def.Message == "" && e.def.MessageTemplate != "" {
		if _, err := interpolate(e.def.MessageTemplate, e.fields); err != nil {
			return nil, err
		}
	}
	e.ensureInternalMessage()
	return e, nil
}

// newErrorResponse is the internal constructor used by the fixed error kinds,
// whose definitions and field bags are known consistent.
func newErrorResponse(def ErrorDef, internalMessage string, fields Fields) *ErrorResponse {
	if fields == nil {
		fields = Fields{}
	}
	return &ErrorResponse{
		def:             def,
		fields:          fields,
		internalMessage: internalMessage,
		trace:           errors.New(def.Name),
	}
}

func (e *ErrorResponse) applyOptions(opts []ErrorOption) {
	for _, opt := range opts {
		opt(e)
	}
	e.ensureInternalMessage()
}

func (e *ErrorResponse) ensureInternalMessage() {
	if e.internalMessage == "" {
		e.internalMessage = fmt.Sprintf("%s: %s", e.ErrorCode(), e.ErrorMessage())
	}
}

// Error implements the error interface with the code and internal message.
// The result is intended for logs, not for clients.
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode(), e.internalMessage)
}

// StatusCode returns the HTTP status of the response.
func (e *ErrorResponse) StatusCode() int { return e.def.StatusCode }

// ErrorCode resolves the error code: instance override, then the kind's
// code, then the kind's name.
func (e *ErrorResponse) ErrorCode() string {
	if e.code != "" {
		return e.code
	}
	if e.def.Code != "" {
		return e.def.Code
	}
	return e.def.Name
}

// ErrorMessage resolves the client-facing message: explicit override, then
// the kind's static message, then its template interpolated against the
// field bag, then a fixed generic text.
func (e *ErrorResponse) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	if e.def.Message != "" {
		return e.def.Message
	}
	if e.def.MessageTemplate != "" {
		rendered, err := interpolate(e.def.MessageTemplate, e.fields)
		if err == nil {
			return rendered
		}
	}
	return genericErrorMessage
}

// InternalMessage returns the operator-facing diagnostic text.
func (e *ErrorResponse) InternalMessage() string { return e.internalMessage }

// Field returns a value from the instance's field bag.
func (e *ErrorResponse) Field(key string) (interface{}, bool) {
	value, ok := e.fields[key]
	return value, ok
}

// Body returns the override when given, otherwise nil. The renderer builds
// the canonical error body from the code and message resolved through the
// APIError interface, so overrides on concrete kinds take effect; building
// it here would dispatch through the embedded base and lose them.
func (e *ErrorResponse) Body(override interface{}) interface{} {
	return override
}

// Headers returns the override when given, otherwise nil.
func (e *ErrorResponse) Headers(override Headers) Headers {
	return override
}

// DefaultHeaders returns headers merged into the response only where the
// resolved header set does not already carry the key. The base has none.
func (e *ErrorResponse) DefaultHeaders() Headers { return nil }

// Cookies returns the override when given, otherwise nil.
func (e *ErrorResponse) Cookies(override []string) []string {
	return override
}

// StackTrace exposes the construction-site stack for trace logging.
func (e *ErrorResponse) StackTrace() errors.StackTrace {
	if tracer, ok := e.trace.(interface{ StackTrace() errors.StackTrace }); ok {
		return tracer.StackTrace()
	}
	return nil
}

// ErrorBodyFields names the keys of the canonical error body. An empty
// Parent flattens the code and message to the top level.
type ErrorBodyFields struct {
	Parent  string
	Code    string
	Message string
}

var defaultErrorBodyFields = ErrorBodyFields{Parent: "Error", Code: "Code", Message: "Message"}

var errorBodyFields = defaultErrorBodyFields

// SetErrorBodyFields configures the canonical error body key names
// process-wide. Intended to be called once at startup.
func SetErrorBodyFields(fields ErrorBodyFields) {
	errorBodyFields = fields
}

// GetErrorBodyFields returns the configured error body key names.
func GetErrorBodyFields() ErrorBodyFields {
	return errorBodyFields
}

// ResetErrorBodyFields restores the default error body key names. For tests.
func ResetErrorBodyFields() {
	errorBodyFields = defaultErrorBodyFields
}

// MakeErrorBody builds the canonical error body from a code and message,
// honoring the configured field names.
func MakeErrorBody(code, message string) map[string]interface{} {
	fields := GetErrorBodyFields()
	inner := map[string]interface{}{
		fields.Code:    code,
		fields.Message: message,
	}
	if fields.Parent == "" {
		return inner
	}
	return map[string]interface{}{fields.Parent: inner}
}

// ErrorResponseFromStatusCode creates a generic error from a bare 4xx or 5xx
// status code, with the code and message taken from the standard status text.
// A 400 becomes an InvalidRequestError.
func ErrorResponseFromStatusCode(statusCode int, opts ...ErrorOption) (APIError, error) {
	if statusCode/100 != 4 && statusCode/100 != 5 {
		return nil, errors.Errorf("status code %d is not 4XX or 5XX", statusCode)
	}
	phrase := http.StatusText(statusCode)
	if phrase == "" {
		return nil, errors.Errorf("unknown status code %d", statusCode)
	}

	if statusCode == http.StatusBadRequest {
		e := NewInvalidRequestError("Invalid request.", opts...)
		return e, nil
	}

	code := strings.ReplaceAll(phrase, " ", "")
	e := newErrorResponse(ErrorDef{
		Name:       code,
		StatusCode: statusCode,
		Message:    phrase + ".",
	}, "", nil)
	e.applyOptions(opts)
	return e, nil
}

// ErrorResponseFromError escalates an arbitrary error to an APIError with the
// given status code. The error code is the error's type name and the message
// its text. An error that already is an APIError is returned as-is with the
// options ignored, but a conflicting status code is rejected; options apply
// only to newly built instances.
func ErrorResponseFromError(statusCode int, cause error, opts ...ErrorOption) (APIError, error) {
	if cause == nil {
		return nil, errors.New("no error to build a response from")
	}

	var apiErr APIError
	if errors.As(cause, &apiErr) {
		if apiErr.StatusCode() != statusCode {
			return nil, errors.Errorf("status code mismatch: %d != %d", apiErr.StatusCode(), statusCode)
		}
		return apiErr, nil
	}

	code := errorTypeName(cause)
	e := newErrorResponse(ErrorDef{
		Name:       "AnonymousErrorResponse",
		StatusCode: statusCode,
		Code:       code,
		Message:    cause.Error(),
	}, "", nil)
	e.applyOptions(opts)
	return e, nil
}

func errorTypeName(err error) string {
	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
