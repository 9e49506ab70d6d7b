package apievent

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidRequestError is the generic client error: status 400 with a
// caller-supplied code and message. The message is returned to the client,
// the internal message is for logging.
type InvalidRequestError struct {
	*ErrorResponse
}

// NewInvalidRequestError creates an InvalidRequestError with the given
// client-facing message.
func NewInvalidRequestError(errorMessage string, opts ...ErrorOption) *InvalidRequestError {
	e := newErrorResponse(ErrorDef{
		Name:       "InvalidRequestError",
		StatusCode: 400,
		Code:       "InvalidRequest",
	}, "", nil)
	e.message = errorMessage
	e.applyOptions(opts)
	return &InvalidRequestError{ErrorResponse: e}
}

// FormatVersionError reports an event whose format version differs from the
// required one. Status 500 with a generic client message; the versions are
// only of interest to operators.
type FormatVersionError struct {
	*ErrorResponse

	ExpectedVersion FormatVersion
	ActualVersion   FormatVersion
}

// NewFormatVersionError creates a FormatVersionError for the expected and
// actually detected format versions.
func NewFormatVersionError(expected, actual FormatVersion, opts ...ErrorOption) *FormatVersionError {
	var internal string
	if actual == FormatVersionUnknown {
		internal = fmt.Sprintf("Expected event version %s, but received an unknown event", expected)
	} else {
		internal = fmt.Sprintf("Expected event version %s, but received %s", expected, actual)
	}
	e := newErrorResponse(ErrorDef{
		Name:       "FormatVersionError",
		StatusCode: 500,
		Code:       "InternalServerError",
		Message:    genericErrorMessage,
	}, internal, Fields{
		"expected_version": expected.String(),
		"actual_version":   actual.String(),
	})
	e.applyOptions(opts)
	return &FormatVersionError{ErrorResponse: e, ExpectedVersion: expected, ActualVersion: actual}
}

// UnsupportedMethodError reports a request method outside the allowed set.
// Status 405; the response carries an Allow header as required by RFC 7231.
type UnsupportedMethodError struct {
	*ErrorResponse

	EventMethod  string
	ValidMethods []string
}

// NewUnsupportedMethodError creates an UnsupportedMethodError for the
// received method and the allowed set.
func NewUnsupportedMethodError(eventMethod string, validMethods []string, opts ...ErrorOption) *UnsupportedMethodError {
	internal := fmt.Sprintf("Method %s not in valid set {%s}.", eventMethod, strings.Join(validMethods, ", "))
	e := newErrorResponse(ErrorDef{
		Name:       "UnsupportedMethodError",
		StatusCode: 405,
		Code:       "UnsupportedMethod",
	}, internal, Fields{
		"event_method":  eventMethod,
		"valid_methods": validMethods,
	})
	e.applyOptions(opts)
	return &UnsupportedMethodError{ErrorResponse: e, EventMethod: eventMethod, ValidMethods: validMethods}
}

// ErrorMessage lists the allowed methods; they are in the Allow header
// anyway.
func (e *UnsupportedMethodError) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("%s is not a valid HTTP method. Valid methods are %s",
		e.EventMethod, strings.Join(e.ValidMethods, " "))
}

// DefaultHeaders adds the Allow header required by RFC 7231.
func (e *UnsupportedMethodError) DefaultHeaders() Headers {
	return Headers{"Allow": {strings.Join(e.ValidMethods, ", ")}}
}

// PathNotFoundError reports a request path outside the allowed set or
// pattern. Status 404.
type PathNotFoundError struct {
	*ErrorResponse

	EventPath  string
	ValidPaths []string
	IsRegex    bool
}

// NewPathNotFoundError creates a PathNotFoundError for the received path and
// the allowed path literals or patterns.
func NewPathNotFoundError(eventPath string, validPaths []string, isRegex bool, opts ...ErrorOption) *PathNotFoundError {
	var internal string
	if len(validPaths) == 1 {
		internal = fmt.Sprintf("Path %s does not match %s.", eventPath, validPaths[0])
	} else {
		internal = fmt.Sprintf("Path %s not in valid set {%s}.", eventPath, strings.Join(validPaths, " "))
	}
	e := newErrorResponse(ErrorDef{
		Name:            "PathNotFoundError",
		StatusCode:      404,
		Code:            "PathNotFound",
		MessageTemplate: "Path {event_path} not found.",
	}, internal, Fields{
		"event_path":  eventPath,
		"valid_paths": validPaths,
		"is_regex":    isRegex,
	})
	e.applyOptions(opts)
	return &PathNotFoundError{ErrorResponse: e, EventPath: eventPath, ValidPaths: validPaths, IsRegex: isRegex}
}

// violationText enumerates every violation found, missing keys first.
func violationText(badKeys []string, badValues map[string]string) string {
	var parts []string
	if len(badKeys) > 0 {
		parts = append(parts, fmt.Sprintf("missing keys %s", strings.Join(badKeys, ",")))
	}
	if len(badValues) > 0 {
		pairs := make([]string, 0, len(badValues))
		for key, value := range badValues {
			pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
		}
		sort.Strings(pairs)
		parts = append(parts, "invalid values "+strings.Join(pairs, ","))
	}
	return strings.Join(parts, " and ")
}

func badNames(badKeys []string, badValues map[string]string) []string {
	seen := map[string]bool{}
	for _, key := range badKeys {
		seen[key] = true
	}
	for key := range badValues {
		seen[key] = true
	}
	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// PathParameterError reports path parameters that are missing or carry
// invalid values. Status 404 with the same client message as
// PathNotFoundError; the specifics stay in the diagnostic message.
type PathParameterError struct {
	*ErrorResponse

	EventPath string
	BadKeys   []string
	BadValues map[string]string
}

// NewPathParameterError creates a PathParameterError enumerating the missing
// keys and invalid values.
func NewPathParameterError(eventPath string, badKeys []string, badValues map[string]string, opts ...ErrorOption) *PathParameterError {
	internal := fmt.Sprintf("Bad path parameters: %s.", violationText(badKeys, badValues))
	e := newErrorResponse(ErrorDef{
		Name:            "PathParameterError",
		StatusCode:      404,
		Code:            "PathNotFound",
		MessageTemplate: "Path {event_path} not found.",
	}, internal, Fields{
		"event_path": eventPath,
		"bad_keys":   badKeys,
		"bad_values": badValues,
	})
	e.applyOptions(opts)
	return &PathParameterError{ErrorResponse: e, EventPath: eventPath, BadKeys: badKeys, BadValues: badValues}
}

// HeaderError reports headers that are missing or carry invalid values.
// Status 400.
type HeaderError struct {
	*ErrorResponse

	EventHeaders map[string]string
	BadKeys      []string
	BadValues    map[string]string
}

// NewHeaderError creates a HeaderError enumerating the missing keys and
// invalid values.
func NewHeaderError(eventHeaders map[string]string, badKeys []string, badValues map[string]string, opts ...ErrorOption) *HeaderError {
	internal := fmt.Sprintf("Bad headers: %s.", violationText(badKeys, badValues))
	e := newErrorResponse(ErrorDef{
		Name:       "HeaderError",
		StatusCode: 400,
		Code:       "InvalidRequest",
	}, internal, Fields{
		"bad_keys":   badKeys,
		"bad_values": badValues,
	})
	e.applyOptions(opts)
	return &HeaderError{ErrorResponse: e, EventHeaders: eventHeaders, BadKeys: badKeys, BadValues: badValues}
}

// ErrorMessage names every offending header, without echoing values back.
func (e *HeaderError) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("Missing or invalid headers: %s.", strings.Join(badNames(e.BadKeys, e.BadValues), ", "))
}

// ContentTypeError reports a Content-Type outside the allowed set. Status
// 415; the response carries an Accept header naming the allowed types.
type ContentTypeError struct {
	*ErrorResponse

	EventContentType  string
	ValidContentTypes []string
}

// NewContentTypeError creates a ContentTypeError for the received content
// type ("" when the request had none) and the allowed set.
func NewContentTypeError(eventContentType string, validContentTypes []string, opts ...ErrorOption) *ContentTypeError {
	var internal string
	if eventContentType == "" {
		internal = "Content-Type is missing."
	} else {
		internal = fmt.Sprintf("Content-Type %s not in valid set {%s}.",
			eventContentType, strings.Join(validContentTypes, ", "))
	}
	e := newErrorResponse(ErrorDef{
		Name:       "ContentTypeError",
		StatusCode: 415,
		Code:       "InvalidContentType",
	}, internal, Fields{
		"event_content_type":  eventContentType,
		"valid_content_types": validContentTypes,
	})
	e.applyOptions(opts)
	return &ContentTypeError{ErrorResponse: e, EventContentType: eventContentType, ValidContentTypes: validContentTypes}
}

// ErrorMessage names the allowed content types.
func (e *ContentTypeError) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	if len(e.ValidContentTypes) == 1 {
		return fmt.Sprintf("Content type must be %s.", e.ValidContentTypes[0])
	}
	return fmt.Sprintf("Content type must be one of: %s.", strings.Join(e.ValidContentTypes, ", "))
}

// DefaultHeaders advertises the allowed content types.
func (e *ContentTypeError) DefaultHeaders() Headers {
	return Headers{"Accept": {strings.Join(e.ValidContentTypes, ", ")}}
}

// QueryParameterError reports query parameters that are missing or carry
// invalid values. Status 400.
type QueryParameterError struct {
	*ErrorResponse

	EventQueryParameters map[string]string
	BadKeys              []string
	BadValues            map[string]string
}

// NewQueryParameterError creates a QueryParameterError enumerating the
// missing keys and invalid values.
func NewQueryParameterError(eventQueryParameters map[string]string, badKeys []string, badValues map[string]string, opts ...ErrorOption) *QueryParameterError {
	internal := fmt.Sprintf("Bad parameters: %s.", violationText(badKeys, badValues))
	e := newErrorResponse(ErrorDef{
		Name:       "QueryParameterError",
		StatusCode: 400,
		Code:       "InvalidRequest",
	}, internal, Fields{
		"bad_keys":   badKeys,
		"bad_values": badValues,
	})
	e.applyOptions(opts)
	return &QueryParameterError{ErrorResponse: e, EventQueryParameters: eventQueryParameters, BadKeys: badKeys, BadValues: badValues}
}

// ErrorMessage names every offending query parameter.
func (e *QueryParameterError) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("Invalid query parameters: %s.", strings.Join(badNames(e.BadKeys, e.BadValues), ", "))
}

// PayloadBinaryTypeError reports a request body whose binary-ness does not
// match what the caller demanded. Status 400.
type PayloadBinaryTypeError struct {
	*ErrorResponse

	BinaryExpected bool
}

// NewPayloadBinaryTypeError creates a PayloadBinaryTypeError.
func NewPayloadBinaryTypeError(binaryExpected bool, opts ...ErrorOption) *PayloadBinaryTypeError {
	internal := "Body was binary"
	if binaryExpected {
		internal = "Body was not binary"
	}
	e := newErrorResponse(ErrorDef{
		Name:       "PayloadBinaryTypeError",
		StatusCode: 400,
		Code:       "InvalidPayload",
		Message:    "The request body is invalid.",
	}, internal, Fields{
		"binary_expected": binaryExpected,
	})
	e.applyOptions(opts)
	return &PayloadBinaryTypeError{ErrorResponse: e, BinaryExpected: binaryExpected}
}

// PayloadJSONDecodeError reports a request body that is not valid JSON when
// JSON was required. Status 400.
type PayloadJSONDecodeError struct {
	*ErrorResponse

	DecodeError string
}

// NewPayloadJSONDecodeError creates a PayloadJSONDecodeError from the decode
// failure text.
func NewPayloadJSONDecodeError(decodeError string, opts ...ErrorOption) *PayloadJSONDecodeError {
	internal := fmt.Sprintf("Payload is not valid JSON: %s.", decodeError)
	e := newErrorResponse(ErrorDef{
		Name:       "PayloadJSONDecodeError",
		StatusCode: 400,
		Code:       "InvalidPayload",
		Message:    "Request body must be valid JSON.",
	}, internal, Fields{
		"json_decode_error": decodeError,
	})
	e.applyOptions(opts)
	return &PayloadJSONDecodeError{ErrorResponse: e, DecodeError: decodeError}
}

// PayloadSchemaViolationError reports a request body that is valid JSON but
// fails the caller's schema. Status 400; the schema engine's diagnostic text
// is carried verbatim.
type PayloadSchemaViolationError struct {
	*ErrorResponse

	ValidationErrorMessage string
	ValidationError        error
}

// NewPayloadSchemaViolationError creates a PayloadSchemaViolationError from
// the schema engine's violation description.
func NewPayloadSchemaViolationError(validationError error, opts ...ErrorOption) *PayloadSchemaViolationError {
	message := validationError.Error()
	internal := fmt.Sprintf("Payload violates schema: %s", message)
	e := newErrorResponse(ErrorDef{
		Name:       "PayloadSchemaViolationError",
		StatusCode: 400,
		Code:       "InvalidPayload",
	}, internal, Fields{
		"validation_error_message": message,
	})
	e.applyOptions(opts)
	return &PayloadSchemaViolationError{
		ErrorResponse:          e,
		ValidationErrorMessage: message,
		ValidationError:        validationError,
	}
}

// ErrorMessage surfaces the schema engine's own description to the client.
func (e *PayloadSchemaViolationError) ErrorMessage() string {
	if e.message != "" {
		return e.message
	}
	return e.ValidationErrorMessage
}
