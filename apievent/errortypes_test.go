package apievent

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewInvalidRequestError(t *testing.T) {
	e := NewInvalidRequestError("The widget identifier is malformed.")

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidRequest", e.ErrorCode())
	assert.Equal(t, "The widget identifier is malformed.", e.ErrorMessage())
	assert.Equal(t, "InvalidRequest: The widget identifier is malformed.", e.InternalMessage())
}

func TestNewFormatVersionError(t *testing.T) {
	e := NewFormatVersionError(APIGatewayV2, APIGatewayV1)

	assert.Equal(t, 500, e.StatusCode())
	assert.Equal(t, "InternalServerError", e.ErrorCode())
	assert.Equal(t, "An error occurred.", e.ErrorMessage())
	assert.Equal(t, "Expected event version APIGatewayV2, but received APIGatewayV1", e.InternalMessage())

	expected, ok := e.Field("expected_version")
	assert.True(t, ok)
	assert.Equal(t, "APIGatewayV2", expected)
}

func TestNewFormatVersionError_unknownActual(t *testing.T) {
	e := NewFormatVersionError(APIGatewayV1, FormatVersionUnknown)

	assert.Equal(t, "Expected event version APIGatewayV1, but received an unknown event", e.InternalMessage())
}

func TestNewUnsupportedMethodError(t *testing.T) {
	e := NewUnsupportedMethodError("PATCH", []string{"GET", "POST"})

	assert.Equal(t, 405, e.StatusCode())
	assert.Equal(t, "UnsupportedMethod", e.ErrorCode())
	assert.Equal(t, "PATCH is not a valid HTTP method. Valid methods are GET POST", e.ErrorMessage())
	assert.Equal(t, "Method PATCH not in valid set {GET, POST}.", e.InternalMessage())
	assert.Equal(t, Headers{"Allow": {"GET, POST"}}, e.DefaultHeaders())
}

func TestNewUnsupportedMethodError_messageOverride(t *testing.T) {
	e := NewUnsupportedMethodError("PATCH", []string{"GET"}, WithErrorMessage("no patching"))

	assert.Equal(t, "no patching", e.ErrorMessage())
}

func TestNewPathNotFoundError(t *testing.T) {
	e := NewPathNotFoundError("/user/999", []string{"/user/{user_id}"}, false)

	assert.Equal(t, 404, e.StatusCode())
	assert.Equal(t, "PathNotFound", e.ErrorCode())
	assert.Equal(t, "Path /user/999 not found.", e.ErrorMessage())
	assert.Equal(t, "Path /user/999 does not match /user/{user_id}.", e.InternalMessage())
}

func TestNewPathNotFoundError_multiplePaths(t *testing.T) {
	e := NewPathNotFoundError("/nope", []string{"/a", "/b"}, false)

	assert.Equal(t, "Path /nope not in valid set {/a /b}.", e.InternalMessage())
}

func TestNewPathParameterError(t *testing.T) {
	e := NewPathParameterError("/user/abc", []string{"group_id"}, map[string]string{"user_id": "abc"})

	assert.Equal(t, 404, e.StatusCode())
	assert.Equal(t, "PathNotFound", e.ErrorCode())
	assert.Equal(t, "Path /user/abc not found.", e.ErrorMessage())
	assert.Equal(t, "Bad path parameters: missing keys group_id and invalid values user_id=abc.", e.InternalMessage())
}

func TestNewHeaderError(t *testing.T) {
	e := NewHeaderError(
		map[string]string{"x-api-key": "short"},
		[]string{"authorization"},
		map[string]string{"x-api-key": "short"},
	)

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidRequest", e.ErrorCode())
	assert.Equal(t, "Missing or invalid headers: authorization, x-api-key.", e.ErrorMessage())
	assert.Equal(t, "Bad headers: missing keys authorization and invalid values x-api-key=short.", e.InternalMessage())
}

func TestNewHeaderError_missingOnly(t *testing.T) {
	e := NewHeaderError(map[string]string{"a": "1"}, []string{"b"}, nil)

	assert.Equal(t, "Missing or invalid headers: b.", e.ErrorMessage())
	assert.Equal(t, "Bad headers: missing keys b.", e.InternalMessage())
}

func TestNewContentTypeError(t *testing.T) {
	e := NewContentTypeError("text/plain", []string{"application/json"})

	assert.Equal(t, 415, e.StatusCode())
	assert.Equal(t, "InvalidContentType", e.ErrorCode())
	assert.Equal(t, "Content type must be application/json.", e.ErrorMessage())
	assert.Equal(t, "Content-Type text/plain not in valid set {application/json}.", e.InternalMessage())
	assert.Equal(t, Headers{"Accept": {"application/json"}}, e.DefaultHeaders())
}

func TestNewContentTypeError_multipleTypes(t *testing.T) {
	e := NewContentTypeError("", []string{"application/json", "application/xml"})

	assert.Equal(t, "Content type must be one of: application/json, application/xml.", e.ErrorMessage())
	assert.Equal(t, "Content-Type is missing.", e.InternalMessage())
	assert.Equal(t, Headers{"Accept": {"application/json, application/xml"}}, e.DefaultHeaders())
}

func TestNewQueryParameterError(t *testing.T) {
	e := NewQueryParameterError(
		map[string]string{"limit": "lots"},
		[]string{"cursor"},
		map[string]string{"limit": "lots"},
	)

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidRequest", e.ErrorCode())
	assert.Equal(t, "Invalid query parameters: cursor, limit.", e.ErrorMessage())
	assert.Equal(t, "Bad parameters: missing keys cursor and invalid values limit=lots.", e.InternalMessage())
}

func TestNewPayloadBinaryTypeError(t *testing.T) {
	e := NewPayloadBinaryTypeError(true)

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidPayload", e.ErrorCode())
	assert.Equal(t, "The request body is invalid.", e.ErrorMessage())
	assert.Equal(t, "Body was not binary", e.InternalMessage())

	e = NewPayloadBinaryTypeError(false)
	assert.Equal(t, "Body was binary", e.InternalMessage())
}

func TestNewPayloadJSONDecodeError(t *testing.T) {
	e := NewPayloadJSONDecodeError("unexpected end of JSON input")

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidPayload", e.ErrorCode())
	assert.Equal(t, "Request body must be valid JSON.", e.ErrorMessage())
	assert.Equal(t, "Payload is not valid JSON: unexpected end of JSON input.", e.InternalMessage())
}

func TestNewPayloadSchemaViolationError(t *testing.T) {
	cause := errors.New("missing properties: 'name'")

	e := NewPayloadSchemaViolationError(cause)

	assert.Equal(t, 400, e.StatusCode())
	assert.Equal(t, "InvalidPayload", e.ErrorCode())
	assert.Equal(t, "missing properties: 'name'", e.ErrorMessage())
	assert.Equal(t, "Payload violates schema: missing properties: 'name'", e.InternalMessage())
	assert.Equal(t, cause, e.ValidationError)
}

func TestViolationText(t *testing.T) {
	assert.Equal(t, "missing keys a,b", violationText([]string{"a", "b"}, nil))
	assert.Equal(t, "invalid values k=v", violationText(nil, map[string]string{"k": "v"}))
	assert.Equal(t,
		"missing keys a and invalid values k=v,x=y",
		violationText([]string{"a"}, map[string]string{"x": "y", "k": "v"}))
}
