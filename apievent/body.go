package apievent

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// Schema is the contract for the pluggable JSON Schema collaborator. The
// payload is an already-decoded JSON value; a violation is described by the
// returned error's text. The schemautils package provides an implementation;
// none is required unless a caller asks for schema validation.
type Schema interface {
	Validate(payload interface{}) error
}

// Body returns the request body: a string for text bodies, a []byte for
// base64-encoded binary bodies, and whatever value already occupies the body
// field when something upstream parsed it. An absent body is returned as
// nil.
func (e Event) Body() (interface{}, error) {
	if e.FormatVersion() == FormatVersionUnknown {
		return nil, ErrUnknownFormatVersion
	}
	body, ok := e["body"]
	if !ok || body == nil {
		return nil, nil
	}
	raw, isString := body.(string)
	if !isString {
		// Already parsed by something.
		return body, nil
	}
	if encoded, _ := e["isBase64Encoded"].(bool); encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, errors.Wrap(err, "failed decoding base64 body")
		}
		return decoded, nil
	}
	return raw, nil
}

// TextBody returns the request body as text, failing with a
// PayloadBinaryTypeError when the body is binary. An absent body is
// returned as "".
func (e Event) TextBody() (string, error) {
	body, err := e.Body()
	if err != nil {
		return "", err
	}
	switch b := body.(type) {
	case nil:
		return "", nil
	case string:
		return b, nil
	case []byte:
		return "", NewPayloadBinaryTypeError(false)
	default:
		return "", errors.Errorf("cannot enforce text on body parsed as %T", body)
	}
}

// BinaryBody returns the request body as bytes, failing with a
// PayloadBinaryTypeError when the body is text. An absent body is returned
// as an empty slice.
func (e Event) BinaryBody() ([]byte, error) {
	body, err := e.Body()
	if err != nil {
		return nil, err
	}
	switch b := body.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return b, nil
	case string:
		return nil, NewPayloadBinaryTypeError(true)
	default:
		return nil, errors.Errorf("cannot enforce binary on body parsed as %T", body)
	}
}

// JSONBodyOptions controls GetJSONBody.
//
// Schema, when set, validates the decoded payload through the collaborator.
// EnforceContentType additionally requires the Content-Type header to be
// application/json. By default bodies are optional on methods that
// conventionally have none (GET, HEAD, DELETE, CONNECT, OPTIONS, TRACE);
// EnforceOnOptionalMethods requires a body on those too.
type JSONBodyOptions struct {
	Schema                   Schema
	EnforceContentType       bool
	EnforceOnOptionalMethods bool
}

var bodyOptionalMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"DELETE":  true,
	"CONNECT": true,
	"OPTIONS": true,
	"TRACE":   true,
}

// GetJSONBody parses the request body as JSON and optionally validates it
// against a schema. It never modifies the event; the RequireJSONBody
// middleware is the mutating form.
func GetJSONBody(event Event, opts JSONBodyOptions) (interface{}, error) {
	if opts.EnforceContentType {
		if _, err := ValidateContentType(event, "application/json"); err != nil {
			return nil, err
		}
	}

	body, err := event.Body()
	if err != nil {
		return nil, err
	}

	allowEmptyBody := false
	if !opts.EnforceOnOptionalMethods {
		method, err := event.Method()
		if err != nil {
			return nil, err
		}
		allowEmptyBody = bodyOptionalMethods[method]
	}

	var raw []byte
	switch b := body.(type) {
	case nil:
		raw = nil
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		return nil, errors.Errorf("cannot load JSON from body parsed as %T", body)
	}

	if len(raw) == 0 {
		if allowEmptyBody {
			return nil, nil
		}
		return nil, NewPayloadJSONDecodeError("request has no body")
	}

	return parseAndValidateJSONBody(raw, opts.Schema)
}

// parseAndValidateJSONBody decodes the body and, when a schema is supplied,
// checks the payload against it. An empty body is allowed (or not) by the
// caller, never by the schema.
func parseAndValidateJSONBody(raw []byte, schema Schema) (interface{}, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewPayloadJSONDecodeError(err.Error())
	}
	if schema != nil {
		if err := schema.Validate(payload); err != nil {
			return nil, NewPayloadSchemaViolationError(err)
		}
	}
	return payload, nil
}

// setParsedBody replaces the raw body with the parsed payload in place. The
// base64 flag is meaningless for a parsed body and is dropped.
func (e Event) setParsedBody(payload interface{}) {
	e["body"] = payload
	delete(e, "isBase64Encoded")
}
