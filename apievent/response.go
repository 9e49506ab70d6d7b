package apievent

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Headers holds response headers, each with one or more values, like
// http.Header but without canonicalization. Single-valued entries render
// into the flat header map; multi-valued entries render into
// multiValueHeaders on v1 and are comma-joined on v2.
type Headers map[string][]string

func (h Headers) clone() Headers {
	if h == nil {
		return nil
	}
	cloned := make(Headers, len(h))
	for key, values := range h {
		cloned[key] = append([]string(nil), values...)
	}
	return cloned
}

func (h Headers) hasKey(name string) bool {
	for key := range h {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// setDefault adds the header only when no value for the key is present yet,
// comparing case-insensitively.
func (h Headers) setDefault(name string, values ...string) Headers {
	if h == nil {
		h = Headers{}
	}
	if !h.hasKey(name) {
		h[name] = values
	}
	return h
}

// setDefaults adds every header from defaults whose key is not present yet.
func (h Headers) setDefaults(defaults Headers) Headers {
	if h == nil {
		h = Headers{}
	}
	for name, values := range defaults {
		if !h.hasKey(name) {
			h[name] = values
		}
	}
	return h
}

// SingleHeaders builds a Headers value from a flat single-valued map.
func SingleHeaders(flat map[string]string) Headers {
	if flat == nil {
		return nil
	}
	h := make(Headers, len(flat))
	for key, value := range flat {
		h[key] = []string{value}
	}
	return h
}

// Response is the api gateway proxy response envelope. Header and cookie
// shape depends on the format version the response was built for: v1 uses
// Headers or MultiValueHeaders, v2 uses Headers plus Cookies.
type Response struct {
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers,omitempty"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders,omitempty"`
	Cookies           []string            `json:"cookies,omitempty"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

type responseOptions struct {
	headers    Headers
	cookies    []string
	cors       *CORSConfig
	jsonConfig *JSONSerializationConfig
	hasJSON    bool
	body       interface{}
}

// ResponseOption customizes MakeResponse, MakeRedirect and MakeErrorResponse.
type ResponseOption func(*responseOptions)

// WithHeaders sets the response headers.
func WithHeaders(headers Headers) ResponseOption {
	return func(o *responseOptions) { o.headers = headers.clone() }
}

// WithHeader adds one response header.
func WithHeader(name string, values ...string) ResponseOption {
	return func(o *responseOptions) {
		if o.headers == nil {
			o.headers = Headers{}
		}
		o.headers[name] = values
	}
}

// WithCookies sets the response cookies. Only v2 responses support cookies.
func WithCookies(cookies ...string) ResponseOption {
	return func(o *responseOptions) { o.cookies = cookies }
}

// WithCORS merges the CORS config's response headers in; explicitly set
// headers win on conflicts.
func WithCORS(config *CORSConfig) ResponseOption {
	return func(o *responseOptions) { o.cors = config }
}

// WithJSONConfig overrides the process-wide JSON serialization config for
// this response.
func WithJSONConfig(config *JSONSerializationConfig) ResponseOption {
	return func(o *responseOptions) {
		o.jsonConfig = config
		o.hasJSON = true
	}
}

// WithBody overrides the error body when rendering an APIError with
// MakeErrorResponse. MakeResponse ignores it.
func WithBody(body interface{}) ResponseOption {
	return func(o *responseOptions) { o.body = body }
}

// MakeResponse builds a response envelope for the given format version.
//
// Body coercion: []byte is base64 encoded with a default content type of
// application/octet-stream; json.RawMessage is passed through with a default
// of application/json; a string is passed through with a default of
// text/plain; anything else is JSON serialized, honoring the serialization
// config, with a default of application/json. The default content type
// applies only when the caller's headers carry none. A nil body stays empty
// and gets no default content type.
func MakeResponse(statusCode int, body interface{}, formatVersion FormatVersion, opts ...ResponseOption) (Response, error) {
	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}
	return makeResponse(statusCode, body, formatVersion, &o)
}

func makeResponse(statusCode int, body interface{}, formatVersion FormatVersion, o *responseOptions) (Response, error) {
	if formatVersion != APIGatewayV1 && formatVersion != APIGatewayV2 {
		return Response{}, errors.Errorf("cannot build a response for format version %s", formatVersion)
	}
	if o.cookies != nil && formatVersion == APIGatewayV1 {
		return Response{}, errors.Errorf("cookies are not supported in format version %s", formatVersion)
	}

	response := Response{StatusCode: statusCode}
	headers := o.headers.clone()

	if body != nil {
		defaultContentType := ""
		switch b := body.(type) {
		case json.RawMessage:
			response.Body = string(b)
			defaultContentType = "application/json"
		case []byte:
			response.Body = base64.StdEncoding.EncodeToString(b)
			response.IsBase64Encoded = true
			defaultContentType = "application/octet-stream"
		case string:
			response.Body = b
			defaultContentType = "text/plain"
		default:
			config := o.jsonConfig
			if !o.hasJSON {
				config = GetDefaultJSONSerializationConfig()
			}
			encoded, err := encodeJSONBody(body, config)
			if err != nil {
				return Response{}, err
			}
			response.Body = encoded
			defaultContentType = "application/json"
		}
		headers = headers.setDefault("Content-Type", defaultContentType)
	}

	if o.cors != nil {
		headers = headers.setDefaults(SingleHeaders(o.cors.ResponseHeaders()))
	}

	response.Cookies = o.cookies
	setResponseHeaders(&response, headers, formatVersion)
	return response, nil
}

// setResponseHeaders renders headers into the shape the format version
// expects: a flat map when every header is single-valued, otherwise
// multiValueHeaders for v1 and comma-joined flat headers for v2.
func setResponseHeaders(response *Response, headers Headers, formatVersion FormatVersion) {
	if len(headers) == 0 {
		return
	}

	allSingle := true
	for _, values := range headers {
		if len(values) != 1 {
			allSingle = false
			break
		}
	}

	if allSingle {
		flat := make(map[string]string, len(headers))
		for key, values := range headers {
			flat[key] = values[0]
		}
		response.Headers = flat
		return
	}

	if formatVersion == APIGatewayV1 {
		multi := make(map[string][]string, len(headers))
		for key, values := range headers {
			multi[key] = values
		}
		response.MultiValueHeaders = multi
		return
	}

	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	response.Headers = flat
}

// MakeRedirect builds a 3xx response with a Location header and an empty
// body. Any Location header already present in the options is replaced.
func MakeRedirect(statusCode int, url string, formatVersion FormatVersion, opts ...ResponseOption) (Response, error) {
	if statusCode/100 != 3 {
		return Response{}, errors.Errorf("status code %d is not 3XX", statusCode)
	}
	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}
	headers := Headers{}
	for key, values := range o.headers {
		if strings.EqualFold(key, "Location") {
			continue
		}
		headers[key] = values
	}
	headers["Location"] = []string{url}
	o.headers = headers
	return makeResponse(statusCode, nil, formatVersion, &o)
}

// MakeErrorResponse renders an APIError into a response envelope, threading
// caller-supplied body, header and cookie overrides through the error's
// hooks and merging the error's default headers where absent.
func MakeErrorResponse(apiErr APIError, formatVersion FormatVersion, opts ...ResponseOption) (Response, error) {
	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}

	body := apiErr.Body(o.body)
	if body == nil {
		// Resolve through the interface so message and code overrides on
		// concrete error kinds reach the rendered body.
		body = MakeErrorBody(apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	headers := apiErr.Headers(o.headers).clone()
	headers = headers.setDefaults(apiErr.DefaultHeaders())

	o.body = nil
	o.headers = headers
	o.cookies = apiErr.Cookies(o.cookies)

	return makeResponse(apiErr.StatusCode(), body, formatVersion, &o)
}
