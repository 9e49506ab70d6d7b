package apievent

import (
	"strings"

	"github.com/pkg/errors"
)

// Event is the raw api gateway proxy event as delivered to the lambda
// function, unmarshaled as a generic JSON mapping. It is owned by a single
// invocation and is mutated in place at most twice: the detected format
// version is cached into it, and the JSON body middleware replaces the raw
// body with the parsed payload.
type Event map[string]interface{}

// ErrUnknownFormatVersion is returned by accessors when the event does not
// match any known envelope shape. It is a plain error, not an APIError: an
// unrecognizable event is a deployment problem, not a client one.
var ErrUnknownFormatVersion = errors.New("unknown event format version")

func (e Event) stringField(key string) string {
	s, _ := e[key].(string)
	return s
}

// Method returns the HTTP method of the request.
func (e Event) Method() (string, error) {
	switch e.FormatVersion() {
	case APIGatewayV1:
		return e.stringField("httpMethod"), nil
	case APIGatewayV2:
		method, _ := lookupKeyPath(e, []string{"requestContext", "http", "method"})
		s, _ := method.(string)
		return s, nil
	default:
		return "", ErrUnknownFormatVersion
	}
}

// Stage returns the api gateway deployment stage of the request.
func (e Event) Stage() (string, error) {
	if e.FormatVersion() == FormatVersionUnknown {
		return "", ErrUnknownFormatVersion
	}
	stage, _ := lookupKeyPath(e, []string{"requestContext", "stage"})
	s, _ := stage.(string)
	return s, nil
}

func stripStage(path, stage string, version FormatVersion) string {
	if stage == "" {
		return path
	}
	if version == APIGatewayV2 && stage == "$default" {
		return path
	}
	prefix := "/" + stage
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	return path
}

func (e Event) rawPathParameters() map[string]string {
	raw, ok := e["pathParameters"].(map[string]interface{})
	if !ok {
		return map[string]string{}
	}
	parameters := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := value.(string); ok {
			parameters[key] = s
		}
	}
	return parameters
}

// PathAndParameters returns the URL path with the stage prefix stripped,
// together with the gateway-provided path parameters. Set
// disableStageRemoval to keep the original path including the stage.
func (e Event) PathAndParameters(disableStageRemoval bool) (string, map[string]string, error) {
	version := e.FormatVersion()

	var path string
	switch version {
	case APIGatewayV1:
		path = e.stringField("path")
	case APIGatewayV2:
		path = e.stringField("rawPath")
	default:
		return "", nil, ErrUnknownFormatVersion
	}

	if !disableStageRemoval {
		stage, err := e.Stage()
		if err != nil {
			return "", nil, err
		}
		path = stripStage(path, stage, version)
	}

	return path, e.rawPathParameters(), nil
}

// updatePathParameters merges parameters into the event's path parameters in
// place, with the input taking precedence, and returns the merged map.
func (e Event) updatePathParameters(parameters map[string]string) map[string]string {
	existing, ok := e["pathParameters"].(map[string]interface{})
	if !ok {
		if len(parameters) == 0 {
			return map[string]string{}
		}
		existing = map[string]interface{}{}
		e["pathParameters"] = existing
	}
	for key, value := range parameters {
		existing[key] = value
	}
	return e.rawPathParameters()
}

func foldMultiValue(raw map[string]interface{}, lowercaseKeys bool) map[string]string {
	folded := make(map[string]string, len(raw))
	for key, value := range raw {
		if lowercaseKeys {
			key = strings.ToLower(key)
		}
		switch v := value.(type) {
		case string:
			folded[key] = v
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			folded[key] = strings.Join(parts, ",")
		}
	}
	return folded
}

// Headers returns the request headers as a single-valued map. For v1 events
// the multi-value headers are folded with comma-joined concatenation and the
// keys are lowercased; v2 events already deliver lowercase single-valued
// headers. Note the folding is unconditional, so header values that
// legitimately contain commas are indistinguishable from folded multi-values.
func (e Event) Headers() (map[string]string, error) {
	switch e.FormatVersion() {
	case APIGatewayV1:
		if raw, ok := e["multiValueHeaders"].(map[string]interface{}); ok {
			return foldMultiValue(raw, true), nil
		}
		// REST test events sometimes omit multiValueHeaders.
		if raw, ok := e["headers"].(map[string]interface{}); ok {
			return foldMultiValue(raw, true), nil
		}
		return map[string]string{}, nil
	case APIGatewayV2:
		if raw, ok := e["headers"].(map[string]interface{}); ok {
			return foldMultiValue(raw, false), nil
		}
		return map[string]string{}, nil
	default:
		return nil, ErrUnknownFormatVersion
	}
}

// QueryParameters returns the query string parameters as a single-valued
// map, folding v1 multi-value parameters with comma-joined concatenation.
func (e Event) QueryParameters() (map[string]string, error) {
	switch e.FormatVersion() {
	case APIGatewayV1:
		if raw, ok := e["multiValueQueryStringParameters"].(map[string]interface{}); ok {
			return foldMultiValue(raw, false), nil
		}
		return map[string]string{}, nil
	case APIGatewayV2:
		if raw, ok := e["queryStringParameters"].(map[string]interface{}); ok {
			return foldMultiValue(raw, false), nil
		}
		return map[string]string{}, nil
	default:
		return nil, ErrUnknownFormatVersion
	}
}

// ContentType returns the Content-Type header of the request, or "" when the
// request has none.
func (e Event) ContentType() (string, error) {
	headers, err := e.Headers()
	if err != nil {
		return "", err
	}
	for key, value := range headers {
		if strings.EqualFold(key, "Content-Type") {
			return value, nil
		}
	}
	return "", nil
}
