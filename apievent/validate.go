package apievent

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Constraints describes shared requirements for header, query-parameter and
// path-parameter validation: Keys must be present with any value, Values
// must match exactly, and ValuePatterns must match the regular expression
// anywhere in the value. Missing and mismatched keys are collected, not
// fail-fast, and reported together in one error.
type Constraints struct {
	Keys          []string
	Values        map[string]string
	ValuePatterns map[string]string
}

func (c Constraints) lowercased() Constraints {
	lower := Constraints{Keys: c.Keys}
	if c.Values != nil {
		lower.Values = make(map[string]string, len(c.Values))
		for key, value := range c.Values {
			lower.Values[strings.ToLower(key)] = value
		}
	}
	if c.ValuePatterns != nil {
		lower.ValuePatterns = make(map[string]string, len(c.ValuePatterns))
		for key, pattern := range c.ValuePatterns {
			lower.ValuePatterns[strings.ToLower(key)] = pattern
		}
	}
	return lower
}

// check collects every violation against the parameters: missing keys and
// present-but-invalid values.
func (c Constraints) check(parameters map[string]string) (badKeys []string, badValues map[string]string, err error) {
	badValues = map[string]string{}

	for _, key := range c.Keys {
		if _, ok := parameters[key]; !ok {
			badKeys = append(badKeys, key)
		}
	}
	for key, want := range c.Values {
		got, ok := parameters[key]
		if !ok {
			badKeys = append(badKeys, key)
		} else if got != want {
			badValues[key] = got
		}
	}
	for key, pattern := range c.ValuePatterns {
		rx, compileErr := regexp.Compile(pattern)
		if compileErr != nil {
			return nil, nil, errors.Wrapf(compileErr, "failed compiling value pattern for %q", key)
		}
		got, ok := parameters[key]
		if !ok {
			badKeys = append(badKeys, key)
		} else if !rx.MatchString(got) {
			badValues[key] = got
		}
	}
	return badKeys, badValues, nil
}

// ValidateFormatVersion validates that the event uses the given format
// version. A mismatch is by default a plain error, because the deployed
// format version is an infrastructure decision and a mismatch is a host
// misconfiguration; set useErrorResponse to get a FormatVersionError (500)
// client response instead.
func ValidateFormatVersion(event Event, formatVersion FormatVersion, useErrorResponse bool) (FormatVersion, error) {
	actual := event.FormatVersion()
	if actual != formatVersion {
		apiErr := NewFormatVersionError(formatVersion, actual)
		if !useErrorResponse {
			return actual, errors.New(apiErr.InternalMessage())
		}
		return actual, apiErr
	}
	return actual, nil
}

// ValidateMethod validates the request method against the allowed set,
// failing with an UnsupportedMethodError.
func ValidateMethod(event Event, methods ...string) (string, error) {
	eventMethod, err := event.Method()
	if err != nil {
		return "", err
	}
	for _, method := range methods {
		if eventMethod == method {
			return eventMethod, nil
		}
	}
	return "", NewUnsupportedMethodError(eventMethod, methods)
}

// PathValidationOption customizes path validation.
type PathValidationOption func(*pathValidationOptions)

type pathValidationOptions struct {
	disableStageRemoval bool
	updateEvent         bool
}

// DisableStageRemoval preserves the original path including the stage
// prefix during path matching.
func DisableStageRemoval() PathValidationOption {
	return func(o *pathValidationOptions) { o.disableStageRemoval = true }
}

// UpdatePathParameters merges regex capture groups into the event's path
// parameters in place. Used by the RequirePathRegex middleware.
func UpdatePathParameters() PathValidationOption {
	return func(o *pathValidationOptions) { o.updateEvent = true }
}

// ValidatePath validates the request path against the allowed path literals,
// failing with a PathNotFoundError. Matching runs after stage removal
// unless disabled.
func ValidatePath(event Event, paths []string, opts ...PathValidationOption) (string, map[string]string, error) {
	var o pathValidationOptions
	for _, opt := range opts {
		opt(&o)
	}
	eventPath, parameters, err := event.PathAndParameters(o.disableStageRemoval)
	if err != nil {
		return "", nil, err
	}
	for _, path := range paths {
		if eventPath == path {
			return eventPath, parameters, nil
		}
	}
	return "", nil, NewPathNotFoundError(eventPath, paths, false)
}

// ValidatePathRegex validates the request path against a regular expression,
// failing with a PathNotFoundError. Named capture groups are merged into
// (and take precedence over) the gateway-provided path parameters; with
// UpdatePathParameters the merge happens in the event itself.
func ValidatePathRegex(event Event, pathRegex string, opts ...PathValidationOption) (string, map[string]string, error) {
	var o pathValidationOptions
	for _, opt := range opts {
		opt(&o)
	}
	rx, err := regexp.Compile(pathRegex)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed compiling path regex %q", pathRegex)
	}

	eventPath, parameters, err := event.PathAndParameters(o.disableStageRemoval)
	if err != nil {
		return "", nil, err
	}

	match := rx.FindStringSubmatch(eventPath)
	if match == nil {
		return "", nil, NewPathNotFoundError(eventPath, []string{pathRegex}, true)
	}

	captured := map[string]string{}
	for i, name := range rx.SubexpNames() {
		if i != 0 && name != "" {
			captured[name] = match[i]
		}
	}

	if o.updateEvent {
		parameters = event.updatePathParameters(captured)
	} else {
		merged := make(map[string]string, len(parameters)+len(captured))
		for key, value := range parameters {
			merged[key] = value
		}
		for key, value := range captured {
			merged[key] = value
		}
		parameters = merged
	}
	return eventPath, parameters, nil
}

// ValidatePathParameters validates the path parameters against the
// constraints, failing with a PathParameterError that enumerates every
// violation.
func ValidatePathParameters(event Event, constraints Constraints, opts ...PathValidationOption) (string, map[string]string, error) {
	var o pathValidationOptions
	for _, opt := range opts {
		opt(&o)
	}
	eventPath, parameters, err := event.PathAndParameters(o.disableStageRemoval)
	if err != nil {
		return "", nil, err
	}
	badKeys, badValues, err := constraints.check(parameters)
	if err != nil {
		return "", nil, err
	}
	if len(badKeys) > 0 || len(badValues) > 0 {
		return "", nil, NewPathParameterError(eventPath, badKeys, badValues)
	}
	return eventPath, parameters, nil
}

// ValidateHeaders validates the request headers against the constraints,
// failing with a HeaderError that enumerates every violation. Constraint
// keys are matched case-insensitively against the folded header map.
func ValidateHeaders(event Event, constraints Constraints) (map[string]string, error) {
	eventHeaders, err := event.Headers()
	if err != nil {
		return nil, err
	}
	badKeys, badValues, err := constraints.lowercased().check(lowercaseKeys(eventHeaders))
	if err != nil {
		return nil, err
	}
	if len(badKeys) > 0 || len(badValues) > 0 {
		return nil, NewHeaderError(eventHeaders, badKeys, badValues)
	}
	return eventHeaders, nil
}

func lowercaseKeys(m map[string]string) map[string]string {
	lower := make(map[string]string, len(m))
	for key, value := range m {
		lower[strings.ToLower(key)] = value
	}
	return lower
}

// ValidateQueryParameters validates the query parameters against the
// constraints, failing with a QueryParameterError that enumerates every
// violation.
func ValidateQueryParameters(event Event, constraints Constraints) (map[string]string, error) {
	eventQueryParameters, err := event.QueryParameters()
	if err != nil {
		return nil, err
	}
	badKeys, badValues, err := constraints.check(eventQueryParameters)
	if err != nil {
		return nil, err
	}
	if len(badKeys) > 0 || len(badValues) > 0 {
		return nil, NewQueryParameterError(eventQueryParameters, badKeys, badValues)
	}
	return eventQueryParameters, nil
}

// contentTypeMatches matches a received content type against an accepted
// one, ignoring parameters like charset and honoring */* and type/*
// wildcards.
func contentTypeMatches(contentType, accept string) bool {
	if accept == "*/*" {
		return true
	}
	mimeType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if strings.HasSuffix(accept, "/*") {
		return strings.Split(mimeType, "/")[0] == strings.Split(accept, "/")[0]
	}
	return mimeType == accept
}

// ValidateContentType validates the request Content-Type against the allowed
// types, failing with a ContentTypeError. A missing Content-Type never
// matches.
func ValidateContentType(event Event, contentTypes ...string) (string, error) {
	eventContentType, err := event.ContentType()
	if err != nil {
		return "", err
	}
	if eventContentType == "" {
		return "", NewContentTypeError("", contentTypes)
	}
	for _, accept := range contentTypes {
		if contentTypeMatches(eventContentType, accept) {
			return eventContentType, nil
		}
	}
	return "", NewContentTypeError(eventContentType, contentTypes)
}
