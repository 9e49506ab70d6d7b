package apievent

import (
	"github.com/tidwall/gjson"
)

// FormatVersion identifies which api gateway event envelope shape an event
// uses.
type FormatVersion int

const (
	// FormatVersionUnknown means the event did not match any known envelope
	// shape.
	FormatVersionUnknown FormatVersion = iota

	// APIGatewayV1 covers REST API events and HTTP API payload format
	// version 1.0, which are wire-compatible.
	APIGatewayV1

	// APIGatewayV2 covers HTTP API payload format version 2.0.
	APIGatewayV2
)

// FormatVersionCacheKey is the reserved event key the detected format version
// is memoized under.
const FormatVersionCacheKey = "__event_format_version__"

// String returns the name of the format version.
func (v FormatVersion) String() string {
	switch v {
	case APIGatewayV1:
		return "APIGatewayV1"
	case APIGatewayV2:
		return "APIGatewayV2"
	default:
		return "FormatVersionUnknown"
	}
}

func formatVersionFromName(name string) FormatVersion {
	switch name {
	case "APIGatewayV1":
		return APIGatewayV1
	case "APIGatewayV2":
		return APIGatewayV2
	default:
		return FormatVersionUnknown
	}
}

// formatSignature describes the envelope fingerprint of one format version:
// an optional version marker and a set of keys (possibly nested paths) that
// must all be present.
type formatSignature struct {
	versionKey   string
	versionValue string
	keys         [][]string
}

var v1Keys = [][]string{
	{"httpMethod"},
	{"path"},
	{"pathParameters"},
	{"headers"},
	{"multiValueHeaders"},
	{"queryStringParameters"},
	{"multiValueQueryStringParameters"},
	{"body"},
	{"isBase64Encoded"},
}

var (
	v1Signature = formatSignature{versionKey: "version", versionValue: "1.0", keys: v1Keys}

	// REST API events carry no version marker, only the key set.
	v1RESTSignature = formatSignature{keys: v1Keys}

	v2Signature = formatSignature{
		versionKey:   "version",
		versionValue: "2.0",
		keys: [][]string{
			{"requestContext", "http", "method"},
			{"rawPath"},
			{"headers"},
			{"rawQueryString"},
			{"isBase64Encoded"},
		},
	}
)

func lookupKeyPath(event map[string]interface{}, path []string) (interface{}, bool) {
	var value interface{} = event
	for _, key := range path {
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return value, true
}

func (s formatSignature) matches(event Event) bool {
	if s.versionKey != "" {
		if v, _ := event[s.versionKey].(string); v != s.versionValue {
			return false
		}
	}
	for _, path := range s.keys {
		if _, ok := lookupKeyPath(event, path); !ok {
			return false
		}
	}
	return true
}

func classifyFormatVersion(event Event) FormatVersion {
	switch {
	case v2Signature.matches(event):
		return APIGatewayV2
	case event["routeKey"] != nil:
		// HTTP API events always carry a route key; some partial events
		// (e.g. authorizer payloads) carry it without the full key set.
		return APIGatewayV2
	case v1Signature.matches(event):
		return APIGatewayV1
	case v1RESTSignature.matches(event):
		return APIGatewayV1
	default:
		return FormatVersionUnknown
	}
}

// DetectFormatVersion classifies the event envelope shape. The result is
// memoized in the event under FormatVersionCacheKey so repeated calls within
// one invocation skip classification; set disableCache to leave the event
// unmodified and force re-detection.
func DetectFormatVersion(event Event, disableCache bool) FormatVersion {
	if !disableCache {
		if cached, ok := event[FormatVersionCacheKey].(string); ok {
			return formatVersionFromName(cached)
		}
	}

	version := classifyFormatVersion(event)

	if version != FormatVersionUnknown && !disableCache {
		event[FormatVersionCacheKey] = version.String()
	}
	return version
}

// FormatVersion returns the memoized format version of the event, detecting
// and caching it on first use.
func (e Event) FormatVersion() FormatVersion {
	return DetectFormatVersion(e, false)
}

// FormatVersionOfRaw classifies a raw, still-marshaled event payload without
// unmarshaling it. Useful for cheap triage before committing to full event
// processing.
func FormatVersionOfRaw(payload []byte) FormatVersion {
	if !gjson.ValidBytes(payload) {
		return FormatVersionUnknown
	}
	if gjson.GetBytes(payload, "version").String() == "2.0" ||
		gjson.GetBytes(payload, "routeKey").Exists() {
		return APIGatewayV2
	}
	if gjson.GetBytes(payload, "version").String() == "1.0" {
		return APIGatewayV1
	}
	for _, path := range []string{"httpMethod", "path", "multiValueHeaders", "isBase64Encoded"} {
		if !gjson.GetBytes(payload, path).Exists() {
			return FormatVersionUnknown
		}
	}
	return APIGatewayV1
}
