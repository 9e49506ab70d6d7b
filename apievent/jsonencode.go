package apievent

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TimeSerializationConfig controls how time.Time values are rendered.
//
// When UseZFormat is true (the default) a rendered UTC offset of "+00:00" is
// replaced with the "Z" designator. Layout overrides the time layout used
// for rendering; it defaults to RFC 3339.
type TimeSerializationConfig struct {
	UseZFormat bool
	Layout     string
}

// DecimalFormat selects how decimal.Decimal values are rendered.
type DecimalFormat int

const (
	// DecimalDisabled rejects decimal values as unserializable.
	DecimalDisabled DecimalFormat = iota
	// DecimalAsFloat renders decimals as JSON numbers.
	DecimalAsFloat
	// DecimalAsString renders decimals as strings, preserving precision.
	DecimalAsString
)

// JSONSerializationConfig controls how non-JSON-native types are rendered
// when a response body is serialized. Time is nil to disable time.Time
// handling.
type JSONSerializationConfig struct {
	Time    *TimeSerializationConfig
	Decimal DecimalFormat
}

// DefaultJSONSerializationConfig returns the initial process-wide config:
// times as RFC 3339 with the "Z" designator for UTC, decimals as floats.
func DefaultJSONSerializationConfig() *JSONSerializationConfig {
	return &JSONSerializationConfig{
		Time:    &TimeSerializationConfig{UseZFormat: true},
		Decimal: DecimalAsFloat,
	}
}

var defaultJSONSerializationConfig = DefaultJSONSerializationConfig()

// SetDefaultJSONSerializationConfig sets the process-wide serialization
// config used when a response does not carry its own. Intended to be called
// once at startup; tests reset it with ResetDefaultJSONSerializationConfig.
func SetDefaultJSONSerializationConfig(config *JSONSerializationConfig) {
	defaultJSONSerializationConfig = config
}

// GetDefaultJSONSerializationConfig returns the process-wide serialization
// config.
func GetDefaultJSONSerializationConfig() *JSONSerializationConfig {
	return defaultJSONSerializationConfig
}

// ResetDefaultJSONSerializationConfig restores the initial process-wide
// config. For tests.
func ResetDefaultJSONSerializationConfig() {
	defaultJSONSerializationConfig = DefaultJSONSerializationConfig()
}

var utcOffsetSuffix = regexp.MustCompile(`\+00(:?00)?$`)

func (c *TimeSerializationConfig) render(t time.Time) string {
	layout := c.Layout
	if layout == "" {
		layout = time.RFC3339
	}
	value := t.Format(layout)
	if c.UseZFormat {
		value = utcOffsetSuffix.ReplaceAllString(value, "Z")
	}
	return value
}

// coerceJSONValue rewrites non-JSON-native values per the config, descending
// into generic maps and slices. Typed structs are left to their own
// MarshalJSON.
func coerceJSONValue(value interface{}, config *JSONSerializationConfig) (interface{}, error) {
	if config == nil {
		return value, nil
	}
	switch v := value.(type) {
	case time.Time:
		if config.Time == nil {
			return nil, errors.New("time.Time serialization is disabled")
		}
		return config.Time.render(v), nil
	case decimal.Decimal:
		switch config.Decimal {
		case DecimalAsFloat:
			f, _ := v.Float64()
			return f, nil
		case DecimalAsString:
			return v.String(), nil
		default:
			return nil, errors.New("decimal serialization is disabled")
		}
	case map[string]interface{}:
		coerced := make(map[string]interface{}, len(v))
		for key, item := range v {
			c, err := coerceJSONValue(item, config)
			if err != nil {
				return nil, err
			}
			coerced[key] = c
		}
		return coerced, nil
	case []interface{}:
		coerced := make([]interface{}, len(v))
		for i, item := range v {
			c, err := coerceJSONValue(item, config)
			if err != nil {
				return nil, err
			}
			coerced[i] = c
		}
		return coerced, nil
	default:
		return value, nil
	}
}

func encodeJSONBody(body interface{}, config *JSONSerializationConfig) (string, error) {
	coerced, err := coerceJSONValue(body, config)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(coerced)
	if err != nil {
		return "", errors.Wrap(err, "failed serializing response body")
	}
	return string(encoded), nil
}
