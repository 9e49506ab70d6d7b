package apievent

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSerializationConfig_render_utcZ(t *testing.T) {
	config := &TimeSerializationConfig{UseZFormat: true}
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2022-06-15T10:30:00Z", config.render(when))
}

func TestTimeSerializationConfig_render_utcOffsetKept(t *testing.T) {
	config := &TimeSerializationConfig{UseZFormat: false, Layout: "2006-01-02T15:04:05-07:00"}
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2022-06-15T10:30:00+00:00", config.render(when))
}

func TestTimeSerializationConfig_render_nonUTCUnchanged(t *testing.T) {
	config := &TimeSerializationConfig{UseZFormat: true}
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.FixedZone("", 2*3600))

	assert.Equal(t, "2022-06-15T10:30:00+02:00", config.render(when))
}

func TestTimeSerializationConfig_render_customLayout(t *testing.T) {
	config := &TimeSerializationConfig{UseZFormat: true, Layout: "2006-01-02 15:04:05 -07:00"}
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.FixedZone("", 0))

	assert.Equal(t, "2022-06-15 10:30:00 Z", config.render(when))
}

func TestEncodeJSONBody_time(t *testing.T) {
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.UTC)

	encoded, err := encodeJSONBody(map[string]interface{}{"at": when}, DefaultJSONSerializationConfig())

	require.NoError(t, err)
	assert.Equal(t, `{"at":"2022-06-15T10:30:00Z"}`, encoded)
}

func TestEncodeJSONBody_timeDisabled(t *testing.T) {
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.UTC)

	_, err := encodeJSONBody(map[string]interface{}{"at": when}, &JSONSerializationConfig{})

	assert.Error(t, err)
}

func TestEncodeJSONBody_decimalAsFloat(t *testing.T) {
	value := decimal.RequireFromString("1.5")

	encoded, err := encodeJSONBody(map[string]interface{}{"amount": value}, DefaultJSONSerializationConfig())

	require.NoError(t, err)
	assert.Equal(t, `{"amount":1.5}`, encoded)
}

func TestEncodeJSONBody_decimalAsString(t *testing.T) {
	value := decimal.RequireFromString("1.500")
	config := &JSONSerializationConfig{Decimal: DecimalAsString}

	encoded, err := encodeJSONBody(map[string]interface{}{"amount": value}, config)

	require.NoError(t, err)
	assert.Equal(t, `{"amount":"1.500"}`, encoded)
}

func TestEncodeJSONBody_decimalDisabled(t *testing.T) {
	value := decimal.RequireFromString("1.5")
	config := &JSONSerializationConfig{Decimal: DecimalDisabled}

	_, err := encodeJSONBody(map[string]interface{}{"amount": value}, config)

	assert.Error(t, err)
}

func TestEncodeJSONBody_nested(t *testing.T) {
	when := time.Date(2022, 6, 15, 10, 30, 0, 0, time.UTC)
	body := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"at": when, "n": 1},
		},
	}

	encoded, err := encodeJSONBody(body, DefaultJSONSerializationConfig())

	require.NoError(t, err)
	assert.Equal(t, `{"items":[{"at":"2022-06-15T10:30:00Z","n":1}]}`, encoded)
}

func TestEncodeJSONBody_nilConfig(t *testing.T) {
	encoded, err := encodeJSONBody(map[string]interface{}{"n": 1}, nil)

	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, encoded)
}

func TestSetDefaultJSONSerializationConfig(t *testing.T) {
	SetDefaultJSONSerializationConfig(&JSONSerializationConfig{Decimal: DecimalAsString})
	defer ResetDefaultJSONSerializationConfig()

	assert.Equal(t, DecimalAsString, GetDefaultJSONSerializationConfig().Decimal)
	assert.Nil(t, GetDefaultJSONSerializationConfig().Time)

	ResetDefaultJSONSerializationConfig()
	assert.Equal(t, DecimalAsFloat, GetDefaultJSONSerializationConfig().Decimal)
	assert.True(t, GetDefaultJSONSerializationConfig().Time.UseZFormat)
}
