package apievent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCORSConfig_optionsImplied(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET", "POST"})

	assert.Equal(t, []string{"OPTIONS", "GET", "POST"}, c.AllowMethods)
}

func TestNewCORSConfig_optionsNotDuplicated(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"OPTIONS", "GET"})

	assert.Equal(t, []string{"OPTIONS", "GET"}, c.AllowMethods)
}

func TestNewCORSConfig_wildcardMethods(t *testing.T) {
	c := NewCORSConfig("*", []string{"GET", "*", "POST"})

	assert.Equal(t, []string{"*"}, c.AllowMethods)
}

func TestNewCORSConfig_headerDeduplication(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET"},
		WithAllowHeaders("Content-Type", "content-type", "Authorization"))

	assert.Equal(t, []string{"Content-Type", "Authorization"}, c.AllowHeaders)
}

func TestNewCORSConfig_wildcardHeaders(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET"},
		WithAllowHeaders("Content-Type", "*"))

	assert.Equal(t, []string{"*"}, c.AllowHeaders)
}

func TestCORSConfig_PreflightHeaders(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET", "POST"},
		WithAllowHeaders(CORSHeadersAuth...),
		WithMaxAge(10*time.Minute),
		WithAllowCredentials())

	assert.Equal(t, map[string]string{
		"Access-Control-Allow-Origin":      "https://example.com",
		"Access-Control-Allow-Methods":     "OPTIONS, GET, POST",
		"Access-Control-Allow-Headers":     "Authorization",
		"Access-Control-Max-Age":           "600",
		"Access-Control-Allow-Credentials": "true",
	}, c.PreflightHeaders())
}

func TestCORSConfig_PreflightHeaders_minimal(t *testing.T) {
	c := NewCORSConfig("*", []string{"GET"})

	assert.Equal(t, map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "OPTIONS, GET",
	}, c.PreflightHeaders())
}

func TestCORSConfig_ResponseHeaders(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET"},
		WithExposeHeaders("X-Request-Id"),
		WithAllowCredentials())

	assert.Equal(t, map[string]string{
		"Access-Control-Allow-Origin":      "https://example.com",
		"Access-Control-Expose-Headers":    "X-Request-Id",
		"Access-Control-Allow-Credentials": "true",
	}, c.ResponseHeaders())
}

func TestCORSConfig_ResponseHeaders_minimal(t *testing.T) {
	c := NewCORSConfig("*", []string{"GET"})

	assert.Equal(t, map[string]string{
		"Access-Control-Allow-Origin": "*",
	}, c.ResponseHeaders())
}

func TestIsPreflightRequest(t *testing.T) {
	event := v2Event(t)
	http := event["requestContext"].(map[string]interface{})["http"].(map[string]interface{})
	http["method"] = "OPTIONS"
	event["headers"].(map[string]interface{})["access-control-request-method"] = "POST"

	assert.True(t, IsPreflightRequest(event))
}

func TestIsPreflightRequest_plainOptions(t *testing.T) {
	event := v2Event(t)
	http := event["requestContext"].(map[string]interface{})["http"].(map[string]interface{})
	http["method"] = "OPTIONS"

	assert.False(t, IsPreflightRequest(event))
}

func TestIsPreflightRequest_wrongMethod(t *testing.T) {
	event := v2Event(t)
	event["headers"].(map[string]interface{})["access-control-request-method"] = "POST"

	assert.False(t, IsPreflightRequest(event))
}

func TestIsPreflightRequest_unknownFormat(t *testing.T) {
	assert.False(t, IsPreflightRequest(Event{"hello": "world"}))
}

func TestCORSConfig_MakePreflightResponse(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET", "POST"})

	response, err := c.MakePreflightResponse(APIGatewayV2)

	require.NoError(t, err)
	assert.Equal(t, 204, response.StatusCode)
	assert.Equal(t, "", response.Body)
	assert.False(t, response.IsBase64Encoded)
	assert.Equal(t, "https://example.com", response.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "OPTIONS, GET, POST", response.Headers["Access-Control-Allow-Methods"])
}

func TestCORSConfig_MakePreflightResponse_callerHeadersWin(t *testing.T) {
	c := NewCORSConfig("https://example.com", []string{"GET"})

	response, err := c.MakePreflightResponse(APIGatewayV1,
		WithHeader("Access-Control-Allow-Origin", "https://other.example"))

	require.NoError(t, err)
	assert.Equal(t, "https://other.example", response.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "OPTIONS, GET", response.Headers["Access-Control-Allow-Methods"])
}
