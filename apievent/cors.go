package apievent

import (
	"strconv"
	"strings"
	"time"
)

// Canned allow-header sets for common authentication styles.
var (
	CORSHeadersContentType = []string{"Content-Type", "Accept"}
	CORSHeadersAuth        = []string{"Authorization"}
	CORSHeadersSigV4       = []string{"Authorization", "Content-Type", "X-Amz-Date", "X-Amz-Security-Token"}
	CORSHeadersAPIKey      = []string{"X-Api-Key"}
)

// CORSConfig is an immutable CORS policy. Build it with NewCORSConfig, which
// normalizes the method and header lists and precomputes the response
// header maps.
type CORSConfig struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	MaxAge           time.Duration
	AllowCredentials bool

	preflightHeaders map[string]string
	responseHeaders  map[string]string
}

// CORSOption customizes a CORSConfig at construction.
type CORSOption func(*CORSConfig)

// WithAllowHeaders sets the request headers allowed on preflight.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(c *CORSConfig) { c.AllowHeaders = headers }
}

// WithExposeHeaders sets the response headers exposed to the browser.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(c *CORSConfig) { c.ExposeHeaders = headers }
}

// WithMaxAge sets how long preflight results may be cached.
func WithMaxAge(age time.Duration) CORSOption {
	return func(c *CORSConfig) { c.MaxAge = age }
}

// WithAllowCredentials allows credentialed cross-origin requests.
func WithAllowCredentials() CORSOption {
	return func(c *CORSConfig) { c.AllowCredentials = true }
}

// NewCORSConfig builds a CORS policy for the given origin and allowed
// methods. A "*" collapses the method or header list to the wildcard;
// OPTIONS is implied in the allowed methods; header lists are de-duplicated
// case-insensitively.
func NewCORSConfig(allowOrigin string, allowMethods []string, opts ...CORSOption) *CORSConfig {
	c := &CORSConfig{
		AllowOrigin:  allowOrigin,
		AllowMethods: allowMethods,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.AllowMethods = normalizeMethods(c.AllowMethods)
	c.AllowHeaders = normalizeHeaderNames(c.AllowHeaders)
	c.ExposeHeaders = normalizeHeaderNames(c.ExposeHeaders)

	c.preflightHeaders = c.buildPreflightHeaders()
	c.responseHeaders = c.buildResponseHeaders()
	return c
}

func normalizeMethods(methods []string) []string {
	hasOptions := false
	for _, method := range methods {
		if method == "*" {
			return []string{"*"}
		}
		if method == "OPTIONS" {
			hasOptions = true
		}
	}
	if hasOptions {
		return methods
	}
	return append([]string{"OPTIONS"}, methods...)
}

func normalizeHeaderNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var filtered []string
	for _, name := range names {
		if name == "*" {
			return []string{"*"}
		}
		lower := strings.ToLower(name)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		filtered = append(filtered, name)
	}
	return filtered
}

func (c *CORSConfig) buildPreflightHeaders() map[string]string {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  c.AllowOrigin,
		"Access-Control-Allow-Methods": strings.Join(c.AllowMethods, ", "),
	}
	if len(c.AllowHeaders) > 0 {
		headers["Access-Control-Allow-Headers"] = strings.Join(c.AllowHeaders, ", ")
	}
	if c.MaxAge > 0 {
		headers["Access-Control-Max-Age"] = strconv.Itoa(int(c.MaxAge / time.Second))
	}
	if c.AllowCredentials {
		headers["Access-Control-Allow-Credentials"] = "true"
	}
	return headers
}

func (c *CORSConfig) buildResponseHeaders() map[string]string {
	headers := map[string]string{
		"Access-Control-Allow-Origin": c.AllowOrigin,
	}
	if len(c.ExposeHeaders) > 0 {
		headers["Access-Control-Expose-Headers"] = strings.Join(c.ExposeHeaders, ", ")
	}
	if c.AllowCredentials {
		headers["Access-Control-Allow-Credentials"] = "true"
	}
	return headers
}

// PreflightHeaders returns the headers for a preflight response.
func (c *CORSConfig) PreflightHeaders() map[string]string {
	return c.preflightHeaders
}

// ResponseHeaders returns the CORS headers for an ordinary response.
func (c *CORSConfig) ResponseHeaders() map[string]string {
	return c.responseHeaders
}

// IsPreflightRequest reports whether the event is a CORS preflight probe: an
// OPTIONS request carrying the Access-Control-Request-Method header.
func IsPreflightRequest(event Event) bool {
	method, err := event.Method()
	if err != nil || method != "OPTIONS" {
		return false
	}
	headers, err := event.Headers()
	if err != nil {
		return false
	}
	for key := range headers {
		if strings.EqualFold(key, "Access-Control-Request-Method") {
			return true
		}
	}
	return false
}

// MakePreflightResponse builds the 204 response to a preflight request,
// carrying the policy's preflight headers and an empty body.
func (c *CORSConfig) MakePreflightResponse(formatVersion FormatVersion, opts ...ResponseOption) (Response, error) {
	opts = append([]ResponseOption{WithHeaders(SingleHeaders(c.preflightHeaders))}, opts...)
	return MakeResponse(204, nil, formatVersion, opts...)
}
