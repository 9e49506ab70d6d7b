package apievent

import "context"

// HandlerFunc is the user function the adapter wraps: one event in, one
// result out. The result is either a ready response envelope (a map with a
// statusCode key, or a Response) or a body to wrap in a status-200 response.
type HandlerFunc func(ctx context.Context, event Event) (interface{}, error)

// Middleware wraps a HandlerFunc with a validation step. Middleware listed
// first runs first.
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies middleware to fn in declaration order: the first middleware
// is outermost and runs first.
func Chain(fn HandlerFunc, middleware ...Middleware) HandlerFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		fn = middleware[i](fn)
	}
	return fn
}

func validating(validate func(Event) error) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, event Event) (interface{}, error) {
			if err := validate(event); err != nil {
				return nil, err
			}
			return next(ctx, event)
		}
	}
}

// RequireFormatVersion validates the event format version before the handler
// runs. See ValidateFormatVersion for the useErrorResponse semantics.
func RequireFormatVersion(formatVersion FormatVersion, useErrorResponse bool) Middleware {
	return validating(func(event Event) error {
		_, err := ValidateFormatVersion(event, formatVersion, useErrorResponse)
		return err
	})
}

// RequireMethod validates the request method before the handler runs.
func RequireMethod(methods ...string) Middleware {
	return validating(func(event Event) error {
		_, err := ValidateMethod(event, methods...)
		return err
	})
}

// RequirePath validates the request path against path literals before the
// handler runs.
func RequirePath(paths []string, opts ...PathValidationOption) Middleware {
	return validating(func(event Event) error {
		_, _, err := ValidatePath(event, paths, opts...)
		return err
	})
}

// RequirePathRegex validates the request path against a pattern before the
// handler runs, merging named capture groups into the event's path
// parameters.
func RequirePathRegex(pathRegex string, opts ...PathValidationOption) Middleware {
	opts = append(opts, UpdatePathParameters())
	return validating(func(event Event) error {
		_, _, err := ValidatePathRegex(event, pathRegex, opts...)
		return err
	})
}

// RequirePathParameters validates the path parameters before the handler
// runs.
func RequirePathParameters(constraints Constraints, opts ...PathValidationOption) Middleware {
	return validating(func(event Event) error {
		_, _, err := ValidatePathParameters(event, constraints, opts...)
		return err
	})
}

// RequireHeaders validates the request headers before the handler runs.
func RequireHeaders(constraints Constraints) Middleware {
	return validating(func(event Event) error {
		_, err := ValidateHeaders(event, constraints)
		return err
	})
}

// RequireContentType validates the request Content-Type before the handler
// runs.
func RequireContentType(contentTypes ...string) Middleware {
	return validating(func(event Event) error {
		_, err := ValidateContentType(event, contentTypes...)
		return err
	})
}

// RequireQueryParameters validates the query parameters before the handler
// runs.
func RequireQueryParameters(constraints Constraints) Middleware {
	return validating(func(event Event) error {
		_, err := ValidateQueryParameters(event, constraints)
		return err
	})
}

// RequireJSONBody parses and validates the request body before the handler
// runs, and on success replaces the event's body field with the parsed
// payload so the handler reads structured data.
func RequireJSONBody(opts JSONBodyOptions) Middleware {
	return validating(func(event Event) error {
		payload, err := GetJSONBody(event, opts)
		if err != nil {
			return err
		}
		event.setParsedBody(payload)
		return nil
	})
}
