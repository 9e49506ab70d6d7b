// Package apievent provides utilities for writing aws lambda functions that
// sit behind aws api gateway, covering both the REST/HTTP 1.0 and the HTTP
// 2.0 event formats. It detects which envelope format an event uses, extracts
// fields through format-aware accessors, validates requests with composable
// checks, and turns handler results or typed errors back into the correct
// response envelope including CORS headers and JSON body serialization.
//
// It deliberately does not do routing; route dispatch belongs to api gateway.
package apievent
