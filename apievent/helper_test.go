package apievent

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/sjson"
)

const v1EventJSON = `{
	"httpMethod": "POST",
	"path": "/live/user/123",
	"pathParameters": {"user_id": "123"},
	"headers": {"Content-Type": "application/json", "X-Request-Id": "abc"},
	"multiValueHeaders": {"Content-Type": ["application/json"], "X-Request-Id": ["abc"]},
	"queryStringParameters": {"limit": "10"},
	"multiValueQueryStringParameters": {"limit": ["10"]},
	"body": "{\"name\":\"yolo\"}",
	"isBase64Encoded": false,
	"requestContext": {"stage": "live"}
}`

const v2EventJSON = `{
	"version": "2.0",
	"routeKey": "POST /user/{user_id}",
	"rawPath": "/live/user/123",
	"rawQueryString": "limit=10",
	"headers": {"content-type": "application/json", "x-request-id": "abc"},
	"queryStringParameters": {"limit": "10"},
	"pathParameters": {"user_id": "123"},
	"cookies": ["session=1"],
	"body": "{\"name\":\"yolo\"}",
	"isBase64Encoded": false,
	"requestContext": {"stage": "live", "http": {"method": "POST", "path": "/live/user/123"}}
}`

func parseEvent(t *testing.T, raw string) Event {
	t.Helper()

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("failed parsing event fixture: %v", err)
	}
	return event
}

func v1Event(t *testing.T) Event {
	return parseEvent(t, v1EventJSON)
}

func v2Event(t *testing.T) Event {
	return parseEvent(t, v2EventJSON)
}

func withField(t *testing.T, raw, path string, value interface{}) string {
	t.Helper()

	updated, err := sjson.Set(raw, path, value)
	if err != nil {
		t.Fatalf("failed setting %s in event fixture: %v", path, err)
	}
	return updated
}

func withoutField(t *testing.T, raw, path string) string {
	t.Helper()

	updated, err := sjson.Delete(raw, path)
	if err != nil {
		t.Fatalf("failed deleting %s from event fixture: %v", path, err)
	}
	return updated
}
