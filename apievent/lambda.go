package apievent

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
)

// Invoke implements lambda.Handler: it unmarshals the raw invocation
// payload, runs Handle, and marshals whatever envelope comes back.
func (h *Handler) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, errors.Wrap(err, "failed unmarshaling invocation payload")
	}

	result, err := h.Handle(ctx, event)
	if err != nil {
		return nil, err
	}

	response, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshaling response envelope")
	}
	return response, nil
}

// Start runs the handler under the lambda runtime.
func (h *Handler) Start() {
	lambda.StartHandler(h)
}

func eventFromRequest(request interface{}) (Event, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshaling request")
	}
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.Wrap(err, "failed unmarshaling request")
	}
	return event, nil
}

// EventFromProxyRequest converts a typed v1 proxy request into an Event.
func EventFromProxyRequest(request events.APIGatewayProxyRequest) (Event, error) {
	event, err := eventFromRequest(request)
	if err != nil {
		return nil, err
	}
	// The typed struct marshals isBase64Encoded with omitempty, but format
	// detection requires the key.
	if _, ok := event["isBase64Encoded"]; !ok {
		event["isBase64Encoded"] = request.IsBase64Encoded
	}
	return event, nil
}

// EventFromV2Request converts a typed v2 HTTP request into an Event.
func EventFromV2Request(request events.APIGatewayV2HTTPRequest) (Event, error) {
	return eventFromRequest(request)
}

// ProxyResponse converts the response into the typed v1 envelope.
func (r Response) ProxyResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:        r.StatusCode,
		Headers:           r.Headers,
		MultiValueHeaders: r.MultiValueHeaders,
		Body:              r.Body,
		IsBase64Encoded:   r.IsBase64Encoded,
	}
}

// V2Response converts the response into the typed v2 envelope.
func (r Response) V2Response() events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode:      r.StatusCode,
		Headers:         r.Headers,
		Cookies:         r.Cookies,
		Body:            r.Body,
		IsBase64Encoded: r.IsBase64Encoded,
	}
}
