package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// DefaultAllowOrigin is the origin allow-list sent when none is configured.
const DefaultAllowOrigin = "https://vsnandy.github.io,http://localhost:3000"

// PreflightBody is the acknowledgement returned for every OPTIONS request.
const PreflightBody = `"Preflight Check Complete"`

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CORSHeaders returns the fixed header set attached to every response.
func CORSHeaders(allowOrigin string) map[string]string {
	if allowOrigin == "" {
		allowOrigin = DefaultAllowOrigin
	}

	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  allowOrigin,
		"Access-Control-Allow-Methods": methodList(OPTIONS, POST, GET, DELETE, PATCH),
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
	}
}

// Respond builds a response envelope. Strings and raw JSON are used as the
// body unchanged, everything else is JSON encoded.
func Respond(status int, headers map[string]string, body interface{}) (events.APIGatewayProxyResponse, error) {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}

	response := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    h,
	}

	switch b := body.(type) {
	case nil:
	case string:
		response.Body = b
	case json.RawMessage:
		response.Body = string(b)
	case []byte:
		response.Body = string(b)
	default:
		out, err := json.Marshal(b)
		if err != nil {
			return events.APIGatewayProxyResponse{}, errors.Wrap(err, "failed to marshal response body")
		}
		response.Body = string(out)
	}

	return response, nil
}

// RespondError builds the envelope for err. It never fails: the error body is
// a fixed shape that always marshals.
func RespondError(headers map[string]string, err error) events.APIGatewayProxyResponse {
	status, message := StatusFor(err)
	response, _ := Respond(status, headers, ErrorBody{
		Error:   http.StatusText(status),
		Message: message,
	})
	return response
}
