package proxy

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func testHandler(context *RouteContext) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{StatusCode: 200}, nil
}

func testRequest(method HttpMethod, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method.String(),
				Path:   path,
			},
		},
		Headers: map[string]string{},
	}
}

// fixtureRequest loads testdata/<name>.json as an api gateway v2 event.
func fixtureRequest(t *testing.T, name string) events.APIGatewayV2HTTPRequest {
	t.Helper()

	content, err := os.ReadFile("testdata/" + name + ".json")
	require.NoError(t, err)

	var request events.APIGatewayV2HTTPRequest
	require.NoError(t, json.Unmarshal(content, &request))
	return request
}
