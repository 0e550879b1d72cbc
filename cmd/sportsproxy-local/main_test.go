package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsnandy/sportsproxy/proxy"
)

func testRouter() (*proxy.Router, error) {
	router := proxy.NewRouter("https://example.org")
	router.GET("/ping", proxy.JSON(func(ctx *proxy.RouteContext) (interface{}, error) {
		return map[string]string{"name": ctx.Param("name", "nobody")}, nil
	}))
	router.POST("/echo", func(ctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
		body, err := ctx.Body()
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		return ctx.Respond(201, body)
	})
	return router, nil
}

func TestEventFromRequest(t *testing.T) {
	request := httptest.NewRequest("GET", "/espn/teams?sport=football&league=nfl&tag=a&tag=b", nil)
	request.Header.Set("Content-Type", "application/json")

	event, err := eventFromRequest(request)

	require.NoError(t, err)
	assert.Equal(t, "/espn/teams", event.RawPath)
	assert.Equal(t, "GET", event.RequestContext.HTTP.Method)
	assert.Equal(t, "football", event.QueryStringParameters["sport"])
	assert.Equal(t, "nfl", event.QueryStringParameters["league"])
	assert.Equal(t, "a,b", event.QueryStringParameters["tag"])
	assert.Equal(t, "application/json", event.Headers["content-type"])
	assert.NotEmpty(t, event.RequestContext.RequestID)
	assert.False(t, event.IsBase64Encoded)
}

func TestEventFromRequest_binaryBody(t *testing.T) {
	payload := []byte{0xff, 0xfe, 0x00}
	request := httptest.NewRequest("POST", "/health", bytes.NewReader(payload))

	event, err := eventFromRequest(request)

	require.NoError(t, err)
	assert.True(t, event.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), event.Body)
	assert.Nil(t, event.QueryStringParameters)
}

func TestWriteResponse(t *testing.T) {
	recorder := httptest.NewRecorder()

	err := writeResponse(recorder, events.APIGatewayProxyResponse{
		StatusCode:        404,
		Headers:           map[string]string{"Content-Type": "application/json"},
		MultiValueHeaders: map[string][]string{"Set-Cookie": {"a=1", "b=2"}},
		Body:              `{"error":"Not Found"}`,
	})

	require.NoError(t, err)
	assert.Equal(t, 404, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, recorder.Header().Values("Set-Cookie"))
	assert.Equal(t, `{"error":"Not Found"}`, recorder.Body.String())
}

func TestWriteResponse_base64(t *testing.T) {
	recorder := httptest.NewRecorder()

	err := writeResponse(recorder, events.APIGatewayProxyResponse{
		StatusCode:      200,
		Body:            base64.StdEncoding.EncodeToString([]byte("raw")),
		IsBase64Encoded: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "raw", recorder.Body.String())
}

func TestHandler(t *testing.T) {
	router, _ := testRouter()
	server := httptest.NewServer(handler(router, zerolog.Nop()))
	defer server.Close()

	response, err := http.Get(server.URL + "/ping?name=vik")
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, "https://example.org", response.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	assert.Equal(t, "vik", body["name"])
}

func TestHandler_postAndNotFound(t *testing.T) {
	router, _ := testRouter()
	h := handler(router, zerolog.Nop())

	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest("POST", "/echo", strings.NewReader("hello")))
	assert.Equal(t, 201, recorder.Code)
	assert.Equal(t, "hello", recorder.Body.String())

	recorder = httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, 404, recorder.Code)
}

func TestInvokeCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd(context.Background(), testRouter)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"invoke", filepath.Join("testdata", "health-event.json")})

	require.NoError(t, cmd.Execute())

	var response events.APIGatewayProxyResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &response))
	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{"name": "vik"}`, response.Body)
}

func TestInvokeCmd_missingEnvFile(t *testing.T) {
	cmd := rootCmd(context.Background(), testRouter)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env", filepath.Join(t.TempDir(), "missing.env"), "invoke", filepath.Join("testdata", "health-event.json")})

	err := cmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing.env")
}

func TestInvokeCmd_badEvent(t *testing.T) {
	cmd := rootCmd(context.Background(), testRouter)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"invoke", filepath.Join("testdata", "does-not-exist.json")})

	assert.Error(t, cmd.Execute())
}
