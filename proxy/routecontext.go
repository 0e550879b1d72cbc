package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteContext contains all the request information for a route when matched.
type RouteContext struct {
	Context context.Context
	Request events.APIGatewayV2HTTPRequest
	Params  map[string]string

	headers map[string]string
}

// Body returns a string representation of the request body
func (ctx *RouteContext) Body() (string, error) {
	if ctx.Request.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(ctx.Request.Body)
		if err != nil {
			return "", errors.Wrapf(err, "unable to decode request body for %s", ctx.Request.RawPath)
		}

		return string(b), nil
	}

	return ctx.Request.Body, nil
}

// DecodeBody unmarshals the JSON request body into v. An empty body decodes as
// "{}" so that required field checks report what is missing instead of a
// parse failure.
func (ctx *RouteContext) DecodeBody(v interface{}) error {
	body, err := ctx.Body()
	if err != nil {
		return NewValidationError("Request body could not be decoded")
	}

	if strings.TrimSpace(body) == "" {
		body = "{}"
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return NewValidationError("Request body must be valid JSON")
	}

	return nil
}

// Param returns the query string parameter name, or def when it is absent or
// empty.
func (ctx *RouteContext) Param(name string, def string) string {
	if v, ok := ctx.Params[name]; ok && v != "" {
		return v
	}
	return def
}

// Require checks that every named query string parameter is present.
func (ctx *RouteContext) Require(names ...string) error {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Value: ctx.Params[name]})
	}
	return Require("query string", fields...)
}

// Respond builds the response envelope using the router's headers.
func (ctx *RouteContext) Respond(status int, body interface{}) (events.APIGatewayProxyResponse, error) {
	return Respond(status, ctx.headers, body)
}

// Field is a named input value checked by Require.
type Field struct {
	Name  string
	Value string
}

// Require returns a ValidationError naming every field with an empty value.
// source describes where the fields were read from.
func Require(source string, fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, "'"+f.Name+"'")
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return NewValidationError("Missing " + strings.Join(missing, ", ") + " in " + source)
}

// FlexString decodes a JSON string or number into its string form. Clients
// send week and year values either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrap(err, "expected a string or a number")
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
