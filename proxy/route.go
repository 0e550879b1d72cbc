package proxy

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteHandler defines the function interface the route uses to execute a
// request when the route is matched.
type RouteHandler func(*RouteContext) (events.APIGatewayProxyResponse, error)

// Route pairs a HttpMethod and an exact path. When both match an incoming
// request the configured handler is called.
//
// Paths are compared verbatim: "/espn/teams/" and "/ESPN/teams" do not match
// "/espn/teams".
type Route struct {
	Method  HttpMethod
	Path    string
	Handler RouteHandler
}

// NewRoute returns a Route for the specified method, path and handler.
func NewRoute(method HttpMethod, path string, handler RouteHandler) (*Route, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, errors.Errorf("route path '%s' must start with '/'", path)
	}

	if strings.ContainsAny(path, " ?#") {
		return nil, errors.Errorf("route path '%s' contains an illegal character", path)
	}

	if handler == nil {
		return nil, errors.Errorf("route '%s %s' has no handler", method, path)
	}

	return &Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	}, nil
}

// routeKey is the lookup key used by the router table.
func routeKey(method string, path string) string {
	return method + " " + path
}

// Key returns the router table key for this route.
func (route *Route) Key() string {
	return routeKey(route.Method.String(), route.Path)
}

// String returns a string representation of this route.
func (route *Route) String() string {
	return fmt.Sprintf("%s %s", route.Method, route.Path)
}

// Context constructs a RouteContext for the route for passing to the handler.
func (route *Route) Context(ctx context.Context, request events.APIGatewayV2HTTPRequest, headers map[string]string) *RouteContext {
	params := make(map[string]string, len(request.QueryStringParameters))
	for k, v := range request.QueryStringParameters {
		params[k] = v
	}

	return &RouteContext{
		Context: ctx,
		Request: request,
		Params:  params,
		headers: headers,
	}
}

// Follow builds the route context for the given request and executes the
// route's handler function.
func (route *Route) Follow(ctx context.Context, request events.APIGatewayV2HTTPRequest, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	return route.Handler(route.Context(ctx, request, headers))
}
