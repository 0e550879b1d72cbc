package proxy

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrorHandler defines the function interface the router uses to handle any
// error that occurs while processing routes.
type ErrorHandler func(context.Context, events.APIGatewayV2HTTPRequest, error) (events.APIGatewayProxyResponse, error)

// CatchAllHandler defines the function interface the router uses to handle any
// request that doesn't match a route.
type CatchAllHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error)

// BodyHandler is the adapter shape most routes use: it returns the value to
// encode as a 200 response body, or an error for the router to map.
type BodyHandler func(*RouteContext) (interface{}, error)

// Router will route an incoming events.APIGatewayV2HTTPRequest to the
// appropriate route and return the events.APIGatewayProxyResponse.
//
// Route matching is a single table lookup on the exact method and raw path.
// OPTIONS requests never reach the table, they are answered with the
// pre-flight acknowledgement and the router's CORS headers.
//
// If the CatchAll handler is set any request that doesn't match a route will be
// handled by it.
//
// If the CatchError handler is set any route that returns an error will first
// be passed into the handler for additional processing.
//
// Example:
//
//	router := proxy.NewRouter(proxy.DefaultAllowOrigin)
//	router.GET("/health", proxy.JSON(func(ctx *proxy.RouteContext) (interface{}, error) {
//		return map[string]string{"status": "OK"}, nil
//	}))
//
//	if !router.Valid() {
//		return router.BuildErrors()
//	}
//
//	lambda.Start(router.Route)
type Router struct {
	Headers    map[string]string
	CatchAll   CatchAllHandler
	CatchError ErrorHandler

	table  map[string]*Route
	errors []error
}

// NewRouter returns a router that answers unmatched requests with a 404
// envelope and maps route errors with DefaultErrorHandler.
func NewRouter(allowOrigin string) *Router {
	router := &Router{Headers: CORSHeaders(allowOrigin)}
	router.AddCatchAllHandler(router.notFound)
	router.AddErrorHandler(router.DefaultErrorHandler)
	return router
}

// Valid returns true if the routers' routes have all been built successfully.
// Otherwise false.
func (router *Router) Valid() bool {
	return len(router.errors) == 0
}

// AddRoute adds route to the lookup table. Registering the same method and
// path twice is a build error.
func (router *Router) AddRoute(route *Route) {
	if router.table == nil {
		router.table = make(map[string]*Route)
	}

	if _, ok := router.table[route.Key()]; ok {
		router.AddBuildError(errors.Errorf("duplicate route '%s'", route))
		return
	}

	router.table[route.Key()] = route
}

// Routes returns the registered routes ordered by path then method.
func (router *Router) Routes() []*Route {
	routes := make([]*Route, 0, len(router.table))
	for _, route := range router.table {
		routes = append(routes, route)
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	return routes
}

// Lookup returns the route registered for method and path, if any.
func (router *Router) Lookup(method string, path string) (*Route, bool) {
	route, ok := router.table[routeKey(method, path)]
	return route, ok
}

// AddBuildError appends an error to the list of router errors.
func (router *Router) AddBuildError(err error) {
	router.errors = append(router.errors, err)
}

// BuildErrors returns a single error that encapsulates all the route errors
// found during router construction.
func (router *Router) BuildErrors() error {
	topError := errors.New("failed building router")

	for _, err := range router.errors {
		topError = errors.Wrap(topError, err.Error())
	}

	return topError
}

// AddRouteIfNoError appends the provided route if no error is present.
// Otherwise it adds the error to the build errors.
//
// This method is provided to simplify router construction with many routes by
// reducing error checking boilerplate.
func (router *Router) AddRouteIfNoError(route *Route, err error) {
	if err != nil {
		router.AddBuildError(err)
	} else {
		router.AddRoute(route)
	}
}

// GET adds a new GET route with the specified path and handler.
func (router *Router) GET(path string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(GET, path, handler))
}

// POST adds a new POST route with the specified path and handler.
func (router *Router) POST(path string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(POST, path, handler))
}

// PATCH adds a new PATCH route with the specified path and handler.
func (router *Router) PATCH(path string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(PATCH, path, handler))
}

// DELETE adds a new DELETE route with the specified path and handler.
func (router *Router) DELETE(path string, handler RouteHandler) {
	router.AddRouteIfNoError(NewRoute(DELETE, path, handler))
}

// AddCatchAllHandler attaches a catchall handler to the router.
func (router *Router) AddCatchAllHandler(handler CatchAllHandler) {
	router.CatchAll = handler
}

// AddErrorHandler attaches a error handler to the router.
func (router *Router) AddErrorHandler(handler ErrorHandler) {
	router.CatchError = handler
}

// Preflight answers an OPTIONS request.
func (router *Router) Preflight() events.APIGatewayProxyResponse {
	response, _ := Respond(http.StatusOK, router.Headers, PreflightBody)
	return response
}

// DefaultErrorHandler logs err and converts it into an error envelope. Only
// typed errors keep their message, everything else becomes "Server error".
func (router *Router) DefaultErrorHandler(ctx context.Context, request events.APIGatewayV2HTTPRequest, err error) (events.APIGatewayProxyResponse, error) {
	response := RespondError(router.Headers, err)

	event := zerolog.Ctx(ctx).Warn()
	if response.StatusCode >= http.StatusInternalServerError {
		event = zerolog.Ctx(ctx).Error()
	}
	event.Err(err).
		Str("method", request.RequestContext.HTTP.Method).
		Str("path", request.RawPath).
		Int("status", response.StatusCode).
		Msg("route failed")

	return response, nil
}

func (router *Router) notFound(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	err := NewNotFoundError(fmt.Sprintf("'%s %s' not found", request.RequestContext.HTTP.Method, request.RawPath))
	zerolog.Ctx(ctx).Info().Err(err).Msg("no route")
	return RespondError(router.Headers, err), nil
}

// routeInternal looks the request up in the route table.
//
// If there is a match it executes the route's handler.
//
// If the catch all handler is set and no route is matched it gets executed.
//
// If there is no catch all handler and no route is matched an error is returned.
func (router *Router) routeInternal(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	method := request.RequestContext.HTTP.Method

	if method == OPTIONS.String() {
		return router.Preflight(), nil
	}

	if route, ok := router.Lookup(method, request.RawPath); ok {
		return route.Follow(ctx, request, router.Headers)
	}

	if router.CatchAll != nil {
		return router.CatchAll(ctx, request)
	}

	return events.APIGatewayProxyResponse{}, fmt.Errorf("'%s %s' not found", method, request.RawPath)
}

// Route dispatches the request.
//
// If there is an error handler set and an error occurs the error handler is
// executed and its result returned.
//
// A panicking handler is answered with the 500 envelope.
func (router *Router) Route(ctx context.Context, request events.APIGatewayV2HTTPRequest) (response events.APIGatewayProxyResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			zerolog.Ctx(ctx).Error().
				Interface("panic", p).
				Str("method", request.RequestContext.HTTP.Method).
				Str("path", request.RawPath).
				Msg("route panicked")
			response, err = RespondError(router.Headers, errors.Errorf("panic: %v", p)), nil
		}
	}()

	zerolog.Ctx(ctx).Info().
		Str("method", request.RequestContext.HTTP.Method).
		Str("path", request.RawPath).
		Msg("routing request")

	if router.CatchError == nil {
		return router.routeInternal(ctx, request)
	}

	response, err = router.routeInternal(ctx, request)

	if err != nil {
		return router.CatchError(ctx, request, err)
	}

	return response, nil
}

// JSON adapts a BodyHandler into a RouteHandler that responds 200 with the
// returned body.
func JSON(handler BodyHandler) RouteHandler {
	return func(ctx *RouteContext) (events.APIGatewayProxyResponse, error) {
		body, err := handler(ctx)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}

		return ctx.Respond(http.StatusOK, body)
	}
}
