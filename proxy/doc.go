// Package proxy routes aws api gateway v2 (http) events through a lambda. It
// owns the request side (events.APIGatewayV2HTTPRequest wrapped in a
// RouteContext) and the response side (events.APIGatewayProxyResponse built
// with a fixed set of CORS headers) so every adapter funnels through the same
// contract.
//
// Routes are an exact (method, path) lookup. There are no path parameters, all
// inputs arrive through the query string or the request body. OPTIONS requests
// are answered by the router itself regardless of path.
package proxy
