// Package espn proxies the public ESPN APIs. Every route is a single GET whose
// URL is templated from the query string, the response is passed through or
// cut down to a few keys.
package espn

import (
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/upstream"
)

const (
	SportsURL  = "https://sports.core.api.espn.com"
	SiteWebURL = "https://site.web.api.espn.com"
	SiteURL    = "https://site.api.espn.com"
	CDNURL     = "https://cdn.espn.com"
)

// params are the resolved query string values of one request.
type params map[string]string

// path returns the value of name escaped for a URL path segment.
func (p params) path(name string) string {
	return url.PathEscape(p[name])
}

// query returns the value of name escaped for a query string.
func (p params) query(name string) string {
	return url.QueryEscape(p[name])
}

// endpoint describes one ESPN route.
type endpoint struct {
	path     string
	required []string
	defaults map[string]string
	url      func(p params) string
	shape    func(doc []byte) (interface{}, error)
}

// Register adds every ESPN route to router.
func Register(router *proxy.Router, getter upstream.Getter) {
	for _, e := range endpoints {
		router.GET(e.path, proxy.JSON(e.handler(getter)))
	}
}

func (e endpoint) resolve(ctx *proxy.RouteContext) (params, error) {
	if err := ctx.Require(e.required...); err != nil {
		return nil, err
	}

	p := make(params, len(e.defaults)+len(e.required))
	for name, def := range e.defaults {
		p[name] = ctx.Param(name, def)
	}
	for _, name := range e.required {
		p[name] = ctx.Params[name]
	}
	return p, nil
}

func (e endpoint) handler(getter upstream.Getter) proxy.BodyHandler {
	return func(ctx *proxy.RouteContext) (interface{}, error) {
		p, err := e.resolve(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := getter.GetJSON(ctx.Context, e.url(p))
		if err != nil {
			return nil, errors.Wrapf(err, "espn %s", e.path)
		}

		if e.shape == nil {
			return json.RawMessage(doc), nil
		}

		body, err := e.shape(doc)
		if err != nil {
			zerolog.Ctx(ctx.Context).Error().Err(err).Str("route", e.path).Msg("unexpected upstream shape")
			return nil, errors.Wrapf(err, "espn %s", e.path)
		}
		return body, nil
	}
}

func shapeAthletes(doc []byte) (interface{}, error) {
	return upstream.Pick(doc,
		upstream.Field{Key: "players", Path: "items"},
		upstream.Field{Key: "pageCount", Path: "pageCount"},
		upstream.Field{Key: "count", Path: "count"},
		upstream.Field{Key: "pageIndex", Path: "pageIndex"},
		upstream.Field{Key: "pageSize", Path: "pageSize"},
	)
}

func shapeTeams(doc []byte) (interface{}, error) {
	return upstream.Pick(doc, upstream.Field{Key: "teams", Path: "sports.0.leagues.0.teams"})
}
