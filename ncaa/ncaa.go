// Package ncaa proxies the NCAA data feeds and runs the WAPIT March Madness
// draft league: draft picks are kept in DynamoDB, league members are a Cognito
// group and player stats come from the tournament contest feed.
package ncaa

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vsnandy/sportsproxy/directory"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/upstream"
)

const (
	SchoolsURL = "https://www.ncaa.com/json/schools"
	APIURL     = "https://data.ncaa.com/casablanca"
	MMLiveURL  = "https://sdataprod.ncaa.com/"
)

// MemberLister returns the members of a league group.
type MemberLister interface {
	Members(ctx context.Context, group string) ([]directory.Member, error)
}

// Adapter serves the /ncaa routes.
type Adapter struct {
	Getter  upstream.Getter
	Draft   DraftStore
	Members MemberLister

	// Now is stubbed in tests.
	Now func() time.Time
}

// Register adds every NCAA route to router.
func (a *Adapter) Register(router *proxy.Router) {
	router.GET("/ncaa/schools", proxy.JSON(a.schools))
	router.GET("/ncaa/schedule", proxy.JSON(a.schedule))
	router.GET("/ncaa/scoreboard", proxy.JSON(a.scoreboard))
	router.GET("/ncaa/game", proxy.JSON(a.game))

	router.GET("/ncaa/wapit/players", proxy.JSON(a.wapitPlayers))
	router.GET("/ncaa/wapit/stats/player", proxy.JSON(a.wapitPlayerStats))
	router.GET("/ncaa/wapit/stats/league", proxy.JSON(a.wapitLeagueStats))
	router.GET("/ncaa/wapit/league", proxy.JSON(a.getLeague))
	router.POST("/ncaa/wapit/league", proxy.JSON(a.postDraft))
	router.GET("/ncaa/wapit/league/members", proxy.JSON(a.leagueMembers))
}

func (a *Adapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Adapter) fetch(ctx *proxy.RouteContext, rawURL string) ([]byte, error) {
	doc, err := a.Getter.GetJSON(ctx.Context, rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "ncaa %s", ctx.Request.RawPath)
	}
	return doc, nil
}

func (a *Adapter) schools(ctx *proxy.RouteContext) (interface{}, error) {
	doc, err := a.fetch(ctx, SchoolsURL)
	if err != nil {
		return nil, err
	}
	return upstream.Wrap("schools", doc), nil
}

func (a *Adapter) schedule(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("sport", "division", "year", "month"); err != nil {
		return nil, err
	}

	doc, err := a.fetch(ctx, fmt.Sprintf("%s/schedule/%s/%s/%s/%s/schedule-all-conf.json", APIURL,
		url.PathEscape(ctx.Params["sport"]), url.PathEscape(ctx.Params["division"]),
		url.PathEscape(ctx.Params["year"]), url.PathEscape(ctx.Params["month"])))
	if err != nil {
		return nil, err
	}
	return upstream.Wrap("schedule", doc), nil
}

func (a *Adapter) scoreboard(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("sport", "division", "date"); err != nil {
		return nil, err
	}

	date, err := scoreboardDate(ctx.Params["date"])
	if err != nil {
		return nil, err
	}

	doc, err := a.fetch(ctx, fmt.Sprintf("%s/scoreboard/%s/%s/%s/scoreboard.json", APIURL,
		url.PathEscape(ctx.Params["sport"]), url.PathEscape(ctx.Params["division"]), date))
	if err != nil {
		return nil, err
	}
	return upstream.Wrap("scoreboard", doc), nil
}

// scoreboardDate accepts YYYY/MM/DD or YYYY-MM-DD and returns the path form.
func scoreboardDate(date string) (string, error) {
	parts := strings.FieldsFunc(date, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return "", proxy.NewValidationError("'date' must be formatted YYYY/MM/DD")
	}

	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/"), nil
}

func (a *Adapter) game(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("game_id"); err != nil {
		return nil, err
	}

	doc, err := a.fetch(ctx, fmt.Sprintf("%s/game/%s/%s.json", APIURL,
		url.PathEscape(ctx.Params["game_id"]), url.PathEscape(ctx.Param("page", "boxscore"))))
	if err != nil {
		return nil, err
	}
	return upstream.Wrap("page", doc), nil
}
