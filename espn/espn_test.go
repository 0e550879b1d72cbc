package espn

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/upstream"
)

type fakeGetter struct {
	doc  string
	err  error
	urls []string
}

func (g *fakeGetter) GetJSON(_ context.Context, rawURL string) ([]byte, error) {
	g.urls = append(g.urls, rawURL)
	if g.err != nil {
		return nil, g.err
	}
	return []byte(g.doc), nil
}

func testRequest(path string, query map[string]string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath:               path,
		QueryStringParameters: query,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "GET", Path: path},
		},
	}
}

func newRouter(getter upstream.Getter) *proxy.Router {
	router := proxy.NewRouter("")
	Register(router, getter)
	return router
}

func errorMessage(t *testing.T, response events.APIGatewayProxyResponse) string {
	t.Helper()

	var body proxy.ErrorBody
	require.NoError(t, json.Unmarshal([]byte(response.Body), &body))
	return body.Message
}

func TestRegister(t *testing.T) {
	router := newRouter(&fakeGetter{})

	assert.True(t, router.Valid())
	assert.Len(t, router.Routes(), len(endpoints))

	for _, e := range endpoints {
		_, ok := router.Lookup("GET", e.path)
		assert.True(t, ok, e.path)
	}
}

func TestEndpoints_url(t *testing.T) {
	cases := []struct {
		path  string
		query map[string]string
		url   string
	}{
		{"/espn/athletes", nil, SportsURL + "/v3/sports/football/college-football/athletes?limit=100&page=1"},
		{"/espn/athletes", map[string]string{"sport": "basketball", "league": "nba", "limit": "25", "page": "3"},
			SportsURL + "/v3/sports/basketball/nba/athletes?limit=25&page=3"},
		{"/espn/teams", nil, SiteURL + "/apis/site/v2/sports/football/college-football/teams"},
		{"/espn/site/team", map[string]string{"sport": "football", "league": "nfl", "id": "12"},
			SiteURL + "/apis/site/v2/sports/football/nfl/teams/12"},
		{"/espn/core/team", map[string]string{"sport": "football", "league": "nfl", "year": "2025", "id": "12"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/teams/12"},
		{"/espn/site/scoreboard", nil, SiteURL + "/apis/site/v2/sports/football/college-football/scoreboard?week="},
		{"/espn/site/scoreboard", map[string]string{"week": "4"}, SiteURL + "/apis/site/v2/sports/football/college-football/scoreboard?week=4"},
		{"/espn/cdn/scoreboard", nil, CDNURL + "/core/college-football/scoreboard?xhr=1&limit=10"},
		{"/espn/athlete", map[string]string{"sport": "football", "league": "nfl", "id": "4241389"},
			SiteWebURL + "/apis/common/v3/sports/football/nfl/athletes/4241389"},
		{"/espn/cdn/schedule", map[string]string{"year": "2025", "week": "2"}, CDNURL + "/core/nfl/schedule?year=2025&week=2&xhr=1"},
		{"/espn/site/standings", map[string]string{"sport": "football", "league": "nfl", "season": "2025"},
			SiteURL + "/apis/site/v2/sports/football/nfl/standings?season=2025"},
		{"/espn/cdn/standings", nil, CDNURL + "/core/nfl/standings?xhr=1"},
		{"/espn/conference-standings", map[string]string{"sport": "football", "league": "nfl", "season": "2025", "season_type": "2", "id": "7"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/types/2/groups/7/standings/0"},
		{"/espn/team/roster", map[string]string{"sport": "football", "league": "nfl", "id": "1"},
			SiteURL + "/apis/site/v2/sports/football/nfl/teams/1/roster"},
		{"/espn/team/schedule", map[string]string{"sport": "football", "league": "nfl", "id": "1"},
			SiteURL + "/apis/site/v2/sports/football/nfl/teams/1/schedule"},
		{"/espn/team/injuries", map[string]string{"sport": "football", "league": "nfl", "id": "1"},
			SportsURL + "/v2/sports/football/leagues/nfl/teams/1/injuries"},
		{"/espn/team/depth-chart", map[string]string{"sport": "football", "league": "nfl", "year": "2025", "id": "1"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/teams/1/depthcharts"},
		{"/espn/athlete/overview", map[string]string{"sport": "football", "league": "nfl", "ath_id": "9"},
			SiteWebURL + "/apis/common/v3/sports/football/nfl/athletes/9/overview"},
		{"/espn/athlete/gamelog", map[string]string{"sport": "football", "league": "nfl", "ath_id": "9"},
			SiteWebURL + "/apis/common/v3/sports/football/nfl/athletes/9/gamelog"},
		{"/espn/athlete/eventlog", map[string]string{"sport": "football", "league": "nfl", "year": "2025", "ath_id": "9"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/athletes/9/eventlog"},
		{"/espn/athlete/splits", map[string]string{"sport": "football", "league": "nfl", "ath_id": "9"},
			SiteWebURL + "/apis/common/v3/sports/football/nfl/athletes/9/splits"},
		{"/espn/game/summary", map[string]string{"sport": "football", "league": "nfl", "event_id": "401"},
			SiteURL + "/apis/site/v2/sports/football/nfl/summary?event=401"},
		{"/espn/game/boxscore", map[string]string{"event_id": "401"}, CDNURL + "/core/nfl/boxscore?xhr=1&gameId=401"},
		{"/espn/game/playbyplay", map[string]string{"event_id": "401"}, CDNURL + "/core/nfl/playbyplay?xhr=1&gameId=401"},
		{"/espn/game/plays", map[string]string{"sport": "football", "league": "nfl", "event_id": "401", "limit": "10"},
			SportsURL + "/v2/sports/football/leagues/nfl/events/401/competitions/401/plays?limit=10"},
		{"/espn/game/drives", map[string]string{"sport": "football", "league": "nfl", "event_id": "401"},
			SportsURL + "/v2/sports/football/leagues/nfl/events/401/competitions/401/drives"},
		{"/espn/site/leaders", map[string]string{"sport": "football", "league": "nfl"},
			SiteURL + "/apis/site/v3/sports/football/nfl/leaders?season=&seasontype="},
		{"/espn/core/leaders", map[string]string{"sport": "football", "league": "nfl", "season": "2025", "season_type": "2"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/types/2/leaders"},
		{"/espn/draft", map[string]string{"sport": "football", "league": "nfl", "season": "2025"},
			SportsURL + "/v2/sports/football/leagues/nfl/seasons/2025/draft"},
		{"/espn/team/news", map[string]string{"sport": "football", "league": "nfl", "team_id": "1"},
			SiteURL + "/apis/site/v2/sports/football/nfl/news?team=1"},
		{"/espn/specific-nights", map[string]string{"night": "monday"}, SiteURL + "/apis/site/v2/mondaynightfootball"},
	}

	for _, c := range cases {
		getter := &fakeGetter{doc: `{"ok":true}`}
		router := newRouter(getter)

		response, err := router.Route(context.Background(), testRequest(c.path, c.query))

		assert.NoError(t, err, c.path)
		if c.path == "/espn/athletes" || c.path == "/espn/teams" {
			assert.Equal(t, 500, response.StatusCode, c.path)
		} else {
			assert.Equal(t, 200, response.StatusCode, c.path)
			assert.JSONEq(t, `{"ok":true}`, response.Body, c.path)
		}
		assert.Equal(t, []string{c.url}, getter.urls, c.path)
	}
}

func TestEndpoints_escapesParams(t *testing.T) {
	getter := &fakeGetter{doc: `{}`}
	router := newRouter(getter)

	query := map[string]string{"sport": "foot/ball", "league": "nfl", "id": "1 2"}
	_, err := router.Route(context.Background(), testRequest("/espn/site/team", query))

	assert.NoError(t, err)
	assert.Equal(t, []string{SiteURL + "/apis/site/v2/sports/foot%2Fball/nfl/teams/1%202"}, getter.urls)
}

func TestEndpoints_missingRequired(t *testing.T) {
	for _, e := range endpoints {
		if len(e.required) == 0 {
			continue
		}

		// every required parameter but the last is supplied
		query := map[string]string{}
		for _, name := range e.required[:len(e.required)-1] {
			query[name] = "x"
		}
		missing := e.required[len(e.required)-1]

		getter := &fakeGetter{doc: `{}`}
		router := newRouter(getter)

		response, err := router.Route(context.Background(), testRequest(e.path, query))

		assert.NoError(t, err, e.path)
		assert.Equal(t, 400, response.StatusCode, e.path)
		assert.Equal(t, "Missing '"+missing+"' in query string", errorMessage(t, response), e.path)
		assert.Empty(t, getter.urls, e.path)
	}
}

func TestEndpoints_emptyRequired(t *testing.T) {
	getter := &fakeGetter{doc: `{}`}
	router := newRouter(getter)

	query := map[string]string{"sport": "", "league": "nfl"}
	response, err := router.Route(context.Background(), testRequest("/espn/athlete", query))

	assert.NoError(t, err)
	assert.Equal(t, 400, response.StatusCode)
	assert.Equal(t, "Missing 'sport', 'id' in query string", errorMessage(t, response))
	assert.Empty(t, getter.urls)
}

func TestAthletes_shape(t *testing.T) {
	getter := &fakeGetter{doc: `{
		"items": [{"$ref": "a"}, {"$ref": "b"}],
		"pageCount": 40,
		"count": 4000,
		"pageIndex": 1,
		"pageSize": 100,
		"$meta": {"parameters": {}}
	}`}
	router := newRouter(getter)

	response, err := router.Route(context.Background(), testRequest("/espn/athletes", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{
		"players": [{"$ref": "a"}, {"$ref": "b"}],
		"pageCount": 40,
		"count": 4000,
		"pageIndex": 1,
		"pageSize": 100
	}`, response.Body)
}

func TestTeams_shape(t *testing.T) {
	getter := &fakeGetter{doc: `{"sports": [{"name": "Football", "leagues": [{"teams": [{"team": {"id": "2"}}]}]}]}`}
	router := newRouter(getter)

	response, err := router.Route(context.Background(), testRequest("/espn/teams", map[string]string{"league": "nfl"}))

	require.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{"teams": [{"team": {"id": "2"}}]}`, response.Body)
}

func TestEndpoint_upstreamFailure(t *testing.T) {
	getter := &fakeGetter{err: &upstream.StatusError{URL: "https://cdn.espn.com", StatusCode: 503}}
	router := newRouter(getter)

	response, err := router.Route(context.Background(), testRequest("/espn/cdn/standings", nil))

	assert.NoError(t, err)
	assert.Equal(t, 500, response.StatusCode)
	assert.Equal(t, proxy.ServerErrorMessage, errorMessage(t, response))
	assert.NotContains(t, response.Body, "cdn.espn.com")
}

func TestEndpoint_transportFailure(t *testing.T) {
	getter := &fakeGetter{err: errors.New("dial tcp: i/o timeout")}
	router := newRouter(getter)

	response, err := router.Route(context.Background(), testRequest("/espn/game/boxscore", map[string]string{"event_id": "1"}))

	assert.NoError(t, err)
	assert.Equal(t, 500, response.StatusCode)
	assert.Len(t, getter.urls, 1)
}
