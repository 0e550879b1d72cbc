package espn

import "fmt"

var sportLeague = []string{"sport", "league"}

// sportLeagueWith returns sport and league followed by names.
func sportLeagueWith(names ...string) []string {
	return append(append([]string{}, sportLeague...), names...)
}

var footballDefaults = map[string]string{"sport": "football", "league": "college-football"}

var endpoints = []endpoint{
	{
		path:     "/espn/athletes",
		defaults: map[string]string{"sport": "football", "league": "college-football", "limit": "100", "page": "1"},
		url: func(p params) string {
			return fmt.Sprintf("%s/v3/sports/%s/%s/athletes?limit=%s&page=%s",
				SportsURL, p.path("sport"), p.path("league"), p.query("limit"), p.query("page"))
		},
		shape: shapeAthletes,
	},
	{
		path:     "/espn/teams",
		defaults: footballDefaults,
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/teams", SiteURL, p.path("sport"), p.path("league"))
		},
		shape: shapeTeams,
	},
	{
		path:     "/espn/site/team",
		required: sportLeagueWith("id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/teams/%s", SiteURL, p.path("sport"), p.path("league"), p.path("id"))
		},
	},
	{
		path:     "/espn/core/team",
		required: sportLeagueWith("year", "id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/teams/%s",
				SportsURL, p.path("sport"), p.path("league"), p.path("year"), p.path("id"))
		},
	},
	{
		path:     "/espn/site/scoreboard",
		defaults: map[string]string{"sport": "football", "league": "college-football", "week": ""},
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/scoreboard?week=%s",
				SiteURL, p.path("sport"), p.path("league"), p.query("week"))
		},
	},
	{
		path:     "/espn/cdn/scoreboard",
		defaults: map[string]string{"league": "college-football", "limit": "10"},
		url: func(p params) string {
			return fmt.Sprintf("%s/core/%s/scoreboard?xhr=1&limit=%s", CDNURL, p.path("league"), p.query("limit"))
		},
	},
	{
		path:     "/espn/athlete",
		required: sportLeagueWith("id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/common/v3/sports/%s/%s/athletes/%s",
				SiteWebURL, p.path("sport"), p.path("league"), p.path("id"))
		},
	},
	{
		path:     "/espn/cdn/schedule",
		required: []string{"year", "week"},
		url: func(p params) string {
			return fmt.Sprintf("%s/core/nfl/schedule?year=%s&week=%s&xhr=1", CDNURL, p.query("year"), p.query("week"))
		},
	},
	{
		path:     "/espn/site/standings",
		required: sportLeagueWith("season"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/standings?season=%s",
				SiteURL, p.path("sport"), p.path("league"), p.query("season"))
		},
	},
	{
		path: "/espn/cdn/standings",
		url: func(p params) string {
			return CDNURL + "/core/nfl/standings?xhr=1"
		},
	},
	{
		path:     "/espn/conference-standings",
		required: sportLeagueWith("season", "season_type", "id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/types/%s/groups/%s/standings/0",
				SportsURL, p.path("sport"), p.path("league"), p.path("season"), p.path("season_type"), p.path("id"))
		},
	},
	{
		path:     "/espn/team/roster",
		required: sportLeagueWith("id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/teams/%s/roster",
				SiteURL, p.path("sport"), p.path("league"), p.path("id"))
		},
	},
	{
		path:     "/espn/team/schedule",
		required: sportLeagueWith("id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/teams/%s/schedule",
				SiteURL, p.path("sport"), p.path("league"), p.path("id"))
		},
	},
	{
		path:     "/espn/team/injuries",
		required: sportLeagueWith("id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/teams/%s/injuries",
				SportsURL, p.path("sport"), p.path("league"), p.path("id"))
		},
	},
	{
		path:     "/espn/team/depth-chart",
		required: sportLeagueWith("year", "id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/teams/%s/depthcharts",
				SportsURL, p.path("sport"), p.path("league"), p.path("year"), p.path("id"))
		},
	},
	athleteView("overview"),
	athleteView("gamelog"),
	{
		path:     "/espn/athlete/eventlog",
		required: sportLeagueWith("year", "ath_id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/athletes/%s/eventlog",
				SportsURL, p.path("sport"), p.path("league"), p.path("year"), p.path("ath_id"))
		},
	},
	athleteView("splits"),
	{
		path:     "/espn/game/summary",
		required: sportLeagueWith("event_id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/summary?event=%s",
				SiteURL, p.path("sport"), p.path("league"), p.query("event_id"))
		},
	},
	{
		path:     "/espn/game/boxscore",
		required: []string{"event_id"},
		url: func(p params) string {
			return fmt.Sprintf("%s/core/nfl/boxscore?xhr=1&gameId=%s", CDNURL, p.query("event_id"))
		},
	},
	{
		path:     "/espn/game/playbyplay",
		required: []string{"event_id"},
		url: func(p params) string {
			return fmt.Sprintf("%s/core/nfl/playbyplay?xhr=1&gameId=%s", CDNURL, p.query("event_id"))
		},
	},
	{
		path:     "/espn/game/plays",
		required: sportLeagueWith("event_id"),
		defaults: map[string]string{"limit": ""},
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/events/%s/competitions/%s/plays?limit=%s",
				SportsURL, p.path("sport"), p.path("league"), p.path("event_id"), p.path("event_id"), p.query("limit"))
		},
	},
	{
		path:     "/espn/game/drives",
		required: sportLeagueWith("event_id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/events/%s/competitions/%s/drives",
				SportsURL, p.path("sport"), p.path("league"), p.path("event_id"), p.path("event_id"))
		},
	},
	{
		path:     "/espn/site/leaders",
		required: sportLeague,
		defaults: map[string]string{"season": "", "season_type": ""},
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v3/sports/%s/%s/leaders?season=%s&seasontype=%s",
				SiteURL, p.path("sport"), p.path("league"), p.query("season"), p.query("season_type"))
		},
	},
	{
		path:     "/espn/core/leaders",
		required: sportLeagueWith("season", "season_type"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/types/%s/leaders",
				SportsURL, p.path("sport"), p.path("league"), p.path("season"), p.path("season_type"))
		},
	},
	{
		path:     "/espn/draft",
		required: sportLeagueWith("season"),
		url: func(p params) string {
			return fmt.Sprintf("%s/v2/sports/%s/leagues/%s/seasons/%s/draft",
				SportsURL, p.path("sport"), p.path("league"), p.path("season"))
		},
	},
	{
		path:     "/espn/team/news",
		required: sportLeagueWith("team_id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/sports/%s/%s/news?team=%s",
				SiteURL, p.path("sport"), p.path("league"), p.query("team_id"))
		},
	},
	{
		path:     "/espn/specific-nights",
		required: []string{"night"},
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/site/v2/%snightfootball", SiteURL, p.path("night"))
		},
	},
}

// athleteView is one of the site web athlete pages keyed by ath_id.
func athleteView(view string) endpoint {
	return endpoint{
		path:     "/espn/athlete/" + view,
		required: sportLeagueWith("ath_id"),
		url: func(p params) string {
			return fmt.Sprintf("%s/apis/common/v3/sports/%s/%s/athletes/%s/%s",
				SiteWebURL, p.path("sport"), p.path("league"), p.path("ath_id"), view)
		},
	}
}
