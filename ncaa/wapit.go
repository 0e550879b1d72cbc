package ncaa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/vsnandy/sportsproxy/proxy"
)

// contestsQueryHash identifies the persisted gamecenter_game_stats_web query.
const contestsQueryHash = "0677d7ecf3cf630d58ed4f221c74908fb4494c12e0dacb70c45190d55accdc74"

// firstRoundNumber is the contest round number of the tournament's first
// round; round 1 is the First Four.
const firstRoundNumber = 2

// gameKeys are the contest fields kept in a player's game log.
var gameKeys = []string{"bracketId", "contestId", "startDate", "broadcaster", "condensedVideo", "location", "region", "round"}

// ContestsURL returns the tournament contest feed for the tournament played in
// year. The feed is keyed by the season's starting year.
func ContestsURL(year int) string {
	return fmt.Sprintf("%s?operationName=gamecenter_game_stats_web"+
		"&variables=%%7B%%22seasonYear%%22:%d%%7D"+
		"&extensions=%%7B%%22persistedQuery%%22:%%7B%%22version%%22:1,%%22sha256Hash%%22:%%22%s%%22%%7D%%7D",
		MMLiveURL, year-1, contestsQueryHash)
}

// NthWeekday returns the nth occurrence (1-based) of day in month of year.
func NthWeekday(year int, month time.Month, day time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(day) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// FirstRound is the first day of the tournament's first round, the third
// Thursday of March.
func FirstRound(year int) time.Time {
	return NthWeekday(year, time.March, time.Thursday, 3)
}

func parseYear(value string) (int, error) {
	year, err := strconv.Atoi(value)
	if err != nil || year < 1 {
		return 0, proxy.NewValidationError("'year' must be a number")
	}
	return year, nil
}

func (a *Adapter) contests(ctx *proxy.RouteContext, year int) ([]gjson.Result, error) {
	doc, err := a.fetch(ctx, ContestsURL(year))
	if err != nil {
		return nil, err
	}

	contests := gjson.GetBytes(doc, "data.mmlContests")
	if !contests.IsArray() {
		return nil, errors.Errorf("contest feed for %d has no data.mmlContests", year)
	}
	return contests.Array(), nil
}

// object copies the members of a JSON object, leaving out the skipped keys.
func object(result gjson.Result, skip ...string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	result.ForEach(func(key, value gjson.Result) bool {
		for _, s := range skip {
			if key.String() == s {
				return true
			}
		}
		out[key.String()] = json.RawMessage(value.Raw)
		return true
	})
	return out
}

// schoolName is the team's nameFull as raw JSON, an empty string when the
// feed has none.
func schoolName(team gjson.Result) json.RawMessage {
	name := team.Get("nameFull")
	if name.Type != gjson.String {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(name.Raw)
}

func playsIn(game gjson.Result, school string) bool {
	for _, team := range game.Get("teams").Array() {
		if team.Get("nameFull").String() == school {
			return true
		}
	}
	return false
}

// playerGames builds the game log of one player from the completed contests of
// their school.
func playerGames(contests []gjson.Result, playerName string, number int, school string) []map[string]interface{} {
	games := []map[string]interface{}{}

	for _, game := range contests {
		if game.Get("gameState").String() != "F" || !playsIn(game, school) {
			continue
		}

		entry := make(map[string]interface{})
		for _, key := range gameKeys {
			if v := game.Get(key); v.Exists() {
				entry[key] = json.RawMessage(v.Raw)
			}
		}

		for _, team := range game.Get("boxscore.teamBoxscore").Array() {
			if team.Get("nameFull").String() != school {
				continue
			}
			for _, player := range team.Get("playerStats").Array() {
				name := player.Get("fname").String() + " " + player.Get("lname").String()
				if player.Get("num").Int() == int64(number) && name == playerName {
					entry["playerStats"] = json.RawMessage(player.Raw)
				}
			}
		}

		for _, team := range game.Get("teams").Array() {
			if team.Get("nameFull").String() == school {
				entry["team"] = object(team, "roster")
			} else {
				entry["opponent"] = object(team, "roster")
			}
		}

		games = append(games, entry)
	}

	return games
}

func (a *Adapter) wapitPlayers(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("year"); err != nil {
		return nil, err
	}

	year, err := parseYear(ctx.Params["year"])
	if err != nil {
		return nil, err
	}

	start := time.Now()

	contests, err := a.contests(ctx, year)
	if err != nil {
		return nil, err
	}

	players := []map[string]json.RawMessage{}
	teams := 0
	for _, game := range contests {
		if game.Get("round.roundNumber").Int() != firstRoundNumber {
			continue
		}

		for _, team := range game.Get("teams").Array() {
			school := schoolName(team)
			for _, player := range team.Get("roster").Array() {
				p := object(player)
				p["school"] = school
				players = append(players, p)
			}
			teams++
		}
	}

	elapsed := time.Since(start)
	zerolog.Ctx(ctx.Context).Info().
		Int("players", len(players)).
		Int("teams", teams).
		Dur("elapsed", elapsed).
		Msg("collected tournament players")

	return map[string]interface{}{
		"timeElapsed": elapsed.Seconds(),
		"firstRound":  FirstRound(year).Format("2006-01-02"),
		"players":     players,
	}, nil
}

func (a *Adapter) wapitPlayerStats(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("id", "player_name", "number", "school"); err != nil {
		return nil, err
	}

	number, err := strconv.Atoi(ctx.Params["number"])
	if err != nil {
		return nil, proxy.NewValidationError("'number' must be a number")
	}

	year, err := parseYear(ctx.Param("year", strconv.Itoa(a.now().Year())))
	if err != nil {
		return nil, err
	}

	start := time.Now()

	contests, err := a.contests(ctx, year)
	if err != nil {
		return nil, err
	}

	name, school := ctx.Params["player_name"], ctx.Params["school"]
	games := playerGames(contests, name, number, school)

	elapsed := time.Since(start)
	zerolog.Ctx(ctx.Context).Info().
		Str("player", name).
		Str("school", school).
		Int("games", len(games)).
		Dur("elapsed", elapsed).
		Msg("collected player games")

	return map[string]interface{}{
		"timeElapsed": elapsed.Seconds(),
		"playerId":    ctx.Params["id"],
		"playerName":  name,
		"number":      ctx.Params["number"],
		"school":      school,
		"stats":       games,
	}, nil
}
