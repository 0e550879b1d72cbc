package ncaa

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/store"
)

// DraftPartitionKey is the hash key of the draft table.
const DraftPartitionKey = "LeagueID"

// DraftPick is one pick of a league draft.
type DraftPick struct {
	LeagueID   string           `json:"LeagueID" dynamodbav:"LeagueID"`
	PickNumber int              `json:"PickNumber" dynamodbav:"PickNumber"`
	TeamID     string           `json:"TeamID" dynamodbav:"TeamID"`
	PlayerID   proxy.FlexString `json:"PlayerID" dynamodbav:"PlayerID"`
	PlayerName string           `json:"PlayerName" dynamodbav:"PlayerName"`
	Position   string           `json:"Position,omitempty" dynamodbav:"Position,omitempty"`
	School     string           `json:"School,omitempty" dynamodbav:"School,omitempty"`
	Number     proxy.FlexString `json:"Number,omitempty" dynamodbav:"Number,omitempty"`
	PickedAt   string           `json:"PickedAt" dynamodbav:"PickedAt"`
}

// TeamPicks is one team's roster in draft order.
type TeamPicks struct {
	TeamID string      `json:"teamId"`
	Picks  []DraftPick `json:"picks"`
}

// DraftStore persists draft picks.
type DraftStore interface {
	PutPicks(ctx context.Context, picks []DraftPick) error
	Picks(ctx context.Context, leagueID string) ([]DraftPick, error)
}

// DynamoDraft is the DynamoDB backed DraftStore.
type DynamoDraft struct {
	Table *store.Table
}

// PutPicks writes picks, failing with store.ErrConditionFailed if any pick of
// a chunk was already made.
func (d *DynamoDraft) PutPicks(ctx context.Context, picks []DraftPick) error {
	items := make([]interface{}, len(picks))
	for i := range picks {
		items[i] = picks[i]
	}
	return d.Table.CreateAll(ctx, items)
}

// Picks returns every pick of leagueID.
func (d *DynamoDraft) Picks(ctx context.Context, leagueID string) ([]DraftPick, error) {
	var picks []DraftPick
	keyCond := expression.Key(DraftPartitionKey).Equal(expression.Value(leagueID))
	if err := d.Table.QueryAll(ctx, keyCond, &picks); err != nil {
		return nil, err
	}
	return picks, nil
}

// LeagueID is the draft partition of league in year.
func LeagueID(league string, year string) string {
	return strings.ToUpper(league) + year
}

// GroupByTeam orders picks by TeamID and splits them into one group per team.
// Picks of the same team keep their relative order.
func GroupByTeam(picks []DraftPick) []TeamPicks {
	sorted := make([]DraftPick, len(picks))
	copy(sorted, picks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TeamID < sorted[j].TeamID
	})

	teams := []TeamPicks{}
	for _, pick := range sorted {
		if n := len(teams); n > 0 && teams[n-1].TeamID == pick.TeamID {
			teams[n-1].Picks = append(teams[n-1].Picks, pick)
			continue
		}
		teams = append(teams, TeamPicks{TeamID: pick.TeamID, Picks: []DraftPick{pick}})
	}
	return teams
}

type draftRequest struct {
	League string           `json:"league"`
	Year   proxy.FlexString `json:"year"`
	Picks  []DraftPick      `json:"picks"`
}

func (a *Adapter) postDraft(ctx *proxy.RouteContext) (interface{}, error) {
	var body draftRequest
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := proxy.Require("request body",
		proxy.Field{Name: "league", Value: body.League},
		proxy.Field{Name: "year", Value: body.Year.String()},
	); err != nil {
		return nil, err
	}

	if len(body.Picks) == 0 {
		return nil, proxy.NewValidationError("Missing 'picks' in request body")
	}

	leagueID := LeagueID(body.League, body.Year.String())
	pickedAt := a.now().UTC().Format(time.RFC3339)

	seen := make(map[int]bool, len(body.Picks))
	picks := make([]DraftPick, 0, len(body.Picks))
	for i, pick := range body.Picks {
		if pick.PickNumber < 1 {
			return nil, proxy.NewValidationError("Pick " + strconv.Itoa(i) + " has no 'PickNumber'")
		}
		if seen[pick.PickNumber] {
			return nil, proxy.NewValidationError("Pick number " + strconv.Itoa(pick.PickNumber) + " appears more than once")
		}
		if strings.TrimSpace(pick.TeamID) == "" || strings.TrimSpace(pick.PlayerName) == "" {
			return nil, proxy.NewValidationError("Pick " + strconv.Itoa(pick.PickNumber) + " needs a 'TeamID' and a 'PlayerName'")
		}
		seen[pick.PickNumber] = true

		pick.LeagueID = leagueID
		pick.PickedAt = pickedAt
		picks = append(picks, pick)
	}

	if err := a.Draft.PutPicks(ctx.Context, picks); err != nil {
		if store.IsConditionFailed(err) {
			zerolog.Ctx(ctx.Context).Warn().Err(err).Str("league", leagueID).Msg("draft pick already made")
			return nil, proxy.NewConflictError("Draft pick already exists")
		}
		return nil, errors.Wrapf(err, "failed saving draft for %s", leagueID)
	}

	zerolog.Ctx(ctx.Context).Info().Str("league", leagueID).Int("picks", len(picks)).Msg("draft saved")

	return map[string]interface{}{
		"league": leagueID,
		"picks":  len(picks),
	}, nil
}

// leaguePicks loads the draft for the league and year query parameters.
func (a *Adapter) leaguePicks(ctx *proxy.RouteContext) (string, []DraftPick, error) {
	if err := ctx.Require("league", "year"); err != nil {
		return "", nil, err
	}

	leagueID := LeagueID(ctx.Params["league"], ctx.Params["year"])
	picks, err := a.Draft.Picks(ctx.Context, leagueID)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed loading draft for %s", leagueID)
	}

	if len(picks) == 0 {
		return "", nil, proxy.NewNotFoundError("No draft found for league " + leagueID)
	}

	return leagueID, picks, nil
}

func (a *Adapter) getLeague(ctx *proxy.RouteContext) (interface{}, error) {
	leagueID, picks, err := a.leaguePicks(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"league": leagueID,
		"teams":  GroupByTeam(picks),
	}, nil
}

type pickStats struct {
	DraftPick
	Stats []map[string]interface{} `json:"stats"`
}

type teamStats struct {
	TeamID string      `json:"teamId"`
	Picks  []pickStats `json:"picks"`
}

func (a *Adapter) wapitLeagueStats(ctx *proxy.RouteContext) (interface{}, error) {
	leagueID, picks, err := a.leaguePicks(ctx)
	if err != nil {
		return nil, err
	}

	year, err := parseYear(ctx.Params["year"])
	if err != nil {
		return nil, err
	}

	contests, err := a.contests(ctx, year)
	if err != nil {
		return nil, err
	}

	teams := []teamStats{}
	for _, team := range GroupByTeam(picks) {
		ts := teamStats{TeamID: team.TeamID, Picks: make([]pickStats, 0, len(team.Picks))}
		for _, pick := range team.Picks {
			games := []map[string]interface{}{}
			if number, err := strconv.Atoi(pick.Number.String()); err == nil {
				games = playerGames(contests, pick.PlayerName, number, pick.School)
			} else {
				zerolog.Ctx(ctx.Context).Warn().
					Str("league", leagueID).
					Int("pick", pick.PickNumber).
					Str("player", pick.PlayerName).
					Str("number", pick.Number.String()).
					Msg("draft pick has no usable number, skipping stats")
			}
			ts.Picks = append(ts.Picks, pickStats{DraftPick: pick, Stats: games})
		}
		teams = append(teams, ts)
	}

	return map[string]interface{}{
		"league": leagueID,
		"teams":  teams,
	}, nil
}

func (a *Adapter) leagueMembers(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("league"); err != nil {
		return nil, err
	}

	league := ctx.Params["league"]
	members, err := a.Members.Members(ctx.Context, league)
	if err != nil {
		return nil, errors.Wrapf(err, "failed listing members of %s", league)
	}

	return map[string]interface{}{
		"league":  league,
		"members": members,
	}, nil
}
