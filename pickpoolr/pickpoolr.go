// Package pickpoolr serves the pick-poolr weekly bet records and season
// totals.
package pickpoolr

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vsnandy/sportsproxy/proxy"
	"github.com/vsnandy/sportsproxy/store"
)

const (
	recordExists   = "Record already exists"
	recordNotFound = "Record not found"
	recordMissing  = "Record does not exist"
)

// Service serves the /pick-poolr routes.
type Service struct {
	Store BetStore

	// Now is stubbed in tests.
	Now func() time.Time
}

// Register adds every pick-poolr route to router.
func (s *Service) Register(router *proxy.Router) {
	router.GET("/pick-poolr/bets", proxy.JSON(s.getBet))
	router.POST("/pick-poolr/bets", proxy.JSON(s.createBet))
	router.PATCH("/pick-poolr/bets", proxy.JSON(s.updateBet))
	router.DELETE("/pick-poolr/bets", proxy.JSON(s.deleteBet))
	router.PATCH("/pick-poolr/bets/props", proxy.JSON(s.appendProps))
	router.GET("/pick-poolr/bets/check-outcome", proxy.JSON(s.checkOutcome))
	router.GET("/pick-poolr/bets/all", proxy.JSON(s.allBets))
	router.GET("/pick-poolr/bettor", proxy.JSON(s.bettorRecords))
	router.GET("/pick-poolr/totals", proxy.JSON(s.getTotal))
	router.POST("/pick-poolr/totals", proxy.JSON(s.createTotal))
}

func (s *Service) timestamp() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// storeError maps a failed key condition onto message, anything else is
// passed on as a server error.
func storeError(err error, conflict func(string) error, message string, op string) error {
	if store.IsConditionFailed(err) {
		return conflict(message)
	}
	return errors.Wrapf(err, "failed to %s", op)
}

type betKeyBody struct {
	Bettor string           `json:"bettor"`
	Week   proxy.FlexString `json:"week"`
}

func (b betKeyBody) require() error {
	return proxy.Require("request body",
		proxy.Field{Name: "bettor", Value: b.Bettor},
		proxy.Field{Name: "week", Value: b.Week.String()},
	)
}

type createBetBody struct {
	betKeyBody
	Name      string      `json:"name"`
	Props     Props       `json:"props"`
	TotalOdds interface{} `json:"total_odds"`
}

type updateBetBody struct {
	betKeyBody
	Props     Props       `json:"props"`
	TotalOdds interface{} `json:"total_odds"`
	Status    Status      `json:"status"`
}

func (s *Service) getBet(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("bettor", "week"); err != nil {
		return nil, err
	}

	record, err := s.Store.GetBet(ctx.Context, ctx.Params["bettor"], ctx.Params["week"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bet record")
	}
	if record == nil {
		return nil, proxy.NewNotFoundError(recordNotFound)
	}
	return record, nil
}

func (s *Service) createBet(ctx *proxy.RouteContext) (interface{}, error) {
	var body createBetBody
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := proxy.Require("request body",
		proxy.Field{Name: "bettor", Value: body.Bettor},
		proxy.Field{Name: "week", Value: body.Week.String()},
		proxy.Field{Name: "name", Value: body.Name},
	); err != nil {
		return nil, err
	}

	if body.TotalOdds == nil {
		body.TotalOdds = 0
	}

	now := s.timestamp()
	record := &BetRecord{
		PK:        BettorKey(body.Bettor),
		SK:        WeekKey(body.Week.String()),
		Bettor:    body.Bettor,
		Name:      body.Name,
		Week:      body.Week.String(),
		Props:     body.Props.stamp(true),
		TotalOdds: body.TotalOdds,
		Status:    Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	zerolog.Ctx(ctx.Context).Info().Str("pk", record.PK).Str("sk", record.SK).Msg("creating bet record")

	if err := s.Store.CreateBet(ctx.Context, record); err != nil {
		return nil, storeError(err, proxy.NewConflictError, recordExists, "create bet record")
	}
	return record, nil
}

func (s *Service) updateBet(ctx *proxy.RouteContext) (interface{}, error) {
	var body updateBetBody
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := body.require(); err != nil {
		return nil, err
	}

	if body.Status != "" && !body.Status.Valid() {
		return nil, proxy.NewValidationError("'status' must be one of PENDING, WON, LOST")
	}

	change := BetChange{
		Props:     body.Props.stamp(false),
		TotalOdds: body.TotalOdds,
		Status:    body.Status,
		UpdatedAt: s.timestamp(),
	}

	record, err := s.Store.UpdateBet(ctx.Context, body.Bettor, body.Week.String(), change)
	if err != nil {
		return nil, storeError(err, proxy.NewNotFoundError, recordMissing, "update bet record")
	}
	return record, nil
}

func (s *Service) appendProps(ctx *proxy.RouteContext) (interface{}, error) {
	var body updateBetBody
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := body.require(); err != nil {
		return nil, err
	}

	if len(body.Props) == 0 {
		return nil, proxy.NewValidationError("Missing 'props' in request body")
	}

	change := BetChange{
		Props:       body.Props.stamp(false),
		AppendProps: true,
		UpdatedAt:   s.timestamp(),
	}

	record, err := s.Store.UpdateBet(ctx.Context, body.Bettor, body.Week.String(), change)
	if err != nil {
		return nil, storeError(err, proxy.NewNotFoundError, recordMissing, "append bet props")
	}
	return record, nil
}

func (s *Service) deleteBet(ctx *proxy.RouteContext) (interface{}, error) {
	var body betKeyBody
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := body.require(); err != nil {
		return nil, err
	}

	record, err := s.Store.DeleteBet(ctx.Context, body.Bettor, body.Week.String())
	if err != nil {
		return nil, storeError(err, proxy.NewNotFoundError, recordNotFound, "delete bet record")
	}
	return record, nil
}

type propOutcome struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

func (s *Service) checkOutcome(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("bettor", "week"); err != nil {
		return nil, err
	}

	record, err := s.Store.GetBet(ctx.Context, ctx.Params["bettor"], ctx.Params["week"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bet record")
	}
	if record == nil {
		return nil, proxy.NewNotFoundError(recordNotFound)
	}

	outcomes := make([]propOutcome, 0, len(record.Props))
	counts := map[Status]int{}
	for _, prop := range record.Props {
		status := prop.Status()
		if !status.Valid() {
			status = Pending
		}
		counts[status]++
		outcomes = append(outcomes, propOutcome{ID: prop.ID(), Status: status})
	}

	return map[string]interface{}{
		"bettor":  record.Bettor,
		"week":    record.Week,
		"status":  record.Props.Outcome(),
		"won":     counts[Won],
		"lost":    counts[Lost],
		"pending": counts[Pending],
		"props":   outcomes,
	}, nil
}

func (s *Service) allBets(ctx *proxy.RouteContext) (interface{}, error) {
	week := ctx.Param("week", "")

	records, err := s.Store.ListBets(ctx.Context, week)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bet records")
	}

	zerolog.Ctx(ctx.Context).Info().Str("week", week).Int("records", len(records)).Msg("listed bet records")

	return map[string]interface{}{
		"count": len(records),
		"bets":  records,
	}, nil
}

func (s *Service) bettorRecords(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("bettor"); err != nil {
		return nil, err
	}

	bettor := ctx.Params["bettor"]
	records, err := s.Store.BettorRecords(ctx.Context, bettor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query bettor records")
	}

	return map[string]interface{}{
		"bettor":  bettor,
		"count":   len(records),
		"records": records,
	}, nil
}

func (s *Service) getTotal(ctx *proxy.RouteContext) (interface{}, error) {
	if err := ctx.Require("bettor", "year"); err != nil {
		return nil, err
	}

	total, err := s.Store.GetTotal(ctx.Context, ctx.Params["bettor"], ctx.Params["year"])
	if err != nil {
		return nil, errors.Wrap(err, "failed to get season total")
	}
	if total == nil {
		return nil, proxy.NewNotFoundError(recordNotFound)
	}
	return total, nil
}

type createTotalBody struct {
	Bettor    string           `json:"bettor"`
	Year      proxy.FlexString `json:"year"`
	Name      string           `json:"name"`
	Won       int              `json:"won"`
	Lost      int              `json:"lost"`
	Pending   int              `json:"pending"`
	TotalOdds interface{}      `json:"total_odds"`
}

func (s *Service) createTotal(ctx *proxy.RouteContext) (interface{}, error) {
	var body createTotalBody
	if err := ctx.DecodeBody(&body); err != nil {
		return nil, err
	}

	if err := proxy.Require("request body",
		proxy.Field{Name: "bettor", Value: body.Bettor},
		proxy.Field{Name: "year", Value: body.Year.String()},
		proxy.Field{Name: "name", Value: body.Name},
	); err != nil {
		return nil, err
	}

	if body.Won < 0 || body.Lost < 0 || body.Pending < 0 {
		return nil, proxy.NewValidationError("'won', 'lost' and 'pending' cannot be negative")
	}

	if body.TotalOdds == nil {
		body.TotalOdds = 0
	}

	now := s.timestamp()
	total := &SeasonTotal{
		PK:        BettorKey(body.Bettor),
		SK:        TotalKey(body.Year.String()),
		Bettor:    body.Bettor,
		Name:      body.Name,
		Year:      body.Year.String(),
		Won:       body.Won,
		Lost:      body.Lost,
		Pending:   body.Pending,
		TotalOdds: body.TotalOdds,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.CreateTotal(ctx.Context, total); err != nil {
		return nil, storeError(err, proxy.NewConflictError, recordExists, "create season total")
	}
	return total, nil
}
