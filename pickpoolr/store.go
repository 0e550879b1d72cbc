package pickpoolr

import (
	"context"

	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/vsnandy/sportsproxy/store"
)

// PartitionKey is the hash key of the bets table.
const PartitionKey = "PK"

// BetStore persists bet records and season totals. Creates fail with
// store.ErrConditionFailed when the key is taken, updates and deletes when it
// is absent.
type BetStore interface {
	GetBet(ctx context.Context, bettor string, week string) (*BetRecord, error)
	CreateBet(ctx context.Context, record *BetRecord) error
	UpdateBet(ctx context.Context, bettor string, week string, change BetChange) (*BetRecord, error)
	DeleteBet(ctx context.Context, bettor string, week string) (*BetRecord, error)
	ListBets(ctx context.Context, week string) ([]BetRecord, error)
	BettorRecords(ctx context.Context, bettor string) ([]map[string]interface{}, error)
	GetTotal(ctx context.Context, bettor string, year string) (*SeasonTotal, error)
	CreateTotal(ctx context.Context, total *SeasonTotal) error
}

// DynamoBets is the DynamoDB backed BetStore.
type DynamoBets struct {
	Table *store.Table
}

func betKey(bettor string, week string) store.Key {
	return store.StringKey(map[string]string{"PK": BettorKey(bettor), "SK": WeekKey(week)})
}

func (d *DynamoBets) GetBet(ctx context.Context, bettor string, week string) (*BetRecord, error) {
	var record BetRecord
	found, err := d.Table.Get(ctx, betKey(bettor, week), &record)
	if err != nil || !found {
		return nil, err
	}
	return &record, nil
}

func (d *DynamoBets) CreateBet(ctx context.Context, record *BetRecord) error {
	return d.Table.Create(ctx, record)
}

func (d *DynamoBets) UpdateBet(ctx context.Context, bettor string, week string, change BetChange) (*BetRecord, error) {
	update := expression.Set(expression.Name("updated_at"), expression.Value(change.UpdatedAt))

	if len(change.Props) > 0 {
		if change.AppendProps {
			existing := expression.IfNotExists(expression.Name("props"), expression.Value(Props{}))
			update = update.Set(expression.Name("props"), expression.ListAppend(existing, expression.Value(change.Props)))
		} else {
			update = update.Set(expression.Name("props"), expression.Value(change.Props))
		}
	}

	if change.TotalOdds != nil {
		update = update.Set(expression.Name("total_odds"), expression.Value(change.TotalOdds))
	}

	if change.Status != "" {
		update = update.Set(expression.Name("status"), expression.Value(change.Status))
	}

	var record BetRecord
	if err := d.Table.Update(ctx, betKey(bettor, week), update, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (d *DynamoBets) DeleteBet(ctx context.Context, bettor string, week string) (*BetRecord, error) {
	var record BetRecord
	if err := d.Table.Delete(ctx, betKey(bettor, week), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBets scans every weekly record, only week's when week is set.
func (d *DynamoBets) ListBets(ctx context.Context, week string) ([]BetRecord, error) {
	filter := expression.Name("SK").BeginsWith(WeekKey(""))
	if week != "" {
		filter = expression.Name("SK").Equal(expression.Value(WeekKey(week)))
	}

	records := []BetRecord{}
	if err := d.Table.ScanAll(ctx, &filter, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *DynamoBets) BettorRecords(ctx context.Context, bettor string) ([]map[string]interface{}, error) {
	records := []map[string]interface{}{}
	keyCond := expression.Key(PartitionKey).Equal(expression.Value(BettorKey(bettor)))
	if err := d.Table.QueryAll(ctx, keyCond, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *DynamoBets) GetTotal(ctx context.Context, bettor string, year string) (*SeasonTotal, error) {
	var total SeasonTotal
	key := store.StringKey(map[string]string{"PK": BettorKey(bettor), "SK": TotalKey(year)})
	found, err := d.Table.Get(ctx, key, &total)
	if err != nil || !found {
		return nil, err
	}
	return &total, nil
}

func (d *DynamoBets) CreateTotal(ctx context.Context, total *SeasonTotal) error {
	return d.Table.Create(ctx, total)
}
