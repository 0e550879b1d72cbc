package pickpoolr

import (
	"strings"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/google/uuid"
)

// Status is the state of a bet entry or of a whole week.
type Status string

const (
	Pending Status = "PENDING"
	Won     Status = "WON"
	Lost    Status = "LOST"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == Pending || s == Won || s == Lost
}

// Prop is one bet entry. Apart from id and status its fields are whatever
// the client sent.
type Prop map[string]interface{}

// ID returns the entry id.
func (p Prop) ID() string {
	id, _ := p["id"].(string)
	return id
}

// Status returns the entry status.
func (p Prop) Status() Status {
	s, _ := p["status"].(string)
	return Status(s)
}

// Props is a list of bet entries. It is always stored as a list, even when
// empty, so that list_append can extend it.
type Props []Prop

func (p Props) MarshalDynamoDBAttributeValue(av *dynamodb.AttributeValue) error {
	av.L = make([]*dynamodb.AttributeValue, 0, len(p))
	for _, prop := range p {
		m, err := dynamodbattribute.MarshalMap(map[string]interface{}(prop))
		if err != nil {
			return err
		}
		av.L = append(av.L, &dynamodb.AttributeValue{M: m})
	}
	return nil
}

// stamp gives every entry an id and, if it has none or force is set, the
// PENDING status.
func (p Props) stamp(force bool) Props {
	out := make(Props, 0, len(p))
	for _, prop := range p {
		entry := make(Prop, len(prop)+2)
		for k, v := range prop {
			entry[k] = v
		}
		if entry.ID() == "" {
			entry["id"] = uuid.NewString()
		}
		if force || !entry.Status().Valid() {
			entry["status"] = string(Pending)
		}
		out = append(out, entry)
	}
	return out
}

// Outcome derives the week status from its entries: LOST once any entry is
// lost, WON when every entry is won, otherwise PENDING.
func (p Props) Outcome() Status {
	if len(p) == 0 {
		return Pending
	}

	won := 0
	for _, prop := range p {
		switch prop.Status() {
		case Lost:
			return Lost
		case Won:
			won++
		}
	}

	if won == len(p) {
		return Won
	}
	return Pending
}

// BetRecord is one bettor's picks for a week.
type BetRecord struct {
	PK        string      `json:"PK" dynamodbav:"PK"`
	SK        string      `json:"SK" dynamodbav:"SK"`
	Bettor    string      `json:"bettor" dynamodbav:"bettor"`
	Name      string      `json:"name" dynamodbav:"name"`
	Week      string      `json:"week" dynamodbav:"week"`
	Props     Props       `json:"props" dynamodbav:"props"`
	TotalOdds interface{} `json:"total_odds" dynamodbav:"total_odds"`
	Status    Status      `json:"status" dynamodbav:"status"`
	CreatedAt string      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt string      `json:"updated_at" dynamodbav:"updated_at"`
}

// SeasonTotal is one bettor's record for a season.
type SeasonTotal struct {
	PK        string      `json:"PK" dynamodbav:"PK"`
	SK        string      `json:"SK" dynamodbav:"SK"`
	Bettor    string      `json:"bettor" dynamodbav:"bettor"`
	Name      string      `json:"name" dynamodbav:"name"`
	Year      string      `json:"year" dynamodbav:"year"`
	Won       int         `json:"won" dynamodbav:"won"`
	Lost      int         `json:"lost" dynamodbav:"lost"`
	Pending   int         `json:"pending" dynamodbav:"pending"`
	TotalOdds interface{} `json:"total_odds" dynamodbav:"total_odds"`
	CreatedAt string      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt string      `json:"updated_at" dynamodbav:"updated_at"`
}

// BetChange is a partial update of a BetRecord. Zero fields are left alone.
type BetChange struct {
	Props       Props
	AppendProps bool
	TotalOdds   interface{}
	Status      Status
	UpdatedAt   string
}

// BettorKey is the partition key of every record of bettor.
func BettorKey(bettor string) string {
	return "BETTOR#" + strings.ToUpper(bettor)
}

// WeekKey is the sort key of a week's picks.
func WeekKey(week string) string {
	return "WEEK#" + week
}

// TotalKey is the sort key of a season total.
func TotalKey(year string) string {
	return year + "#TOTAL"
}
